package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitStatus string

const (
	VisitStatusInProgress VisitStatus = "IN_PROGRESS"
	VisitStatusCompleted  VisitStatus = "COMPLETED"
	VisitStatusCancelled  VisitStatus = "CANCELLED"
	VisitStatusNoShow     VisitStatus = "NO_SHOW"
)

// Visit is one queue interaction bounded by check-in and check-out.
// At most one IN_PROGRESS visit may exist per visitor; the store backs this
// with a partial unique index on (visitor_id) where status = 'IN_PROGRESS'.
type Visit struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	VisitorID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"visitor_id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	AppointmentID *uuid.UUID  `gorm:"type:uuid;index" json:"appointment_id"`
	CheckInTime   time.Time   `gorm:"not null;index" json:"check_in_time"`
	CheckOutTime  *time.Time  `json:"check_out_time"`
	Status        VisitStatus `gorm:"type:visit_status;not null;default:IN_PROGRESS" json:"status"`
	Purpose       *string     `gorm:"type:varchar(255)" json:"purpose"`
	Notes         *string     `gorm:"type:text" json:"notes"`
	Satisfaction  *int        `json:"satisfaction"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Visit) TableName() string {
	return "visits"
}

func (v *Visit) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
