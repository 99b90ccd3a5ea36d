package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

type AppointmentPriority string

const (
	PriorityUrgent AppointmentPriority = "URGENT"
	PriorityHigh   AppointmentPriority = "HIGH"
	PriorityNormal AppointmentPriority = "NORMAL"
	PriorityLow    AppointmentPriority = "LOW"
)

// PriorityRank orders priorities for queue derivation. Unknown values rank
// with NORMAL.
func PriorityRank(p AppointmentPriority) int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Appointment is a pre-allocated slot between a visitor and a staff member.
// The interval [StartTime, EndTime) is half-open: an appointment ending
// exactly when another starts does not conflict.
type Appointment struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string              `gorm:"type:varchar(255);not null" json:"title"`
	VisitorID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"visitor_id"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	ScheduledDate   time.Time           `gorm:"not null;index" json:"scheduled_date"`
	StartTime       time.Time           `gorm:"not null" json:"start_time"`
	EndTime         time.Time           `gorm:"not null" json:"end_time"`
	DurationMinutes int                 `gorm:"not null" json:"duration_minutes"`
	Status          AppointmentStatus   `gorm:"type:appointment_status;not null;default:PENDING" json:"status"`
	Priority        AppointmentPriority `gorm:"type:appointment_priority;not null;default:NORMAL" json:"priority"`
	Location        *string             `gorm:"type:varchar(255)" json:"location"`
	Notes           *string             `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
