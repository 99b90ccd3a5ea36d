package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resume belongs to one visitor. Uploading a new resume deactivates the
// prior active one; at most one is_active resume exists per visitor.
type Resume struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VisitorID uuid.UUID `gorm:"type:uuid;not null;index" json:"visitor_id"`
	FileName  string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileURL   *string   `gorm:"type:text" json:"file_url"`
	Title     *string   `gorm:"type:varchar(255)" json:"title"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
