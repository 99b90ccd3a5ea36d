package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitorCategory string

const (
	VisitorCategoryGeneral  VisitorCategory = "GENERAL"
	VisitorCategoryVIP      VisitorCategory = "VIP"
	VisitorCategoryStudent  VisitorCategory = "STUDENT"
	VisitorCategoryFarmer   VisitorCategory = "FARMER"
	VisitorCategoryBusiness VisitorCategory = "BUSINESS"
	VisitorCategorySenior   VisitorCategory = "SENIOR_CITIZEN"
)

// Visitor is a registered constituent. Records are never hard-deleted;
// delete flips is_active and default listings exclude the record.
type Visitor struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Phone         string          `gorm:"type:varchar(32);not null;index" json:"phone"`
	Email         *string         `gorm:"type:varchar(255)" json:"email"`
	AadhaarNumber *string         `gorm:"type:varchar(16);index" json:"aadhaar_number"`
	VoterID       *string         `gorm:"type:varchar(32);index" json:"voter_id"`
	Village       *string         `gorm:"type:varchar(128);index" json:"village"`
	District      *string         `gorm:"type:varchar(128);index" json:"district"`
	State         *string         `gorm:"type:varchar(128)" json:"state"`
	Category      VisitorCategory `gorm:"type:visitor_category;not null;default:GENERAL" json:"category"`
	Age           *int            `json:"age"`
	Gender        *string         `gorm:"type:varchar(16)" json:"gender"`
	Occupation    *string         `gorm:"type:varchar(128)" json:"occupation"`
	Education     *string         `gorm:"type:varchar(128)" json:"education"`
	Skills        *string         `gorm:"type:text" json:"skills"`
	VisitCount    int             `gorm:"not null;default:0" json:"visit_count"`
	LastVisit     *time.Time      `json:"last_visit"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Visitor) TableName() string {
	return "visitors"
}

func (v *Visitor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
