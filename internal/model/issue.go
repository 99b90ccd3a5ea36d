package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusClosed     IssueStatus = "CLOSED"
	IssueStatusEscalated  IssueStatus = "ESCALATED"
)

// IsResolvedStatus reports whether the status carries a resolution timestamp.
func IsResolvedStatus(s IssueStatus) bool {
	return s == IssueStatusResolved || s == IssueStatusClosed
}

type IssueCategory string

const (
	IssueCategoryInfrastructure IssueCategory = "INFRASTRUCTURE"
	IssueCategoryWater          IssueCategory = "WATER"
	IssueCategoryElectricity    IssueCategory = "ELECTRICITY"
	IssueCategoryHealth         IssueCategory = "HEALTH"
	IssueCategoryEducation      IssueCategory = "EDUCATION"
	IssueCategoryEmployment     IssueCategory = "EMPLOYMENT"
	IssueCategoryOther          IssueCategory = "OTHER"
)

// Issue is a tracked constituent complaint or request. resolved_date is set
// on the first transition into RESOLVED/CLOSED and cleared when the status
// leaves that pair again.
type Issue struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string              `gorm:"type:varchar(255);not null" json:"title"`
	Description    string              `gorm:"type:text;not null" json:"description"`
	Category       IssueCategory       `gorm:"type:issue_category;not null;default:OTHER" json:"category"`
	Priority       AppointmentPriority `gorm:"type:appointment_priority;not null;default:NORMAL" json:"priority"`
	Status         IssueStatus         `gorm:"type:issue_status;not null;default:OPEN;index" json:"status"`
	VisitorID      *uuid.UUID          `gorm:"type:uuid;index" json:"visitor_id"`
	AssignedUserID *uuid.UUID          `gorm:"type:uuid;index" json:"assigned_user_id"`
	CreatedByID    uuid.UUID           `gorm:"type:uuid;not null" json:"created_by_id"`
	DueDate        *time.Time          `json:"due_date"`
	ResolvedDate   *time.Time          `json:"resolved_date"`
	EstimatedCost  *float64            `json:"estimated_cost"`
	ActualCost     *float64            `json:"actual_cost"`
	Tags           *string             `gorm:"type:text" json:"tags"`
	Photos         *string             `gorm:"type:text" json:"photos"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Issue) TableName() string {
	return "issues"
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IssueComment is append-only; comments are never edited or deleted.
type IssueComment struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IssueID         uuid.UUID `gorm:"type:uuid;not null;index" json:"issue_id"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_user_id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (IssueComment) TableName() string {
	return "issue_comments"
}

func (ic *IssueComment) BeforeCreate(tx *gorm.DB) error {
	if ic.ID == uuid.Nil {
		ic.ID = uuid.New()
	}
	return nil
}
