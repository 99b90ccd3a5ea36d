package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"constituency-service/internal/model"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(ctx context.Context, issue *model.Issue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *IssueRepository) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	var issue model.Issue
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *IssueRepository) Update(ctx context.Context, issue *model.Issue) error {
	return r.db.WithContext(ctx).Save(issue).Error
}

func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Issue{}).Error
}

type IssueListFilter struct {
	Status         *model.IssueStatus
	Category       *model.IssueCategory
	Priority       *model.AppointmentPriority
	VisitorID      *string
	AssignedUserID *string
	DateFrom       *time.Time
	DateTo         *time.Time
}

func (r *IssueRepository) List(ctx context.Context, filter IssueListFilter) ([]model.Issue, error) {
	query := r.db.WithContext(ctx).Model(&model.Issue{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.VisitorID != nil {
		query = query.Where("visitor_id = ?", *filter.VisitorID)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("assigned_user_id = ?", *filter.AssignedUserID)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var issues []model.Issue
	err := query.Order("created_at DESC").Find(&issues).Error
	return issues, err
}

func (r *IssueRepository) ListByVisitor(ctx context.Context, visitorID string) ([]model.Issue, error) {
	var issues []model.Issue
	err := r.db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Order("created_at DESC").
		Find(&issues).Error
	return issues, err
}

func (r *IssueRepository) AddComment(ctx context.Context, comment *model.IssueComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *IssueRepository) ListComments(ctx context.Context, issueID string) ([]model.IssueComment, error) {
	var comments []model.IssueComment
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *IssueRepository) CountByStatuses(ctx context.Context, statuses []model.IssueStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Issue{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (r *IssueRepository) CountResolvedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Issue{}).
		Where("resolved_date >= ? AND resolved_date < ?", start, end).
		Count(&count).Error
	return count, err
}
