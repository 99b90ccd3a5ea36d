package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"constituency-service/internal/model"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *VisitRepository) WithTx(tx *gorm.DB) *VisitRepository {
	return &VisitRepository{db: tx}
}

func (r *VisitRepository) Create(ctx context.Context, visit *model.Visit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *VisitRepository) GetByID(ctx context.Context, id string) (*model.Visit, error) {
	var visit model.Visit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&visit).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

func (r *VisitRepository) Update(ctx context.Context, visit *model.Visit) error {
	return r.db.WithContext(ctx).Save(visit).Error
}

func (r *VisitRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Visit{}).Error
}

// GetActiveByVisitor returns the visitor's open visit, if any.
func (r *VisitRepository) GetActiveByVisitor(ctx context.Context, visitorID string) (*model.Visit, error) {
	var visit model.Visit
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND status = ?", visitorID, model.VisitStatusInProgress).
		First(&visit).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// ListActive returns all IN_PROGRESS visits, optionally scoped to one staff
// member. Queue order is derived in the service, not here.
func (r *VisitRepository) ListActive(ctx context.Context, userID *string) ([]model.Visit, error) {
	query := r.db.WithContext(ctx).Where("status = ?", model.VisitStatusInProgress)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var visits []model.Visit
	err := query.Order("check_in_time ASC").Find(&visits).Error
	return visits, err
}

// ListCompletedBetween returns COMPLETED visits checked in within [start, end).
func (r *VisitRepository) ListCompletedBetween(ctx context.Context, start, end time.Time, userID *string) ([]model.Visit, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", model.VisitStatusCompleted).
		Where("check_in_time >= ? AND check_in_time < ?", start, end)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var visits []model.Visit
	err := query.Order("check_in_time ASC").Find(&visits).Error
	return visits, err
}

type VisitListFilter struct {
	Status    *model.VisitStatus
	UserID    *string
	VisitorID *string
	DateFrom  *time.Time
	DateTo    *time.Time
}

func (r *VisitRepository) List(ctx context.Context, filter VisitListFilter) ([]model.Visit, error) {
	query := r.db.WithContext(ctx).Model(&model.Visit{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.VisitorID != nil {
		query = query.Where("visitor_id = ?", *filter.VisitorID)
	}
	if filter.DateFrom != nil {
		query = query.Where("check_in_time >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("check_in_time <= ?", *filter.DateTo)
	}

	var visits []model.Visit
	err := query.Order("check_in_time DESC").Find(&visits).Error
	return visits, err
}

func (r *VisitRepository) ListByVisitor(ctx context.Context, visitorID string) ([]model.Visit, error) {
	var visits []model.Visit
	err := r.db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Order("check_in_time DESC").
		Find(&visits).Error
	return visits, err
}

func (r *VisitRepository) CountBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Visit{}).
		Where("check_in_time >= ? AND check_in_time < ?", start, end).
		Count(&count).Error
	return count, err
}
