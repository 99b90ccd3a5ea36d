package repository

import (
	"context"

	"gorm.io/gorm"

	"constituency-service/internal/model"
)

type ResumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *ResumeRepository) WithTx(tx *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: tx}
}

func (r *ResumeRepository) Create(ctx context.Context, resume *model.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *ResumeRepository) GetByID(ctx context.Context, id string) (*model.Resume, error) {
	var resume model.Resume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resume).Error; err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *ResumeRepository) Update(ctx context.Context, resume *model.Resume) error {
	return r.db.WithContext(ctx).Save(resume).Error
}

// DeactivateByVisitor retires every active resume the visitor currently has.
func (r *ResumeRepository) DeactivateByVisitor(ctx context.Context, visitorID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Resume{}).
		Where("visitor_id = ? AND is_active = ?", visitorID, true).
		Update("is_active", false).Error
}

func (r *ResumeRepository) GetActiveByVisitor(ctx context.Context, visitorID string) (*model.Resume, error) {
	var resume model.Resume
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND is_active = ?", visitorID, true).
		First(&resume).Error
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *ResumeRepository) List(ctx context.Context, visitorID *string) ([]model.Resume, error) {
	query := r.db.WithContext(ctx).Model(&model.Resume{})
	if visitorID != nil {
		query = query.Where("visitor_id = ?", *visitorID)
	}

	var resumes []model.Resume
	err := query.Order("created_at DESC").Find(&resumes).Error
	return resumes, err
}

func (r *ResumeRepository) ListByVisitor(ctx context.Context, visitorID string) ([]model.Resume, error) {
	return r.List(ctx, &visitorID)
}
