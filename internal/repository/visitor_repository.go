package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"constituency-service/internal/model"
)

type VisitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *VisitorRepository) WithTx(tx *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: tx}
}

func (r *VisitorRepository) Create(ctx context.Context, visitor *model.Visitor) error {
	return r.db.WithContext(ctx).Create(visitor).Error
}

func (r *VisitorRepository) GetByID(ctx context.Context, id string) (*model.Visitor, error) {
	var visitor model.Visitor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&visitor).Error; err != nil {
		return nil, err
	}
	return &visitor, nil
}

func (r *VisitorRepository) Update(ctx context.Context, visitor *model.Visitor) error {
	return r.db.WithContext(ctx).Save(visitor).Error
}

// FindDuplicate looks for an active visitor sharing any identity field.
// Empty identity values are ignored; excludeID skips the record being updated.
func (r *VisitorRepository) FindDuplicate(ctx context.Context, phone string, aadhaar, voterID *string, excludeID *string) (*model.Visitor, error) {
	query := r.db.WithContext(ctx).Model(&model.Visitor{}).Where("is_active = ?", true)

	identity := r.db.Where("phone = ?", phone)
	if aadhaar != nil && *aadhaar != "" {
		identity = identity.Or("aadhaar_number = ?", *aadhaar)
	}
	if voterID != nil && *voterID != "" {
		identity = identity.Or("voter_id = ?", *voterID)
	}
	query = query.Where(identity)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var visitor model.Visitor
	err := query.First(&visitor).Error
	if err != nil {
		return nil, err
	}
	return &visitor, nil
}

type VisitorListFilter struct {
	Search   *string
	Category *model.VisitorCategory
	Village  *string
	District *string
	Page     int
	PageSize int
}

// List returns active visitors matching the filter plus the total count for
// pagination.
func (r *VisitorRepository) List(ctx context.Context, filter VisitorListFilter) ([]model.Visitor, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Visitor{}).Where("is_active = ?", true)

	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + strings.ToLower(*filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(village) LIKE ? OR LOWER(district) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Village != nil && *filter.Village != "" {
		query = query.Where("LOWER(village) = ?", strings.ToLower(*filter.Village))
	}
	if filter.District != nil && *filter.District != "" {
		query = query.Where("LOWER(district) = ?", strings.ToLower(*filter.District))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var visitors []model.Visitor
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&visitors).Error
	if err != nil {
		return nil, 0, err
	}

	return visitors, total, nil
}

// Search is the fuzzy multi-field lookup backing /visitors/search.
func (r *VisitorRepository) Search(ctx context.Context, q string, limit int) ([]model.Visitor, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.ToLower(q) + "%"

	var visitors []model.Visitor
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(village) LIKE ? OR LOWER(district) LIKE ? OR LOWER(occupation) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		).
		Order("name ASC").
		Limit(limit).
		Find(&visitors).Error
	return visitors, err
}

// RecordVisit bumps the monotonic visit counter and last-visit stamp.
func (r *VisitorRepository) RecordVisit(ctx context.Context, visitorID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Visitor{}).
		Where("id = ?", visitorID).
		Updates(map[string]interface{}{
			"visit_count": gorm.Expr("visit_count + 1"),
			"last_visit":  at,
		}).Error
}

type VisitorReportFilter struct {
	Start    time.Time
	End      time.Time
	Village  *string
	District *string
	Category *model.VisitorCategory
}

func (r *VisitorRepository) ListForReport(ctx context.Context, filter VisitorReportFilter) ([]model.Visitor, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("created_at >= ? AND created_at <= ?", filter.Start, filter.End)

	if filter.Village != nil && *filter.Village != "" {
		query = query.Where("LOWER(village) = ?", strings.ToLower(*filter.Village))
	}
	if filter.District != nil && *filter.District != "" {
		query = query.Where("LOWER(district) = ?", strings.ToLower(*filter.District))
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	var visitors []model.Visitor
	err := query.Order("created_at ASC").Find(&visitors).Error
	return visitors, err
}

func (r *VisitorRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Visitor{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
