package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"constituency-service/internal/model"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *AppointmentRepository) WithTx(tx *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: tx}
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Appointment{}).Error
}

// HasOverlap reports whether any non-cancelled appointment for the staff
// member overlaps [start, end). The comparison is half-open, so back-to-back
// slots do not collide. excludeID skips the appointment being rescheduled.
func (r *AppointmentRepository) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID *string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("user_id = ?", userID).
		Where("status NOT IN ?", []model.AppointmentStatus{
			model.AppointmentStatusCancelled,
			model.AppointmentStatusNoShow,
		}).
		Where("start_time < ? AND end_time > ?", end, start)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForStaffBetween returns the non-cancelled appointments for one staff
// member whose start falls in [start, end). Feeds free-slot derivation.
func (r *AppointmentRepository) ListForStaffBetween(ctx context.Context, userID string, start, end time.Time) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status NOT IN ?", []model.AppointmentStatus{
			model.AppointmentStatusCancelled,
			model.AppointmentStatusNoShow,
		}).
		Where("start_time >= ? AND start_time < ?", start, end).
		Order("start_time ASC").
		Find(&appointments).Error
	return appointments, err
}

type AppointmentListFilter struct {
	Status    *model.AppointmentStatus
	UserID    *string
	VisitorID *string
	DateFrom  *time.Time
	DateTo    *time.Time
}

func (r *AppointmentRepository) List(ctx context.Context, filter AppointmentListFilter) ([]model.Appointment, error) {
	query := r.db.WithContext(ctx).Model(&model.Appointment{})

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
		query = query.Where("start_time >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("start_time <= ?", *filter.DateTo)
	}

	var appointments []model.Appointment
	err := query.Order("start_time ASC").Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) ListByVisitor(ctx context.Context, visitorID string) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Order("start_time DESC").
		Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Appointment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var appointments []model.Appointment
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&appointments).Error
	return appointments, err
}

func (r *AppointmentRepository) CountBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("start_time >= ? AND start_time < ?", start, end).
		Count(&count).Error
	return count, err
}
