package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"constituency-service/internal/events"
	"constituency-service/internal/model"
	"constituency-service/internal/repository"
)

type VisitService struct {
	db              *gorm.DB
	visitRepo       *repository.VisitRepository
	visitorRepo     *repository.VisitorRepository
	appointmentRepo *repository.AppointmentRepository
	userRepo        *repository.UserRepository
	publisher       events.Publisher
	log             zerolog.Logger
}

func NewVisitService(
	db *gorm.DB,
	visitRepo *repository.VisitRepository,
	visitorRepo *repository.VisitorRepository,
	appointmentRepo *repository.AppointmentRepository,
	userRepo *repository.UserRepository,
	publisher events.Publisher,
	log zerolog.Logger,
) *VisitService {
	return &VisitService{
		db:              db,
		visitRepo:       visitRepo,
		visitorRepo:     visitorRepo,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		publisher:       publisher,
		log:             log,
	}
}

type CheckInInput struct {
	VisitorID     string
	UserID        string
	AppointmentID *string
	Purpose       *string
	Notes         *string
}

// CheckIn opens a visit. The duplicate-active check, the insert, the visitor
// counter bump and the appointment confirmation run in one transaction; the
// partial unique index on open visits backs the check under concurrency.
// A linked appointment moves PENDING -> CONFIRMED here; it reaches COMPLETED
// only at check-out.
func (s *VisitService) CheckIn(ctx context.Context, input CheckInInput) (*model.Visit, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, input.VisitorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !visitor.IsActive {
		return nil, ErrNotFound
	}

	staff, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var appointment *model.Appointment
	if input.AppointmentID != nil && *input.AppointmentID != "" {
		appointment, err = s.appointmentRepo.GetByID(ctx, *input.AppointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	visit := &model.Visit{
		VisitorID:   visitor.ID,
		UserID:      staff.ID,
		CheckInTime: now,
		Status:      model.VisitStatusInProgress,
		Purpose:     input.Purpose,
		Notes:       input.Notes,
	}
	if appointment != nil {
		visit.AppointmentID = &appointment.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		visits := s.visitRepo.WithTx(tx)

		if _, err := visits.GetActiveByVisitor(ctx, input.VisitorID); err == nil {
			return ErrConflict
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := visits.Create(ctx, visit); err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}

		if err := s.visitorRepo.WithTx(tx).RecordVisit(ctx, input.VisitorID, now); err != nil {
			return err
		}

		if appointment != nil && appointment.Status == model.AppointmentStatusPending {
			appointment.Status = model.AppointmentStatusConfirmed
			if err := s.appointmentRepo.WithTx(tx).Update(ctx, appointment); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.VisitCheckedIn, visit)
	return visit, nil
}

type CheckOutInput struct {
	Notes        *string
	Satisfaction *int
}

// CheckOut closes an open visit as COMPLETED, stamping the check-out time
// and completing the linked appointment, if any.
func (s *VisitService) CheckOut(ctx context.Context, id string, input CheckOutInput) (*model.Visit, error) {
	if input.Satisfaction != nil && (*input.Satisfaction < 1 || *input.Satisfaction > 5) {
		return nil, ErrInvalidInput
	}

	visit, err := s.close(ctx, id, model.VisitStatusCompleted, input.Notes, input.Satisfaction, model.AppointmentStatusCompleted)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.VisitCheckedOut, visit)
	return visit, nil
}

// Cancel closes an open visit as CANCELLED and cancels the linked
// appointment, if any.
func (s *VisitService) Cancel(ctx context.Context, id string, notes *string) (*model.Visit, error) {
	visit, err := s.close(ctx, id, model.VisitStatusCancelled, notes, nil, model.AppointmentStatusCancelled)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.VisitCancelled, visit)
	return visit, nil
}

func (s *VisitService) close(
	ctx context.Context,
	id string,
	target model.VisitStatus,
	notes *string,
	satisfaction *int,
	appointmentTarget model.AppointmentStatus,
) (*model.Visit, error) {
	visit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if visit.Status != model.VisitStatusInProgress {
		return nil, ErrInvalidState
	}

	now := time.Now().UTC()
	visit.Status = target
	visit.CheckOutTime = &now
	if notes != nil {
		visit.Notes = notes
	}
	if satisfaction != nil {
		visit.Satisfaction = satisfaction
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.visitRepo.WithTx(tx).Update(ctx, visit); err != nil {
			return err
		}
		if visit.AppointmentID != nil {
			appointments := s.appointmentRepo.WithTx(tx)
			appointment, err := appointments.GetByID(ctx, visit.AppointmentID.String())
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			appointment.Status = appointmentTarget
			return appointments.Update(ctx, appointment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return visit, nil
}

func (s *VisitService) Get(ctx context.Context, id string) (*model.Visit, error) {
	visit, err := s.visitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return visit, nil
}

func (s *VisitService) List(ctx context.Context, filter repository.VisitListFilter) ([]model.Visit, error) {
	return s.visitRepo.List(ctx, filter)
}

type UpdateVisitInput struct {
	Status       *string
	Purpose      *string
	Notes        *string
	Satisfaction *int
}

// Update patches a visit. Status changes go through the transition table;
// entering a terminal status stamps the check-out time if it is not set.
func (s *VisitService) Update(ctx context.Context, id string, input UpdateVisitInput) (*model.Visit, error) {
	visit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Satisfaction != nil {
		if *input.Satisfaction < 1 || *input.Satisfaction > 5 {
			return nil, ErrInvalidInput
		}
		visit.Satisfaction = input.Satisfaction
	}
	if input.Purpose != nil {
		visit.Purpose = input.Purpose
	}
	if input.Notes != nil {
		visit.Notes = input.Notes
	}

	if input.Status != nil {
		target := model.VisitStatus(*input.Status)
		if !ValidVisitTransition(visit.Status, target) {
			return nil, ErrInvalidState
		}
		if target != visit.Status {
			visit.Status = target
			if (target == model.VisitStatusCompleted || target == model.VisitStatusCancelled) && visit.CheckOutTime == nil {
				now := time.Now().UTC()
				visit.CheckOutTime = &now
			}
		}
	}

	if err := s.visitRepo.Update(ctx, visit); err != nil {
		return nil, err
	}
	return visit, nil
}

func (s *VisitService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.visitRepo.Delete(ctx, id)
}

// Queue derives the live queue view: open visits ordered by linked
// appointment priority then arrival, today's completed visits, today's
// scheduled appointments and the same-day wait/duration averages.
func (s *VisitService) Queue(ctx context.Context, userID *string) (*QueueSnapshot, error) {
	if userID != nil {
		if _, err := s.userRepo.GetByID(ctx, *userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	active, err := s.visitRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(time.Now().UTC())
	tomorrow := today.AddDate(0, 0, 1)

	completed, err := s.visitRepo.ListCompletedBetween(ctx, today, tomorrow, userID)
	if err != nil {
		return nil, err
	}

	scheduled, err := s.appointmentRepo.List(ctx, repository.AppointmentListFilter{
		UserID:   userID,
		DateFrom: &today,
		DateTo:   &tomorrow,
	})
	if err != nil {
		return nil, err
	}

	appointments, err := s.linkedAppointments(ctx, append(append([]model.Visit{}, active...), completed...))
	if err != nil {
		return nil, err
	}

	entries := buildQueueEntries(active, appointments)
	sortQueueEntries(entries)

	return &QueueSnapshot{
		Active:             entries,
		CompletedToday:     completed,
		ScheduledToday:     scheduled,
		AvgWaitMinutes:     averageWaitMinutes(completed, appointments),
		AvgDurationMinutes: averageDurationMinutes(completed),
	}, nil
}

func (s *VisitService) linkedAppointments(ctx context.Context, visits []model.Visit) (map[uuid.UUID]model.Appointment, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, v := range visits {
		if v.AppointmentID == nil {
			continue
		}
		if _, ok := seen[*v.AppointmentID]; ok {
			continue
		}
		seen[*v.AppointmentID] = struct{}{}
		ids = append(ids, *v.AppointmentID)
	}

	appointments, err := s.appointmentRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]model.Appointment, len(appointments))
	for _, appt := range appointments {
		byID[appt.ID] = appt
	}
	return byID, nil
}

func (s *VisitService) publish(ctx context.Context, key string, visit *model.Visit) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, visit); err != nil {
		s.log.Error().Err(err).Str("routing_key", key).Msg("failed to publish visit event")
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
