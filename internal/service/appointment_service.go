package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"constituency-service/internal/events"
	"constituency-service/internal/model"
	"constituency-service/internal/repository"
)

const (
	minDurationMinutes = 15
	maxDurationMinutes = 240

	workingHourStart = 9
	workingHourEnd   = 17
	slotMinutes      = 30
)

type AppointmentService struct {
	db              *gorm.DB
	appointmentRepo *repository.AppointmentRepository
	visitorRepo     *repository.VisitorRepository
	userRepo        *repository.UserRepository
	publisher       events.Publisher
	log             zerolog.Logger
}

func NewAppointmentService(
	db *gorm.DB,
	appointmentRepo *repository.AppointmentRepository,
	visitorRepo *repository.VisitorRepository,
	userRepo *repository.UserRepository,
	publisher events.Publisher,
	log zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{
		db:              db,
		appointmentRepo: appointmentRepo,
		visitorRepo:     visitorRepo,
		userRepo:        userRepo,
		publisher:       publisher,
		log:             log,
	}
}

type ScheduleInput struct {
	Title           string
	VisitorID       string
	UserID          string
	Date            string
	StartTime       string
	DurationMinutes int
	Priority        *string
	Status          *string
	Location        *string
	Notes           *string
}

// Schedule allocates a slot for a staff member/visitor pair. The overlap
// check and the insert run in one transaction so concurrent requests cannot
// both pass the check.
func (s *AppointmentService) Schedule(ctx context.Context, input ScheduleInput) (*model.Appointment, error) {
	if input.Title == "" {
		return nil, ErrInvalidInput
	}
	if input.DurationMinutes < minDurationMinutes || input.DurationMinutes > maxDurationMinutes {
		return nil, ErrInvalidInput
	}

	day, err := parseDate(input.Date)
	if err != nil {
		return nil, ErrInvalidInput
	}
	start, err := combineDateTime(day, input.StartTime)
	if err != nil {
		return nil, ErrInvalidInput
	}
	end := start.Add(time.Duration(input.DurationMinutes) * time.Minute)

	visitor, err := s.getActiveVisitor(ctx, input.VisitorID)
	if err != nil {
		return nil, err
	}
	staff, err := s.getStaff(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	status := model.AppointmentStatusPending
	if input.Status != nil && *input.Status != "" {
		status = model.AppointmentStatus(*input.Status)
	}
	priority := model.PriorityNormal
	if input.Priority != nil && *input.Priority != "" {
		priority = model.AppointmentPriority(*input.Priority)
	}

	appointment := &model.Appointment{
		Title:           input.Title,
		VisitorID:       visitor.ID,
		UserID:          staff.ID,
		ScheduledDate:   day,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: input.DurationMinutes,
		Status:          status,
		Priority:        priority,
		Location:        input.Location,
		Notes:           input.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.appointmentRepo.WithTx(tx)
		overlap, err := repo.HasOverlap(ctx, input.UserID, start, end, nil)
		if err != nil {
			return err
		}
		if overlap {
			return ErrConflict
		}
		return repo.Create(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.AppointmentScheduled, appointment)
	return appointment, nil
}

type RescheduleInput struct {
	Title           *string
	Date            *string
	StartTime       *string
	DurationMinutes *int
	UserID          *string
	Priority        *string
	Status          *string
	Location        *string
	Notes           *string
}

// Reschedule recomputes the effective interval from the patch, falling back
// to stored values, re-runs the conflict check excluding the appointment
// itself and applies the update atomically.
func (s *AppointmentService) Reschedule(ctx context.Context, id string, input RescheduleInput) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	day := appointment.ScheduledDate
	if input.Date != nil {
		day, err = parseDate(*input.Date)
		if err != nil {
			return nil, ErrInvalidInput
		}
	}

	startClock := appointment.StartTime.Format("15:04")
	if input.StartTime != nil {
		startClock = *input.StartTime
	}
	start, err := combineDateTime(day, startClock)
	if err != nil {
		return nil, ErrInvalidInput
	}

	duration := appointment.DurationMinutes
	if input.DurationMinutes != nil {
		duration = *input.DurationMinutes
	}
	if duration < minDurationMinutes || duration > maxDurationMinutes {
		return nil, ErrInvalidInput
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	staffID := appointment.UserID.String()
	if input.UserID != nil {
		staff, err := s.getStaff(ctx, *input.UserID)
		if err != nil {
			return nil, err
		}
		appointment.UserID = staff.ID
		staffID = *input.UserID
	}

	timeAffecting := input.Date != nil || input.StartTime != nil ||
		input.DurationMinutes != nil || input.UserID != nil

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrInvalidInput
		}
		appointment.Title = *input.Title
	}
	if input.Priority != nil && *input.Priority != "" {
		appointment.Priority = model.AppointmentPriority(*input.Priority)
	}
	if input.Status != nil && *input.Status != "" {
		appointment.Status = model.AppointmentStatus(*input.Status)
	}
	if input.Location != nil {
		appointment.Location = input.Location
	}
	if input.Notes != nil {
		appointment.Notes = input.Notes
	}

	appointment.ScheduledDate = day
	appointment.StartTime = start
	appointment.EndTime = end
	appointment.DurationMinutes = duration

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.appointmentRepo.WithTx(tx)
		if timeAffecting && appointment.Status != model.AppointmentStatusCancelled &&
			appointment.Status != model.AppointmentStatusNoShow {
			overlap, err := repo.HasOverlap(ctx, staffID, start, end, &id)
			if err != nil {
				return err
			}
			if overlap {
				return ErrConflict
			}
		}
		return repo.Update(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.AppointmentRescheduled, appointment)
	return appointment, nil
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) List(ctx context.Context, filter repository.AppointmentListFilter) ([]model.Appointment, error) {
	return s.appointmentRepo.List(ctx, filter)
}

func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.appointmentRepo.Delete(ctx, id)
}

// Slot is one candidate interval offered by the free-slot computation.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailableSlots derives the free 30-minute slots inside working hours for
// one staff member on one day. Pure function of the current appointment set.
func (s *AppointmentService) AvailableSlots(ctx context.Context, userID, date string) ([]Slot, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if err := s.resolveStaff(ctx, userID); err != nil {
		return nil, err
	}

	booked, err := s.appointmentRepo.ListForStaffBetween(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return computeFreeSlots(day, booked), nil
}

// computeFreeSlots walks the working-hours grid and keeps every slot that
// does not overlap a booked interval. Half-open intervals on both sides.
func computeFreeSlots(day time.Time, booked []model.Appointment) []Slot {
	slots := make([]Slot, 0)
	dayStart := day.Add(workingHourStart * time.Hour)
	dayEnd := day.Add(workingHourEnd * time.Hour)

	for start := dayStart; ; start = start.Add(slotMinutes * time.Minute) {
		end := start.Add(slotMinutes * time.Minute)
		if end.After(dayEnd) {
			break
		}
		free := true
		for _, appt := range booked {
			if appt.StartTime.Before(end) && appt.EndTime.After(start) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, Slot{Start: start, End: end})
		}
	}
	return slots
}

// CalendarDay groups one day's appointments with, when staff-scoped, the
// remaining free slots.
type CalendarDay struct {
	Date         string              `json:"date"`
	Appointments []model.Appointment `json:"appointments"`
	FreeSlots    []Slot              `json:"free_slots,omitempty"`
}

// Calendar returns the grouped-by-date view over [from, to] inclusive.
func (s *AppointmentService) Calendar(ctx context.Context, from, to string, userID *string) ([]CalendarDay, error) {
	start, err := parseDate(from)
	if err != nil {
		return nil, ErrInvalidInput
	}
	end, err := parseDate(to)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if end.Before(start) {
		return nil, ErrInvalidInput
	}
	if userID != nil {
		if err := s.resolveStaff(ctx, *userID); err != nil {
			return nil, err
		}
	}

	rangeEnd := end.AddDate(0, 0, 1)
	appointments, err := s.appointmentRepo.List(ctx, repository.AppointmentListFilter{
		UserID:   userID,
		DateFrom: &start,
		DateTo:   &rangeEnd,
	})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]model.Appointment)
	for _, appt := range appointments {
		key := appt.StartTime.Format("2006-01-02")
		byDate[key] = append(byDate[key], appt)
	}

	var days []CalendarDay
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		entry := CalendarDay{Date: key, Appointments: byDate[key]}
		if entry.Appointments == nil {
			entry.Appointments = []model.Appointment{}
		}
		if userID != nil {
			var booked []model.Appointment
			for _, appt := range entry.Appointments {
				if appt.Status != model.AppointmentStatusCancelled && appt.Status != model.AppointmentStatusNoShow {
					booked = append(booked, appt)
				}
			}
			entry.FreeSlots = computeFreeSlots(day, booked)
		}
		days = append(days, entry)
	}

	return days, nil
}

func (s *AppointmentService) getActiveVisitor(ctx context.Context, id string) (*model.Visitor, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !visitor.IsActive {
		return nil, ErrNotFound
	}
	return visitor, nil
}

func (s *AppointmentService) getStaff(ctx context.Context, id string) (*model.User, error) {
	staff, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrNotFound
	}
	return staff, nil
}

func (s *AppointmentService) resolveStaff(ctx context.Context, id string) error {
	_, err := s.getStaff(ctx, id)
	return err
}

func (s *AppointmentService) publish(ctx context.Context, key string, appointment *model.Appointment) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, appointment); err != nil {
		s.log.Error().Err(err).Str("routing_key", key).Msg("failed to publish appointment event")
	}
}

func parseDate(raw string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return day.UTC(), nil
}

// combineDateTime accepts either a clock value ("10:30") applied to the
// given day, or a full RFC3339 timestamp.
func combineDateTime(day time.Time, raw string) (time.Time, error) {
	if clock, err := time.Parse("15:04", raw); err == nil {
		return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s", raw)
}
