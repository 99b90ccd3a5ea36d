package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"constituency-service/internal/model"
)

func TestCheckInCreatesVisitAndBumpsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	visit, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
		Purpose:   strPtr("pension query"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusInProgress, visit.Status)
	assert.False(t, visit.CheckInTime.IsZero())

	updated, err := env.visitorSvc.Get(ctx, visitor.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, updated.VisitCount)
	require.NotNil(t, updated.LastVisit)
}

func TestCheckInDuplicateActiveVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	_, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
	})
	require.NoError(t, err)

	_, err = env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
	})
	assert.ErrorIs(t, err, ErrConflict)

	// The failed attempt must not bump the counter.
	updated, err := env.visitorSvc.Get(ctx, visitor.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, updated.VisitCount)
}

func TestCheckInConfirmsLinkedAppointment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	appt, err := env.appointmentSvc.Schedule(ctx, ScheduleInput{
		Title:           "Pension query",
		VisitorID:       visitor.ID.String(),
		UserID:          staff.ID.String(),
		Date:            "2026-03-02",
		StartTime:       "10:00",
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.Equal(t, model.AppointmentStatusPending, appt.Status)

	visit, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID:     visitor.ID.String(),
		UserID:        staff.ID.String(),
		AppointmentID: strPtr(appt.ID.String()),
	})
	require.NoError(t, err)

	linked, err := env.appointmentSvc.Get(ctx, appt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, linked.Status)

	// COMPLETED only lands at check-out.
	_, err = env.visitSvc.CheckOut(ctx, visit.ID.String(), CheckOutInput{})
	require.NoError(t, err)

	linked, err = env.appointmentSvc.Get(ctx, appt.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, linked.Status)
}

func TestCheckOutClosesVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	visit, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
	})
	require.NoError(t, err)

	_, err = env.visitSvc.CheckOut(ctx, visit.ID.String(), CheckOutInput{Satisfaction: intPtr(6)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	closed, err := env.visitSvc.CheckOut(ctx, visit.ID.String(), CheckOutInput{Satisfaction: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, closed.Status)
	require.NotNil(t, closed.CheckOutTime)
	firstCheckOut := *closed.CheckOutTime

	// A closed visit cannot be closed again, and the stamp does not move.
	_, err = env.visitSvc.CheckOut(ctx, visit.ID.String(), CheckOutInput{})
	assert.ErrorIs(t, err, ErrInvalidState)

	got, err := env.visitSvc.Get(ctx, visit.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got.CheckOutTime)
	assert.True(t, got.CheckOutTime.Equal(firstCheckOut))
}

func TestCancelVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	visit, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
	})
	require.NoError(t, err)

	cancelled, err := env.visitSvc.Cancel(ctx, visit.ID.String(), strPtr("left early"))
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CheckOutTime)

	// Cancelling frees the visitor for a fresh check-in.
	_, err = env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
	})
	assert.NoError(t, err)
}

func TestUpdateVisitTransitionGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	visit, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    staff.ID.String(),
	})
	require.NoError(t, err)

	completed, err := env.visitSvc.Update(ctx, visit.ID.String(), UpdateVisitInput{
		Status: strPtr(string(model.VisitStatusCompleted)),
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CheckOutTime)

	_, err = env.visitSvc.Update(ctx, visit.ID.String(), UpdateVisitInput{
		Status: strPtr(string(model.VisitStatusInProgress)),
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestQueueOrderingAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	staff := env.seedUser(t, "staff", model.RoleStaff)
	walkIn := env.seedVisitor(t, "WalkIn", "1111111111")
	urgent := env.seedVisitor(t, "Urgent", "2222222222")

	// Empty queue yields zeroed stats, not NaN.
	empty, err := env.visitSvc.Queue(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Active)
	assert.Zero(t, empty.AvgWaitMinutes)
	assert.Zero(t, empty.AvgDurationMinutes)

	// Walk-in arrives first.
	first, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: walkIn.ID.String(),
		UserID:    staff.ID.String(),
	})
	require.NoError(t, err)

	appt, err := env.appointmentSvc.Schedule(ctx, ScheduleInput{
		Title:           "Urgent matter",
		VisitorID:       urgent.ID.String(),
		UserID:          staff.ID.String(),
		Date:            "2026-03-02",
		StartTime:       "10:00",
		DurationMinutes: 30,
		Priority:        strPtr(string(model.PriorityUrgent)),
	})
	require.NoError(t, err)

	second, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID:     urgent.ID.String(),
		UserID:        staff.ID.String(),
		AppointmentID: strPtr(appt.ID.String()),
	})
	require.NoError(t, err)

	snapshot, err := env.visitSvc.Queue(ctx, nil)
	require.NoError(t, err)
	require.Len(t, snapshot.Active, 2)

	// Urgent appointment jumps the earlier walk-in.
	assert.Equal(t, second.ID, snapshot.Active[0].Visit.ID)
	assert.Equal(t, model.PriorityUrgent, snapshot.Active[0].Priority)
	assert.Equal(t, 1, snapshot.Active[0].Position)
	assert.Equal(t, first.ID, snapshot.Active[1].Visit.ID)
	assert.Equal(t, 2, snapshot.Active[1].Position)

	_, err = env.visitSvc.CheckOut(ctx, first.ID.String(), CheckOutInput{})
	require.NoError(t, err)

	snapshot, err = env.visitSvc.Queue(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, snapshot.Active, 1)
	assert.Len(t, snapshot.CompletedToday, 1)
}

func TestCheckInUnknownIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	visitor := env.seedVisitor(t, "Ravi", "1111111111")
	staff := env.seedUser(t, "staff", model.RoleStaff)

	_, err := env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: "b2c7a6a0-0000-0000-0000-000000000000",
		UserID:    staff.ID.String(),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.visitSvc.CheckIn(ctx, CheckInInput{
		VisitorID: visitor.ID.String(),
		UserID:    "b2c7a6a0-0000-0000-0000-000000000001",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
