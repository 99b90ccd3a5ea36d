package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"constituency-service/internal/model"
)

func TestSortQueueEntriesPriorityThenArrival(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	urgentAppt := uuid.New()
	lowAppt := uuid.New()
	appointments := map[uuid.UUID]model.Appointment{
		urgentAppt: {ID: urgentAppt, Priority: model.PriorityUrgent},
		lowAppt:    {ID: lowAppt, Priority: model.PriorityLow},
	}

	// Walk-in arrived first, urgent arrived last.
	visits := []model.Visit{
		{ID: uuid.New(), CheckInTime: base, Status: model.VisitStatusInProgress},
		{ID: uuid.New(), CheckInTime: base.Add(5 * time.Minute), AppointmentID: &lowAppt, Status: model.VisitStatusInProgress},
		{ID: uuid.New(), CheckInTime: base.Add(10 * time.Minute), AppointmentID: &urgentAppt, Status: model.VisitStatusInProgress},
	}

	entries := buildQueueEntries(visits, appointments)
	sortQueueEntries(entries)

	assert.Equal(t, model.PriorityUrgent, entries[0].Priority)
	assert.Equal(t, model.PriorityNormal, entries[1].Priority)
	assert.Equal(t, model.PriorityLow, entries[2].Priority)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Position)
	}
}

func TestSortQueueEntriesArrivalTieBreak(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first := model.Visit{ID: uuid.New(), CheckInTime: base}
	second := model.Visit{ID: uuid.New(), CheckInTime: base.Add(time.Minute)}

	entries := buildQueueEntries([]model.Visit{second, first}, nil)
	sortQueueEntries(entries)

	assert.Equal(t, first.ID, entries[0].Visit.ID)
	assert.Equal(t, second.ID, entries[1].Visit.ID)
}

func TestAverageWaitMinutes(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	apptID := uuid.New()
	appointments := map[uuid.UUID]model.Appointment{
		apptID: {ID: apptID, StartTime: start},
	}

	visits := []model.Visit{
		{CheckInTime: start.Add(10 * time.Minute), AppointmentID: &apptID},
		{CheckInTime: start.Add(time.Hour)}, // walk-in, excluded
	}

	assert.InDelta(t, 10.0, averageWaitMinutes(visits, appointments), 0.001)
	assert.Zero(t, averageWaitMinutes(nil, nil))
}

func TestAverageDurationMinutes(t *testing.T) {
	in := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	out20 := in.Add(20 * time.Minute)
	out40 := in.Add(40 * time.Minute)

	visits := []model.Visit{
		{CheckInTime: in, CheckOutTime: &out20},
		{CheckInTime: in, CheckOutTime: &out40},
		{CheckInTime: in}, // still open, excluded
	}

	assert.InDelta(t, 30.0, averageDurationMinutes(visits), 0.001)
	assert.Zero(t, averageDurationMinutes(nil))
}
