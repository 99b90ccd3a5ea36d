package service

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"constituency-service/internal/model"
)

// QueueEntry is one open visit with its derived priority. Position is
// assigned after sorting; nothing here is persisted.
type QueueEntry struct {
	Visit    model.Visit               `json:"visit"`
	Priority model.AppointmentPriority `json:"priority"`
	Position int                       `json:"position"`
}

// QueueSnapshot is the read-time view served by GET /queue.
type QueueSnapshot struct {
	Active             []QueueEntry        `json:"active"`
	CompletedToday     []model.Visit       `json:"completed_today"`
	ScheduledToday     []model.Appointment `json:"scheduled_today"`
	AvgWaitMinutes     float64             `json:"avg_wait_minutes"`
	AvgDurationMinutes float64             `json:"avg_duration_minutes"`
}

// buildQueueEntries pairs open visits with the priority of their linked
// appointment. Walk-ins rank as NORMAL.
func buildQueueEntries(visits []model.Visit, appointments map[uuid.UUID]model.Appointment) []QueueEntry {
	entries := make([]QueueEntry, 0, len(visits))
	for _, v := range visits {
		priority := model.PriorityNormal
		if v.AppointmentID != nil {
			if appt, ok := appointments[*v.AppointmentID]; ok {
				priority = appt.Priority
			}
		}
		entries = append(entries, QueueEntry{Visit: v, Priority: priority})
	}
	return entries
}

// sortQueueEntries orders the queue by priority descending, then check-in
// time ascending, and stamps positions starting at 1.
func sortQueueEntries(entries []QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := model.PriorityRank(entries[i].Priority), model.PriorityRank(entries[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return entries[i].Visit.CheckInTime.Before(entries[j].Visit.CheckInTime)
	})
	for i := range entries {
		entries[i].Position = i + 1
	}
}

// averageWaitMinutes averages check-in delay against the linked appointment
// start over completed visits. Visits without an appointment contribute
// nothing; an empty sample yields 0.
func averageWaitMinutes(visits []model.Visit, appointments map[uuid.UUID]model.Appointment) float64 {
	var total time.Duration
	var n int
	for _, v := range visits {
		if v.AppointmentID == nil {
			continue
		}
		appt, ok := appointments[*v.AppointmentID]
		if !ok {
			continue
		}
		total += v.CheckInTime.Sub(appt.StartTime)
		n++
	}
	if n == 0 {
		return 0
	}
	return total.Minutes() / float64(n)
}

// averageDurationMinutes averages check-out minus check-in over completed
// visits; an empty sample yields 0.
func averageDurationMinutes(visits []model.Visit) float64 {
	var total time.Duration
	var n int
	for _, v := range visits {
		if v.CheckOutTime == nil {
			continue
		}
		total += v.CheckOutTime.Sub(v.CheckInTime)
		n++
	}
	if n == 0 {
		return 0
	}
	return total.Minutes() / float64(n)
}
