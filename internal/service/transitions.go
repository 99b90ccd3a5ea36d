package service

import "constituency-service/internal/model"

// allowedVisitTransitions maps a target status to the statuses it may be
// reached from. IN_PROGRESS is only ever created, never re-entered, and
// NO_SHOW belongs to the appointment path, not to an open visit.
var allowedVisitTransitions = map[model.VisitStatus][]model.VisitStatus{
	model.VisitStatusCompleted: {model.VisitStatusInProgress},
	model.VisitStatusCancelled: {model.VisitStatusInProgress},
}

// ValidVisitTransition reports whether a visit may move from one status to
// another. A no-op transition to the same status is always allowed.
func ValidVisitTransition(from, to model.VisitStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := allowedVisitTransitions[to]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}
