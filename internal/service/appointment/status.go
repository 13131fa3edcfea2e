package appointment

import (
	"time"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
)

// transitions is the closed set of permitted lifecycle moves. Anything not
// listed is rejected; cancelled, completed and no_show have no outgoing
// edges.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusScheduled: {
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusRescheduled,
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusCompleted,
		model.AppointmentStatusNoShow,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusRescheduled,
	},
	model.AppointmentStatusRescheduled: {
		model.AppointmentStatusConfirmed,
	},
}

// CanTransition reports whether from → to is a permitted lifecycle move.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func IsTerminal(status model.AppointmentStatus) bool {
	switch status {
	case model.AppointmentStatusCancelled, model.AppointmentStatusCompleted, model.AppointmentStatusNoShow:
		return true
	}
	return false
}

// CanReschedule is true iff the appointment is still live (scheduled or
// confirmed), its reschedule flag is set, and now is more than cutoff before
// the start instant.
func CanReschedule(apt *model.Appointment, now time.Time, cutoff time.Duration, loc *time.Location) bool {
	if apt.Status != model.AppointmentStatusScheduled && apt.Status != model.AppointmentStatusConfirmed {
		return false
	}
	if !apt.CanReschedule {
		return false
	}
	return now.Before(apt.StartAt(loc).Add(-cutoff))
}
