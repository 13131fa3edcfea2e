package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    model.AppointmentStatus
		to      model.AppointmentStatus
		allowed bool
	}{
		{model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusRescheduled, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, false},
		{model.AppointmentStatusScheduled, model.AppointmentStatusNoShow, false},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusNoShow, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusRescheduled, true},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusRescheduled, model.AppointmentStatusConfirmed, true},
		{model.AppointmentStatusRescheduled, model.AppointmentStatusCancelled, false},
		{model.AppointmentStatusCancelled, model.AppointmentStatusConfirmed, false},
		{model.AppointmentStatusCancelled, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusConfirmed, false},
		{model.AppointmentStatusNoShow, model.AppointmentStatusConfirmed, false},
	}

	for _, tc := range tests {
		got := CanTransition(tc.from, tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(model.AppointmentStatusCancelled))
	assert.True(t, IsTerminal(model.AppointmentStatusCompleted))
	assert.True(t, IsTerminal(model.AppointmentStatusNoShow))
	assert.False(t, IsTerminal(model.AppointmentStatusScheduled))
	assert.False(t, IsTerminal(model.AppointmentStatusConfirmed))
	assert.False(t, IsTerminal(model.AppointmentStatusRescheduled))
}

func TestCanReschedule(t *testing.T) {
	// Appointment at 10:00 on 2025-01-20.
	apt := func(status model.AppointmentStatus, flag bool) *model.Appointment {
		return &model.Appointment{
			Date:          time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			StartMinute:   600,
			Status:        status,
			CanReschedule: flag,
		}
	}
	cutoff := 24 * time.Hour
	start := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)

	t.Run("well before cutoff", func(t *testing.T) {
		now := start.Add(-48 * time.Hour)
		assert.True(t, CanReschedule(apt(model.AppointmentStatusConfirmed, true), now, cutoff, time.UTC))
		assert.True(t, CanReschedule(apt(model.AppointmentStatusScheduled, true), now, cutoff, time.UTC))
	})

	t.Run("inside cutoff window", func(t *testing.T) {
		// 23 hours before start: one hour too late.
		now := start.Add(-23 * time.Hour)
		assert.False(t, CanReschedule(apt(model.AppointmentStatusConfirmed, true), now, cutoff, time.UTC))
	})

	t.Run("exactly at cutoff", func(t *testing.T) {
		now := start.Add(-cutoff)
		assert.False(t, CanReschedule(apt(model.AppointmentStatusConfirmed, true), now, cutoff, time.UTC))
	})

	t.Run("flag disabled", func(t *testing.T) {
		now := start.Add(-48 * time.Hour)
		assert.False(t, CanReschedule(apt(model.AppointmentStatusConfirmed, false), now, cutoff, time.UTC))
	})

	t.Run("non-live statuses", func(t *testing.T) {
		now := start.Add(-48 * time.Hour)
		for _, status := range []model.AppointmentStatus{
			model.AppointmentStatusRescheduled,
			model.AppointmentStatusCancelled,
			model.AppointmentStatusCompleted,
			model.AppointmentStatusNoShow,
		} {
			assert.False(t, CanReschedule(apt(status, true), now, cutoff, time.UTC), string(status))
		}
	})
}
