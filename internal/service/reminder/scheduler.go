package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/logger"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/metrics"
)

// Scheduler computes reminder fire times per channel, persists them, and
// cancels them when the appointment lifecycle demands it. Actual delivery is
// the dispatch worker's job.
type Scheduler struct {
	repo   repository.ReminderRepository
	logger *logger.Logger
	m      *metrics.Metrics
	loc    *time.Location
	now    func() time.Time
}

func NewScheduler(repo repository.ReminderRepository, log *logger.Logger, m *metrics.Metrics, loc *time.Location, now func() time.Time) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{repo: repo, logger: log, m: m, loc: loc, now: now}
}

// ScheduleReminders creates one pending reminder per enabled channel, all at
// the single configured lead time. A channel whose computed fire time has
// already passed is silently skipped; no past-dated reminder is ever created.
func (s *Scheduler) ScheduleReminders(ctx context.Context, apt *model.Appointment) ([]*model.ScheduledReminder, error) {
	channels := apt.ReminderPreference.Channels()
	if len(channels) == 0 {
		return nil, nil
	}

	offset, err := apt.Timing.Offset()
	if err != nil {
		return nil, apperrors.NewValidation("invalid reminder timing", err)
	}

	fireAt := apt.StartAt(s.loc).Add(-offset)
	if !fireAt.Before(apt.StartAt(s.loc)) {
		return nil, apperrors.NewValidation("reminder would not fire before the appointment", nil)
	}

	now := s.now()
	message := RenderMessage(apt, s.loc)
	created := make([]*model.ScheduledReminder, 0, len(channels))

	for _, channel := range channels {
		if !fireAt.After(now) {
			s.logger.ZL.Debug().
				Str("appointment_id", apt.ID.String()).
				Str("channel", string(channel)).
				Time("fire_at", fireAt).
				Msg("skipping reminder with elapsed fire time")
			continue
		}

		r := &model.ScheduledReminder{
			ID:            uuid.New(),
			AppointmentID: apt.ID,
			Channel:       channel,
			FireAt:        fireAt.UTC(),
			Status:        model.ReminderStatusPending,
			Message:       message,
			CreatedAt:     now.UTC(),
			UpdatedAt:     now.UTC(),
		}
		if err := s.repo.Create(ctx, r); err != nil {
			return created, err
		}
		if s.m != nil {
			s.m.RemindersScheduled.WithLabelValues(string(channel)).Inc()
		}
		created = append(created, r)
	}

	return created, nil
}

// CancelReminders flips every pending reminder for the appointment to
// cancelled. Safe to race with a concurrent dispatch: the dispatcher only
// touches rows that are still pending.
func (s *Scheduler) CancelReminders(ctx context.Context, appointmentID uuid.UUID) error {
	return s.repo.CancelPending(ctx, appointmentID)
}

// DueReminders is the pull interface the dispatch worker consumes: pending
// reminders whose fire time has arrived.
func (s *Scheduler) DueReminders(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledReminder, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListDue(ctx, now, limit)
}

// MarkSent records a successful dispatch.
func (s *Scheduler) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkSent(ctx, id, s.now().UTC())
}

// MarkFailed records a failed dispatch; retries are the worker's policy, not
// this core's.
func (s *Scheduler) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.repo.MarkFailed(ctx, id, reason)
}

// RenderMessage builds the reminder text. Telehealth and in-person bookings
// get different joining instructions.
func RenderMessage(apt *model.Appointment, loc *time.Location) string {
	start := apt.StartAt(loc)
	when := fmt.Sprintf("%s at %s", start.Format("Monday, January 2, 2006"), start.Format("15:04"))

	if apt.Modality == model.ModalityTelehealth {
		return fmt.Sprintf(
			"Reminder: you have a telehealth appointment on %s. Your video link will be sent 10 minutes before the appointment.",
			when,
		)
	}

	location := "the clinic"
	if apt.Location != nil && *apt.Location != "" {
		location = *apt.Location
	}
	return fmt.Sprintf(
		"Reminder: you have an appointment on %s. Please arrive 10 minutes early. Location: %s.",
		when,
		location,
	)
}
