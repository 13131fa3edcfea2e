package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/service/reminder"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/logger"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/metrics"
)

// Sender delivers one reminder over one channel.
type Sender interface {
	Send(ctx context.Context, contact *model.PatientContact, r *model.ScheduledReminder) error
}

// DispatcherConfig tunes the reminder poll loop.
type DispatcherConfig struct {
	PollInterval  time.Duration
	BatchSize     int
	RetryAttempts int
	RetryDelay    time.Duration
}

// Dispatcher polls due reminders and hands them to channel senders, marking
// each row sent or failed. It is the only writer of those two statuses; the
// scheduler owns pending and cancelled.
type Dispatcher struct {
	scheduler *reminder.Scheduler
	contacts  repository.PatientContactRepository
	senders   map[model.ReminderChannel]Sender
	config    DispatcherConfig
	logger    *logger.Logger
	m         *metrics.Metrics
	now       func() time.Time
}

func NewDispatcher(
	scheduler *reminder.Scheduler,
	contacts repository.PatientContactRepository,
	senders map[model.ReminderChannel]Sender,
	cfg DispatcherConfig,
	log *logger.Logger,
	m *metrics.Metrics,
	now func() time.Time,
) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		scheduler: scheduler,
		contacts:  contacts,
		senders:   senders,
		config:    cfg,
		logger:    log,
		m:         m,
		now:       now,
	}
}

// Start runs the poll loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info("starting reminder dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down reminder dispatcher")
			return
		case <-ticker.C:
			if err := d.DispatchDue(ctx); err != nil {
				d.logger.Error(err, "failed to dispatch due reminders")
			}
		}
	}
}

// DispatchDue processes one batch of due reminders.
func (d *Dispatcher) DispatchDue(ctx context.Context) error {
	var timer *prometheus.Timer
	if d.m != nil {
		timer = prometheus.NewTimer(d.m.DispatchLatency)
		defer timer.ObserveDuration()
	}

	due, err := d.scheduler.DueReminders(ctx, d.now(), d.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}

	for _, r := range due {
		if err := d.dispatch(ctx, r); err != nil {
			d.logger.ZL.Error().Err(err).
				Str("reminder_id", r.ID.String()).
				Str("channel", string(r.Channel)).
				Msg("failed to dispatch reminder")
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, r *model.ScheduledReminder) error {
	sender, ok := d.senders[r.Channel]
	if !ok {
		d.countDispatch(r.Channel, "failed")
		return d.scheduler.MarkFailed(ctx, r.ID, fmt.Sprintf("no sender for channel %s", r.Channel))
	}

	contact, err := d.contacts.GetForAppointment(ctx, r.AppointmentID)
	if err != nil {
		d.countDispatch(r.Channel, "failed")
		if markErr := d.scheduler.MarkFailed(ctx, r.ID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}

	sendErr := retry(ctx, d.config.RetryAttempts, d.config.RetryDelay, func() error {
		return sender.Send(ctx, contact, r)
	})
	if sendErr != nil {
		d.countDispatch(r.Channel, "failed")
		if markErr := d.scheduler.MarkFailed(ctx, r.ID, sendErr.Error()); markErr != nil {
			return markErr
		}
		return sendErr
	}

	d.countDispatch(r.Channel, "sent")
	return d.scheduler.MarkSent(ctx, r.ID)
}

func (d *Dispatcher) countDispatch(channel model.ReminderChannel, status string) {
	if d.m != nil {
		d.m.RemindersDispatch.WithLabelValues(string(channel), status).Inc()
	}
}

// retry runs fn up to attempts times, waiting delay between tries. A
// cancelled context cuts the wait short so shutdown is not held hostage by
// the backoff.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}
	}
	return err
}
