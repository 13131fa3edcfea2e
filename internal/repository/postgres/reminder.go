package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

const reminderColumns = `
	id, appointment_id, channel, fire_at, status, message,
	last_error, sent_at, created_at, updated_at
`

func (r *reminderRepository) Create(ctx context.Context, reminder *model.ScheduledReminder) error {
	query := `
		INSERT INTO scheduled_reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.AppointmentID,
		reminder.Channel,
		reminder.FireAt,
		reminder.Status,
		reminder.Message,
		reminder.LastError,
		reminder.SentAt,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewTransientStore(fmt.Errorf("failed to create reminder: %w", err))
	}
	return nil
}

func (r *reminderRepository) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.ScheduledReminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM scheduled_reminders
		WHERE appointment_id = $1
		ORDER BY fire_at ASC
	`
	var reminders []*model.ScheduledReminder
	if err := r.db.SelectContext(ctx, &reminders, query, appointmentID); err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to list reminders: %w", err))
	}
	return reminders, nil
}

// CancelPending flips every still-pending reminder for the appointment to
// cancelled. Sent and failed rows are history and stay untouched.
func (r *reminderRepository) CancelPending(ctx context.Context, appointmentID uuid.UUID) error {
	query := `
		UPDATE scheduled_reminders
		SET status = $1, updated_at = $2
		WHERE appointment_id = $3 AND status = $4
	`
	_, err := r.db.ExecContext(ctx, query,
		model.ReminderStatusCancelled,
		time.Now().UTC(),
		appointmentID,
		model.ReminderStatusPending,
	)
	if err != nil {
		return apperrors.NewTransientStore(fmt.Errorf("failed to cancel reminders: %w", err))
	}
	return nil
}

func (r *reminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledReminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM scheduled_reminders
		WHERE status = $1 AND fire_at <= $2
		ORDER BY fire_at ASC
		LIMIT $3
	`
	var reminders []*model.ScheduledReminder
	if err := r.db.SelectContext(ctx, &reminders, query, model.ReminderStatusPending, now, limit); err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to list due reminders: %w", err))
	}
	return reminders, nil
}

// MarkSent and MarkFailed guard on status = pending so a dispatch racing a
// cancellation never resurrects a cancelled reminder.
func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE scheduled_reminders
		SET status = $1, sent_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		model.ReminderStatusSent,
		at,
		time.Now().UTC(),
		id,
		model.ReminderStatusPending,
	)
	if err != nil {
		return apperrors.NewTransientStore(fmt.Errorf("failed to mark reminder sent: %w", err))
	}
	return nil
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE scheduled_reminders
		SET status = $1, last_error = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		model.ReminderStatusFailed,
		reason,
		time.Now().UTC(),
		id,
		model.ReminderStatusPending,
	)
	if err != nil {
		return apperrors.NewTransientStore(fmt.Errorf("failed to mark reminder failed: %w", err))
	}
	return nil
}
