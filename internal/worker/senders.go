package worker

import (
	"context"
	"fmt"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/email"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/logger"
)

// EmailSender delivers reminders over SMTP.
type EmailSender struct {
	email email.Service
}

func NewEmailSender(svc email.Service) *EmailSender {
	return &EmailSender{email: svc}
}

func (s *EmailSender) Send(ctx context.Context, contact *model.PatientContact, r *model.ScheduledReminder) error {
	if contact.Email == "" {
		return fmt.Errorf("patient %s has no email address", contact.PatientID)
	}
	return s.email.Send(ctx, contact.Email, "Appointment reminder", r.Message)
}

// LogSender stands in for SMS and push providers that are integrated outside
// this core. It logs the delivery and reports success so the reminder row
// reaches a terminal state.
type LogSender struct {
	channel model.ReminderChannel
	logger  *logger.Logger
}

func NewLogSender(channel model.ReminderChannel, log *logger.Logger) *LogSender {
	return &LogSender{channel: channel, logger: log}
}

func (s *LogSender) Send(_ context.Context, contact *model.PatientContact, r *model.ScheduledReminder) error {
	s.logger.ZL.Info().
		Str("channel", string(s.channel)).
		Str("patient_id", contact.PatientID.String()).
		Str("reminder_id", r.ID.String()).
		Msg("reminder handed to provider stub")
	return nil
}
