package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository"
)

// Service composes patient-facing notification text and records it as an
// outbox event. The relay worker publishes the events to the broker; the
// booking flow never waits on a provider.
type Service interface {
	AppointmentConfirmed(ctx context.Context, apt *model.Appointment) error
	AppointmentRescheduled(ctx context.Context, apt *model.Appointment) error
	AppointmentCancelled(ctx context.Context, apt *model.Appointment) error
}

type service struct {
	outbox repository.OutboxRepository
	loc    *time.Location
	now    func() time.Time
}

func NewService(outbox repository.OutboxRepository, loc *time.Location, now func() time.Time) Service {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &service{outbox: outbox, loc: loc, now: now}
}

func (s *service) AppointmentConfirmed(ctx context.Context, apt *model.Appointment) error {
	message := fmt.Sprintf("Your appointment on %s is confirmed. %s", s.when(apt), instructions(apt))
	return s.enqueue(ctx, model.EventAppointmentConfirmed, apt, message)
}

func (s *service) AppointmentRescheduled(ctx context.Context, apt *model.Appointment) error {
	message := fmt.Sprintf("Your appointment has been moved to %s. %s", s.when(apt), instructions(apt))
	return s.enqueue(ctx, model.EventAppointmentRescheduled, apt, message)
}

func (s *service) AppointmentCancelled(ctx context.Context, apt *model.Appointment) error {
	message := fmt.Sprintf("Your appointment on %s has been cancelled.", s.when(apt))
	return s.enqueue(ctx, model.EventAppointmentCancelled, apt, message)
}

func (s *service) when(apt *model.Appointment) string {
	start := apt.StartAt(s.loc)
	return fmt.Sprintf("%s at %s", start.Format("Monday, January 2, 2006"), start.Format("15:04"))
}

func instructions(apt *model.Appointment) string {
	if apt.Modality == model.ModalityTelehealth {
		return "Your video link will be sent 10 minutes before the appointment."
	}
	location := "the clinic"
	if apt.Location != nil && *apt.Location != "" {
		location = *apt.Location
	}
	return fmt.Sprintf("Please arrive 10 minutes early. Location: %s.", location)
}

func (s *service) enqueue(ctx context.Context, eventType string, apt *model.Appointment, message string) error {
	payload, err := json.Marshal(model.NotificationPayload{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		Message:       message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	now := s.now().UTC()
	return s.outbox.Create(ctx, &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
