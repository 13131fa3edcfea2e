package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
)

type stubOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *stubOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *stubOutboxRepo) ListPending(context.Context, int) ([]*model.OutboxEvent, error) {
	return f.events, nil
}

func (f *stubOutboxRepo) MarkProcessed(context.Context, uuid.UUID) error { return nil }

func (f *stubOutboxRepo) MarkFailed(context.Context, uuid.UUID, string) error { return nil }

func testAppointment() *model.Appointment {
	location := "Clinic Agdal, Rabat"
	return &model.Appointment{
		ID:              uuid.New(),
		DoctorID:        uuid.New(),
		PatientID:       uuid.New(),
		Date:            time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		StartMinute:     600,
		DurationMinutes: 30,
		Modality:        model.ModalityInPerson,
		Location:        &location,
		Status:          model.AppointmentStatusConfirmed,
	}
}

func TestAppointmentConfirmed_WritesOutboxEvent(t *testing.T) {
	repo := &stubOutboxRepo{}
	svc := NewService(repo, time.UTC, func() time.Time {
		return time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	})

	apt := testAppointment()
	require.NoError(t, svc.AppointmentConfirmed(context.Background(), apt))

	require.Len(t, repo.events, 1)
	event := repo.events[0]
	assert.Equal(t, model.EventAppointmentConfirmed, event.EventType)
	assert.Equal(t, model.OutboxStatusPending, event.Status)

	var payload model.NotificationPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, apt.ID, payload.AppointmentID)
	assert.Equal(t, apt.PatientID, payload.PatientID)
	assert.Contains(t, payload.Message, "Monday, January 20, 2025")
	assert.Contains(t, payload.Message, "10:00")
	assert.Contains(t, payload.Message, "confirmed")
	assert.Contains(t, payload.Message, "Clinic Agdal, Rabat")
}

func TestAppointmentRescheduled_TelehealthInstructions(t *testing.T) {
	repo := &stubOutboxRepo{}
	svc := NewService(repo, time.UTC, nil)

	apt := testAppointment()
	apt.Modality = model.ModalityTelehealth
	apt.Location = nil
	require.NoError(t, svc.AppointmentRescheduled(context.Background(), apt))

	require.Len(t, repo.events, 1)
	assert.Equal(t, model.EventAppointmentRescheduled, repo.events[0].EventType)

	var payload model.NotificationPayload
	require.NoError(t, json.Unmarshal(repo.events[0].Payload, &payload))
	assert.Contains(t, payload.Message, "moved to")
	assert.Contains(t, payload.Message, "video link")
}

func TestAppointmentCancelled(t *testing.T) {
	repo := &stubOutboxRepo{}
	svc := NewService(repo, time.UTC, nil)

	require.NoError(t, svc.AppointmentCancelled(context.Background(), testAppointment()))

	require.Len(t, repo.events, 1)
	assert.Equal(t, model.EventAppointmentCancelled, repo.events[0].EventType)

	var payload model.NotificationPayload
	require.NoError(t, json.Unmarshal(repo.events[0].Payload, &payload))
	assert.Contains(t, payload.Message, "has been cancelled")
}
