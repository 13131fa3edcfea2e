package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
)

type (
	// AppointmentRepository persists appointments. Create and MoveSlot rely
	// on the database's partial unique index over (doctor_id, date,
	// start_minute) for non-terminal rows; a violation surfaces as a
	// SlotUnavailable error, never a generic one.
	AppointmentRepository interface {
		Create(ctx context.Context, apt *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		MoveSlot(ctx context.Context, id uuid.UUID, date time.Time, startMinute int, status model.AppointmentStatus) error
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]*model.Appointment, error)
		ListBlocking(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		CountBlocking(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
	}

	// ReminderRepository persists scheduled reminders.
	ReminderRepository interface {
		Create(ctx context.Context, reminder *model.ScheduledReminder) error
		ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.ScheduledReminder, error)
		CancelPending(ctx context.Context, appointmentID uuid.UUID) error
		ListDue(ctx context.Context, now time.Time, limit int) ([]*model.ScheduledReminder, error)
		MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	}

	// DoctorAvailabilityRepository reads per-doctor schedule configuration.
	// Writes belong to the doctor/admin surface, not this core.
	DoctorAvailabilityRepository interface {
		Get(ctx context.Context, doctorID uuid.UUID) (*model.DoctorAvailability, error)
	}

	// PatientContactRepository resolves dispatch addresses for a booked
	// appointment.
	PatientContactRepository interface {
		GetForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.PatientContact, error)
	}

	// OutboxRepository stores notification events for the relay worker.
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		ListPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	}
)
