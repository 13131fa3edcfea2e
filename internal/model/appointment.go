package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusNoShow      AppointmentStatus = "no_show"
)

type Modality string

const (
	ModalityInPerson   Modality = "in_person"
	ModalityTelehealth Modality = "telehealth"
)

// Appointment is the persisted booking record. Cancellation is a status
// change, never a delete, so the row doubles as audit history. Exactly one
// non-terminal appointment may exist per (doctor, date, start_minute); the
// database enforces this with a partial unique index.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	Date            time.Time         `db:"date" json:"date"`
	StartMinute     int               `db:"start_minute" json:"start_minute"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Modality        Modality          `db:"modality" json:"modality"`
	Location        *string           `db:"location" json:"location,omitempty"`
	Reason          string            `db:"reason" json:"reason"`
	Status          AppointmentStatus `db:"status" json:"status"`
	// Embedded so sqlx flattens the preference columns into the row while
	// JSON still renders a nested reminder_preference object.
	ReminderPreference `json:"reminder_preference"`
	CanReschedule      bool      `db:"can_reschedule" json:"can_reschedule"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// StartAt composes Date and StartMinute into the start instant in the clinic
// timezone.
func (a *Appointment) StartAt(loc *time.Location) time.Time {
	return StartOfSlot(a.Date, a.StartMinute, loc)
}

// EndAt is the appointment's end instant in the clinic timezone.
func (a *Appointment) EndAt(loc *time.Location) time.Time {
	return a.StartAt(loc).Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// StartOfSlot returns the instant at which a slot begins on the given
// calendar day.
func StartOfSlot(date time.Time, startMinute int, loc *time.Location) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return day.Add(time.Duration(startMinute) * time.Minute)
}

// DateOnly normalizes a timestamp to its calendar day. Dates are stored and
// compared day-granular, in UTC, regardless of the clinic timezone.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BookingRequest is the payload accepted by the booking endpoint.
type BookingRequest struct {
	DoctorID        uuid.UUID          `json:"doctor_id" validate:"required"`
	PatientID       uuid.UUID          `json:"patient_id" validate:"required"`
	Date            string             `json:"date" validate:"required,datetime=2006-01-02"`
	StartMinute     int                `json:"start_minute" validate:"gte=0,lt=1440"`
	DurationMinutes int                `json:"duration_minutes" validate:"required,gt=0,lte=240"`
	Modality        Modality           `json:"modality" validate:"required,oneof=in_person telehealth"`
	Location        string             `json:"location,omitempty"`
	Reason          string             `json:"reason" validate:"required"`
	Reminder        ReminderPreference `json:"reminder_preference"`
}

// RescheduleRequest moves an appointment to a new slot.
type RescheduleRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartMinute int    `json:"start_minute" validate:"gte=0,lt=1440"`
}

// TimeSlot is a derived, never-persisted value produced by the availability
// engine and regenerated on demand.
type TimeSlot struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	Date            time.Time `json:"date"`
	StartMinute     int       `json:"start_minute"`
	DurationMinutes int       `json:"duration_minutes"`
	Available       bool      `json:"available"`
}
