package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type reminderRepository struct {
	db *sqlx.DB
}

type availabilityRepository struct {
	db *sqlx.DB
}

type contactRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func NewDoctorAvailabilityRepository(db *sqlx.DB) repository.DoctorAvailabilityRepository {
	return &availabilityRepository{db: db}
}

func NewPatientContactRepository(db *sqlx.DB) repository.PatientContactRepository {
	return &contactRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
