package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

const appointmentColumns = `
	id, doctor_id, patient_id, date, start_minute, duration_minutes,
	modality, location, reason, status,
	remind_email, remind_sms, remind_push, remind_timing,
	can_reschedule, created_at, updated_at
`

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (the slot index acting as the reservation arbiter).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.DoctorID,
		apt.PatientID,
		apt.Date,
		apt.StartMinute,
		apt.DurationMinutes,
		apt.Modality,
		apt.Location,
		apt.Reason,
		apt.Status,
		apt.Email,
		apt.SMS,
		apt.Push,
		apt.Timing,
		apt.CanReschedule,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewSlotUnavailable(err)
		}
		return apperrors.NewTransientStore(fmt.Errorf("failed to create appointment: %w", err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("appointment", err)
	}
	if err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to get appointment: %w", err))
	}
	return &apt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return apperrors.NewTransientStore(fmt.Errorf("failed to update appointment status: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewTransientStore(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}
	return nil
}

// MoveSlot points an existing appointment at a new (date, start_minute). The
// partial unique index rejects the move if another live appointment already
// holds the target slot.
func (r *appointmentRepository) MoveSlot(ctx context.Context, id uuid.UUID, date time.Time, startMinute int, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET date = $1, start_minute = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, date, startMinute, status, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewSlotUnavailable(err)
		}
		return apperrors.NewTransientStore(fmt.Errorf("failed to move appointment: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewTransientStore(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date ASC, start_minute ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to list patient appointments: %w", err))
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
	`
	args := []interface{}{doctorID}
	if date != nil {
		query += " AND date = $2"
		args = append(args, *date)
	}
	query += " ORDER BY date ASC, start_minute ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to list doctor appointments: %w", err))
	}
	return appointments, nil
}

// ListBlocking returns the doctor's appointments on date whose status still
// holds the slot. Cancelled, completed and no-show rows do not block.
func (r *appointmentRepository) ListBlocking(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		AND date = $2
		AND status IN ('scheduled', 'confirmed', 'rescheduled')
		ORDER BY start_minute ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, doctorID, date); err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to list blocking appointments: %w", err))
	}
	return appointments, nil
}

func (r *appointmentRepository) CountBlocking(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE doctor_id = $1
		AND date = $2
		AND status IN ('scheduled', 'confirmed', 'rescheduled')
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, doctorID, date); err != nil {
		return 0, apperrors.NewTransientStore(fmt.Errorf("failed to count blocking appointments: %w", err))
	}
	return count, nil
}
