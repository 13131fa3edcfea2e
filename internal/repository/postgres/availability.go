package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

// availabilityRow mirrors the doctor_availability table; the schedule shape
// (weekly hours, breaks, holidays) lives in jsonb columns.
type availabilityRow struct {
	DoctorID               uuid.UUID `db:"doctor_id"`
	WeeklyHours            []byte    `db:"weekly_hours"`
	Breaks                 []byte    `db:"breaks"`
	Holidays               []byte    `db:"holidays"`
	DefaultDurationMinutes int       `db:"default_duration_minutes"`
	MaxPatientsPerDay      int       `db:"max_patients_per_day"`
}

func (r *availabilityRepository) Get(ctx context.Context, doctorID uuid.UUID) (*model.DoctorAvailability, error) {
	query := `
		SELECT doctor_id, weekly_hours, breaks, holidays,
			   default_duration_minutes, max_patients_per_day
		FROM doctor_availability
		WHERE doctor_id = $1
	`
	var row availabilityRow
	err := r.db.GetContext(ctx, &row, query, doctorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("doctor", err)
	}
	if err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to get doctor availability: %w", err))
	}

	av := &model.DoctorAvailability{
		DoctorID:               row.DoctorID,
		DefaultDurationMinutes: row.DefaultDurationMinutes,
		MaxPatientsPerDay:      row.MaxPatientsPerDay,
	}
	if err := json.Unmarshal(row.WeeklyHours, &av.WeeklyHours); err != nil {
		return nil, fmt.Errorf("failed to decode weekly hours: %w", err)
	}
	if len(row.Breaks) > 0 {
		if err := json.Unmarshal(row.Breaks, &av.Breaks); err != nil {
			return nil, fmt.Errorf("failed to decode breaks: %w", err)
		}
	}
	if len(row.Holidays) > 0 {
		if err := json.Unmarshal(row.Holidays, &av.Holidays); err != nil {
			return nil, fmt.Errorf("failed to decode holidays: %w", err)
		}
	}
	return av, nil
}
