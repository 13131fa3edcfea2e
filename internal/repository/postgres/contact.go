package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

func (r *contactRepository) GetForAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.PatientContact, error) {
	query := `
		SELECT c.patient_id, c.email, c.phone, c.push_token
		FROM patient_contacts c
		JOIN appointments a ON a.patient_id = c.patient_id
		WHERE a.id = $1
	`
	var contact model.PatientContact
	err := r.db.GetContext(ctx, &contact, query, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient contact", err)
	}
	if err != nil {
		return nil, apperrors.NewTransientStore(fmt.Errorf("failed to get patient contact: %w", err))
	}
	return &contact, nil
}
