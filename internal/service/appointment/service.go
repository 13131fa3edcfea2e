package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/logger"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/metrics"
)

const dateLayout = "2006-01-02"

// SlotSource is the availability view the coordinator consults before
// booking. The pre-check is advisory; the store's unique index is the
// arbiter.
type SlotSource interface {
	Get(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error)
	Invalidate(doctorID uuid.UUID)
}

// ReminderScheduler creates and cancels the reminders tied to a booking.
type ReminderScheduler interface {
	ScheduleReminders(ctx context.Context, apt *model.Appointment) ([]*model.ScheduledReminder, error)
	CancelReminders(ctx context.Context, appointmentID uuid.UUID) error
}

// Notifier hands confirmation/reschedule/cancellation messages to the
// notification boundary. Failures are logged, never fatal to the booking.
type Notifier interface {
	AppointmentConfirmed(ctx context.Context, apt *model.Appointment) error
	AppointmentRescheduled(ctx context.Context, apt *model.Appointment) error
	AppointmentCancelled(ctx context.Context, apt *model.Appointment) error
}

// Options carries the clock and policy knobs.
type Options struct {
	Location         *time.Location
	Now              func() time.Time
	RescheduleCutoff time.Duration
}

// Service orchestrates slot validation, atomic reservation, lifecycle
// transitions and reminder scheduling.
type Service struct {
	repo             repository.AppointmentRepository
	availabilityRepo repository.DoctorAvailabilityRepository
	slots            SlotSource
	reminders        ReminderScheduler
	notifier         Notifier
	validate         *validator.Validate
	logger           *logger.Logger
	m                *metrics.Metrics
	loc              *time.Location
	now              func() time.Time
	rescheduleCutoff time.Duration
}

func NewService(
	repo repository.AppointmentRepository,
	availabilityRepo repository.DoctorAvailabilityRepository,
	slots SlotSource,
	reminders ReminderScheduler,
	notifier Notifier,
	log *logger.Logger,
	m *metrics.Metrics,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RescheduleCutoff <= 0 {
		opts.RescheduleCutoff = 24 * time.Hour
	}
	return &Service{
		repo:             repo,
		availabilityRepo: availabilityRepo,
		slots:            slots,
		reminders:        reminders,
		notifier:         notifier,
		validate:         validator.New(),
		logger:           log,
		m:                m,
		loc:              opts.Location,
		now:              opts.Now,
		rescheduleCutoff: opts.RescheduleCutoff,
	}
}

// Book reserves a slot and creates the appointment. A lost race against a
// concurrent booking for the same slot surfaces as a slot-unavailable error;
// the caller is expected to re-query availability and retry.
func (s *Service) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	if err := s.validateBooking(req); err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.NewValidation("invalid date", err)
	}
	date = model.DateOnly(date)

	if err := s.checkSlot(ctx, req.DoctorID, date, req.StartMinute, req.DurationMinutes, nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	apt := &model.Appointment{
		ID:                 uuid.New(),
		DoctorID:           req.DoctorID,
		PatientID:          req.PatientID,
		Date:               date,
		StartMinute:        req.StartMinute,
		DurationMinutes:    req.DurationMinutes,
		Modality:           req.Modality,
		Reason:             strings.TrimSpace(req.Reason),
		Status:             model.AppointmentStatusScheduled,
		ReminderPreference: req.Reminder,
		CanReschedule:      true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.Modality == model.ModalityInPerson {
		location := strings.TrimSpace(req.Location)
		apt.Location = &location
	}

	// The insert is the reservation: the partial unique index on
	// (doctor_id, date, start_minute) decides the race.
	if err := s.repo.Create(ctx, apt); err != nil {
		if apperrors.IsCode(err, apperrors.ErrSlotUnavailable) && s.m != nil {
			s.m.SlotConflicts.Inc()
		}
		s.count("book", "error")
		return nil, err
	}

	s.slots.Invalidate(apt.DoctorID)

	if _, err := s.reminders.ScheduleReminders(ctx, apt); err != nil {
		s.logger.Warn(err, "failed to schedule reminders")
	}

	if err := s.confirm(ctx, apt); err != nil {
		s.logger.Warn(err, "failed to confirm appointment")
	}

	s.count("book", "success")
	return apt, nil
}

// confirm flips a fresh booking to confirmed and dispatches the
// confirmation. The booking itself stands even if this step fails.
func (s *Service) confirm(ctx context.Context, apt *model.Appointment) error {
	if !CanTransition(apt.Status, model.AppointmentStatusConfirmed) {
		return apperrors.NewConflict(
			fmt.Sprintf("cannot confirm appointment in status %s", apt.Status), nil)
	}
	if err := s.repo.UpdateStatus(ctx, apt.ID, model.AppointmentStatusConfirmed); err != nil {
		return err
	}
	apt.Status = model.AppointmentStatusConfirmed
	apt.UpdatedAt = s.now().UTC()

	if err := s.notifier.AppointmentConfirmed(ctx, apt); err != nil {
		s.logger.Warn(err, "failed to dispatch confirmation")
	}
	return nil
}

// Reschedule moves the appointment to a new slot. The old slot is released
// by the record pointing elsewhere; reminders are cancelled and recreated
// for the new time.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleRequest) (*model.Appointment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidation("invalid reschedule request", err)
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanReschedule(apt, s.now(), s.rescheduleCutoff, s.loc) {
		s.count("reschedule", "rejected")
		return nil, apperrors.NewRescheduleWindowExpired(nil)
	}
	if !CanTransition(apt.Status, model.AppointmentStatusRescheduled) {
		return nil, apperrors.NewConflict(
			fmt.Sprintf("cannot reschedule appointment in status %s", apt.Status), nil)
	}

	newDate, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.NewValidation("invalid date", err)
	}
	newDate = model.DateOnly(newDate)

	if err := s.checkSlot(ctx, apt.DoctorID, newDate, req.StartMinute, apt.DurationMinutes, apt); err != nil {
		return nil, err
	}

	// Old reminders go before new ones are created for the new time.
	if err := s.reminders.CancelReminders(ctx, apt.ID); err != nil {
		return nil, err
	}

	// Rescheduled is a transit state on the same record: the move lands it
	// directly back at confirmed, guarded by the same unique index.
	if err := s.repo.MoveSlot(ctx, apt.ID, newDate, req.StartMinute, model.AppointmentStatusConfirmed); err != nil {
		if apperrors.IsCode(err, apperrors.ErrSlotUnavailable) && s.m != nil {
			s.m.SlotConflicts.Inc()
		}
		s.count("reschedule", "error")
		return nil, err
	}

	apt.Date = newDate
	apt.StartMinute = req.StartMinute
	apt.Status = model.AppointmentStatusConfirmed
	apt.UpdatedAt = s.now().UTC()

	s.slots.Invalidate(apt.DoctorID)

	if _, err := s.reminders.ScheduleReminders(ctx, apt); err != nil {
		s.logger.Warn(err, "failed to schedule reminders after reschedule")
	}
	if err := s.notifier.AppointmentRescheduled(ctx, apt); err != nil {
		s.logger.Warn(err, "failed to dispatch reschedule notification")
	}

	s.count("reschedule", "success")
	return apt, nil
}

// Cancel sets the appointment to cancelled and drops its pending reminders.
// Cancelling an already-cancelled appointment is a no-op success so client
// retries stay safe.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if apt.Status == model.AppointmentStatusCancelled {
		return nil
	}
	if IsTerminal(apt.Status) {
		return apperrors.NewConflict(
			fmt.Sprintf("cannot cancel appointment in status %s", apt.Status), nil)
	}
	if !CanTransition(apt.Status, model.AppointmentStatusCancelled) {
		return apperrors.NewConflict(
			fmt.Sprintf("cannot cancel appointment in status %s", apt.Status), nil)
	}

	if err := s.repo.UpdateStatus(ctx, apt.ID, model.AppointmentStatusCancelled); err != nil {
		return err
	}
	apt.Status = model.AppointmentStatusCancelled

	s.slots.Invalidate(apt.DoctorID)

	if err := s.reminders.CancelReminders(ctx, apt.ID); err != nil {
		s.logger.Warn(err, "failed to cancel reminders")
	}
	if err := s.notifier.AppointmentCancelled(ctx, apt); err != nil {
		s.logger.Warn(err, "failed to dispatch cancellation notification")
	}

	s.count("cancel", "success")
	return nil
}

// Complete marks a confirmed appointment as completed once its end has
// passed. External signal, typically from the clinic back office.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCompleted)
}

// MarkNoShow records that the patient did not attend.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusNoShow)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(apt.Status, to) {
		return nil, apperrors.NewConflict(
			fmt.Sprintf("cannot move appointment from %s to %s", apt.Status, to), nil)
	}
	if err := s.repo.UpdateStatus(ctx, apt.ID, to); err != nil {
		return nil, err
	}
	apt.Status = to
	s.slots.Invalidate(apt.DoctorID)
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return s.repo.ListForPatient(ctx, patientID)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, date *time.Time) ([]*model.Appointment, error) {
	if date != nil {
		normalized := model.DateOnly(*date)
		date = &normalized
	}
	return s.repo.ListForDoctor(ctx, doctorID, date)
}

// checkSlot verifies the requested slot is offered and free, and that the
// doctor's daily cap is not exhausted. Advisory only; the insert decides.
// exclude is the appointment being moved on a reschedule, nil on a booking.
func (s *Service) checkSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, startMinute, durationMinutes int, exclude *model.Appointment) error {
	slots, err := s.slots.Get(ctx, doctorID, date)
	if err != nil {
		return err
	}

	var found *model.TimeSlot
	for i := range slots {
		if slots[i].StartMinute == startMinute {
			found = &slots[i]
			break
		}
	}
	if found == nil {
		return apperrors.NewSlotUnavailable(fmt.Errorf("no slot at minute %d on %s", startMinute, date.Format(dateLayout)))
	}
	if found.DurationMinutes != durationMinutes {
		return apperrors.NewValidation(
			fmt.Sprintf("slot duration is %d minutes", found.DurationMinutes), nil)
	}

	if !found.Available {
		// The slot may be blocked only by the appointment being moved.
		if exclude == nil || !s.blockedOnlyBySelf(ctx, doctorID, date, startMinute, durationMinutes, exclude.ID) {
			return apperrors.NewSlotUnavailable(nil)
		}
	}

	av, err := s.availabilityRepo.Get(ctx, doctorID)
	if err != nil {
		return err
	}
	if av.MaxPatientsPerDay > 0 {
		// A same-day move is already part of the target day's count; a move
		// from another day is a net addition and competes for the cap like a
		// fresh booking.
		sameDay := exclude != nil && model.DateOnly(exclude.Date).Equal(model.DateOnly(date))
		if !sameDay {
			count, err := s.repo.CountBlocking(ctx, doctorID, date)
			if err != nil {
				return err
			}
			if count >= av.MaxPatientsPerDay {
				return apperrors.NewSlotUnavailable(fmt.Errorf("daily booking cap of %d reached", av.MaxPatientsPerDay))
			}
		}
	}
	return nil
}

func (s *Service) blockedOnlyBySelf(ctx context.Context, doctorID uuid.UUID, date time.Time, startMinute, durationMinutes int, selfID uuid.UUID) bool {
	taken, err := s.repo.ListBlocking(ctx, doctorID, date)
	if err != nil {
		return false
	}
	for _, other := range taken {
		if other.ID == selfID {
			continue
		}
		if startMinute < other.StartMinute+other.DurationMinutes &&
			other.StartMinute < startMinute+durationMinutes {
			return false
		}
	}
	return true
}

func (s *Service) validateBooking(req *model.BookingRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.NewValidation("invalid booking request", err)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.NewValidation("reason must not be empty", nil)
	}
	if req.Modality == model.ModalityInPerson && strings.TrimSpace(req.Location) == "" {
		return apperrors.NewValidation("location is required for in-person appointments", nil)
	}
	if req.Modality == model.ModalityTelehealth && strings.TrimSpace(req.Location) != "" {
		return apperrors.NewValidation("location is not allowed for telehealth appointments", nil)
	}
	if len(req.Reminder.Channels()) > 0 {
		if _, err := req.Reminder.Timing.Offset(); err != nil {
			return apperrors.NewValidation("invalid reminder timing", err)
		}
	}
	return nil
}

func (s *Service) count(operation, status string) {
	if s.m != nil {
		s.m.BookingsTotal.WithLabelValues(operation, status).Inc()
	}
}
