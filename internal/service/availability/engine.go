package availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/repository"
)

// Engine derives the bookable slots for a doctor and calendar day from
// working hours, breaks, holidays and the appointments already on the books.
type Engine struct {
	availabilityRepo repository.DoctorAvailabilityRepository
	appointmentRepo  repository.AppointmentRepository
	loc              *time.Location
	now              func() time.Time
}

func NewEngine(
	availabilityRepo repository.DoctorAvailabilityRepository,
	appointmentRepo repository.AppointmentRepository,
	loc *time.Location,
	now func() time.Time,
) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
		loc:              loc,
		now:              now,
	}
}

// blocks reports whether an appointment in this status still holds its slot.
func blocks(status model.AppointmentStatus) bool {
	switch status {
	case model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed, model.AppointmentStatusRescheduled:
		return true
	}
	return false
}

// overlaps tests [aStart, aStart+aDur) against [bStart, bStart+bDur), in
// minutes from start of day.
func overlaps(aStart, aDur, bStart, bDur int) bool {
	return aStart < bStart+bDur && bStart < aStart+aDur
}

// GetAvailableSlots walks the doctor's working window for the weekday of
// date in steps of the configured default duration. Steps inside a break are
// dropped, not marked unavailable; steps whose start is not strictly in the
// future are dropped; steps overlapping a live appointment are returned with
// Available=false. The result is ordered ascending by start minute.
//
// A closed weekday, a holiday or a past date yields an empty result, not an
// error. An unknown doctor yields a not-found error.
func (e *Engine) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	av, err := e.availabilityRepo.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	day := model.DateOnly(date)
	hours, open := av.HoursFor(day)
	if !open || av.IsHoliday(day) {
		return []model.TimeSlot{}, nil
	}

	// A malformed window or duration means no slots, not a panic; the row is
	// admin-owned and arrives unvalidated.
	duration := av.DefaultDurationMinutes
	if duration <= 0 || hours.EndMinute <= hours.StartMinute {
		return []model.TimeSlot{}, nil
	}

	taken, err := e.appointmentRepo.ListBlocking(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}

	now := e.now()
	breaks := av.Breaks[day.Weekday()]
	slots := make([]model.TimeSlot, 0, (hours.EndMinute-hours.StartMinute)/duration)

	for start := hours.StartMinute; start+duration <= hours.EndMinute; start += duration {
		if inBreak(start, duration, breaks) {
			continue
		}
		if !model.StartOfSlot(day, start, e.loc).After(now) {
			continue
		}

		available := true
		for _, apt := range taken {
			if !blocks(apt.Status) {
				continue
			}
			if overlaps(start, duration, apt.StartMinute, apt.DurationMinutes) {
				available = false
				break
			}
		}

		slots = append(slots, model.TimeSlot{
			DoctorID:        doctorID,
			Date:            day,
			StartMinute:     start,
			DurationMinutes: duration,
			Available:       available,
		})
	}

	return slots, nil
}

func inBreak(start, duration int, breaks []model.BreakWindow) bool {
	for _, b := range breaks {
		if overlaps(start, duration, b.StartMinute, b.EndMinute-b.StartMinute) {
			return true
		}
	}
	return false
}
