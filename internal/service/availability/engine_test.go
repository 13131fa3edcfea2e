package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hafidaso/sal-lmjarab-bolt-sub000/internal/model"
	apperrors "github.com/hafidaso/sal-lmjarab-bolt-sub000/pkg/errors"
)

type fakeAvailabilityRepo struct {
	availability *model.DoctorAvailability
	err          error
	calls        int
}

func (f *fakeAvailabilityRepo) Get(_ context.Context, _ uuid.UUID) (*model.DoctorAvailability, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.availability, nil
}

type fakeAppointmentRepo struct {
	blocking []*model.Appointment
	err      error
	calls    int
}

func (f *fakeAppointmentRepo) ListBlocking(_ context.Context, _ uuid.UUID, _ time.Time) ([]*model.Appointment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.blocking, nil
}

func (f *fakeAppointmentRepo) Create(context.Context, *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Get(context.Context, uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NewNotFound("appointment", nil)
}
func (f *fakeAppointmentRepo) UpdateStatus(context.Context, uuid.UUID, model.AppointmentStatus) error {
	return nil
}
func (f *fakeAppointmentRepo) MoveSlot(context.Context, uuid.UUID, time.Time, int, model.AppointmentStatus) error {
	return nil
}
func (f *fakeAppointmentRepo) ListForPatient(context.Context, uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) ListForDoctor(context.Context, uuid.UUID, *time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentRepo) CountBlocking(context.Context, uuid.UUID, time.Time) (int, error) {
	return len(f.blocking), nil
}

func weekdayHours(start, end int) map[time.Weekday]model.DayHours {
	return map[time.Weekday]model.DayHours{
		time.Monday: {Open: true, StartMinute: start, EndMinute: end},
	}
}

// 2025-01-20 is a Monday.
var monday = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGetAvailableSlots_FullDay(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours:            weekdayHours(540, 1020), // 09:00-17:00
			DefaultDurationMinutes: 30,
		},
	}
	aptRepo := &fakeAppointmentRepo{}
	engine := NewEngine(availRepo, aptRepo, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, 540, slots[0].StartMinute)
	assert.Equal(t, 990, slots[15].StartMinute) // 16:30 is the last slot
	for _, slot := range slots {
		assert.True(t, slot.Available)
		assert.Equal(t, 30, slot.DurationMinutes)
	}
}

func TestGetAvailableSlots_BreaksAreDropped(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours: weekdayHours(540, 1020),
			Breaks: map[time.Weekday][]model.BreakWindow{
				time.Monday: {{StartMinute: 720, EndMinute: 780}}, // 12:00-13:00
			},
			DefaultDurationMinutes: 30,
		},
	}
	engine := NewEngine(availRepo, &fakeAppointmentRepo{}, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)

	require.Len(t, slots, 14)
	for _, slot := range slots {
		assert.False(t, slot.StartMinute >= 720 && slot.StartMinute < 780,
			"slot %d falls inside the break", slot.StartMinute)
	}
}

func TestGetAvailableSlots_PastSlotsSkipped(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours:            weekdayHours(540, 1020),
			DefaultDurationMinutes: 30,
		},
	}
	// 12:15 on the day itself: 12:30 is the first slot strictly in the future.
	now := time.Date(2025, 1, 20, 12, 15, 0, 0, time.UTC)
	engine := NewEngine(availRepo, &fakeAppointmentRepo{}, time.UTC, fixedNow(now))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	assert.Equal(t, 750, slots[0].StartMinute)
}

func TestGetAvailableSlots_BookedSlotUnavailable(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours:            weekdayHours(540, 1020),
			DefaultDurationMinutes: 30,
		},
	}
	aptRepo := &fakeAppointmentRepo{
		blocking: []*model.Appointment{
			{StartMinute: 600, DurationMinutes: 30, Status: model.AppointmentStatusConfirmed},
		},
	}
	engine := NewEngine(availRepo, aptRepo, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	for _, slot := range slots {
		if slot.StartMinute == 600 {
			assert.False(t, slot.Available)
		} else {
			assert.True(t, slot.Available, "slot %d should stay available", slot.StartMinute)
		}
	}
}

func TestGetAvailableSlots_CancelledAppointmentDoesNotBlock(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours:            weekdayHours(540, 1020),
			DefaultDurationMinutes: 30,
		},
	}
	aptRepo := &fakeAppointmentRepo{
		blocking: []*model.Appointment{
			{StartMinute: 600, DurationMinutes: 30, Status: model.AppointmentStatusCancelled},
		},
	}
	engine := NewEngine(availRepo, aptRepo, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)

	for _, slot := range slots {
		assert.True(t, slot.Available)
	}
}

func TestGetAvailableSlots_Holiday(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours:            weekdayHours(540, 1020),
			Holidays:               []time.Time{monday},
			DefaultDurationMinutes: 30,
		},
	}
	engine := NewEngine(availRepo, &fakeAppointmentRepo{}, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlots_ClosedWeekday(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours:            weekdayHours(540, 1020),
			DefaultDurationMinutes: 30,
		},
	}
	engine := NewEngine(availRepo, &fakeAppointmentRepo{}, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	sunday := monday.AddDate(0, 0, -1)
	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), sunday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlots_InvertedWorkingWindow(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours: map[time.Weekday]model.DayHours{
				time.Monday: {Open: true, StartMinute: 1020, EndMinute: 540},
			},
			DefaultDurationMinutes: 30,
		},
	}
	engine := NewEngine(availRepo, &fakeAppointmentRepo{}, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlots_ZeroLengthWindow(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{
		availability: &model.DoctorAvailability{
			WeeklyHours: map[time.Weekday]model.DayHours{
				time.Monday: {Open: true, StartMinute: 540, EndMinute: 540},
			},
			DefaultDurationMinutes: 30,
		},
	}
	engine := NewEngine(availRepo, &fakeAppointmentRepo{}, time.UTC, fixedNow(monday.AddDate(0, 0, -1)))

	slots, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlots_UnknownDoctor(t *testing.T) {
	availRepo := &fakeAvailabilityRepo{err: apperrors.NewNotFound("doctor availability", nil)}
	engine := NewEngine(availRepo, &fakeAppointmentRepo{}, time.UTC, fixedNow(monday))

	_, err := engine.GetAvailableSlots(context.Background(), uuid.New(), monday)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
