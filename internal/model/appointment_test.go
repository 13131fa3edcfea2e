package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfSlot_ClinicTimezone(t *testing.T) {
	casablanca, err := time.LoadLocation("Africa/Casablanca")
	require.NoError(t, err)

	date := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	start := StartOfSlot(date, 600, casablanca)

	assert.Equal(t, 10, start.Hour())
	assert.Equal(t, casablanca, start.Location())
	assert.Equal(t, 20, start.Day())
}

func TestAppointmentStartEnd(t *testing.T) {
	apt := &Appointment{
		Date:            time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		StartMinute:     600,
		DurationMinutes: 30,
	}

	start := apt.StartAt(time.UTC)
	assert.Equal(t, time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 20, 10, 30, 0, 0, time.UTC), apt.EndAt(time.UTC))
}

func TestDateOnly(t *testing.T) {
	stamp := time.Date(2025, 1, 20, 18, 45, 12, 99, time.UTC)
	day := DateOnly(stamp)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, time.Monday, day.Weekday())
}

func TestDoctorAvailability_IsHoliday(t *testing.T) {
	av := &DoctorAvailability{
		Holidays: []time.Time{time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
	}
	assert.True(t, av.IsHoliday(time.Date(2025, 1, 20, 15, 30, 0, 0, time.UTC)))
	assert.False(t, av.IsHoliday(time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)))
}

func TestDoctorAvailability_HoursFor(t *testing.T) {
	av := &DoctorAvailability{
		WeeklyHours: map[time.Weekday]DayHours{
			time.Monday:  {Open: true, StartMinute: 540, EndMinute: 1020},
			time.Tuesday: {Open: false, StartMinute: 540, EndMinute: 1020},
		},
	}

	hours, open := av.HoursFor(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))
	require.True(t, open)
	assert.Equal(t, 540, hours.StartMinute)

	_, open = av.HoursFor(time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC))
	assert.False(t, open, "explicitly closed weekday")

	_, open = av.HoursFor(time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC))
	assert.False(t, open, "missing weekday defaults to closed")
}
