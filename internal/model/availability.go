package model

import (
	"time"

	"github.com/google/uuid"
)

// DayHours is one weekday's working window, minutes from start of day.
type DayHours struct {
	Open        bool `json:"open"`
	StartMinute int  `json:"start_minute"`
	EndMinute   int  `json:"end_minute"`
}

// BreakWindow is a recurring break within a weekday's working hours.
type BreakWindow struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// DoctorAvailability is the per-doctor schedule configuration. It is owned
// and mutated by the doctor/admin surface; the scheduling core only reads it.
type DoctorAvailability struct {
	DoctorID               uuid.UUID                      `json:"doctor_id"`
	WeeklyHours            map[time.Weekday]DayHours      `json:"weekly_hours"`
	Breaks                 map[time.Weekday][]BreakWindow `json:"breaks"`
	Holidays               []time.Time                    `json:"holidays"`
	DefaultDurationMinutes int                            `json:"default_duration_minutes"`
	MaxPatientsPerDay      int                            `json:"max_patients_per_day"`
}

// IsHoliday reports whether the given calendar day is a configured holiday.
func (a *DoctorAvailability) IsHoliday(date time.Time) bool {
	day := DateOnly(date)
	for _, h := range a.Holidays {
		if DateOnly(h).Equal(day) {
			return true
		}
	}
	return false
}

// HoursFor returns the working window for the weekday of date.
func (a *DoctorAvailability) HoursFor(date time.Time) (DayHours, bool) {
	hours, ok := a.WeeklyHours[date.Weekday()]
	if !ok || !hours.Open {
		return DayHours{}, false
	}
	return hours, true
}
