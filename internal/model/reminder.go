package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderTiming is the single lead-time selection applied to every enabled
// channel. Channels toggle independently but share one timing; per-channel
// timing is an open product question, not a supported feature.
type ReminderTiming string

const (
	ReminderTiming24Hours   ReminderTiming = "24h"
	ReminderTiming2Hours    ReminderTiming = "2h"
	ReminderTiming30Minutes ReminderTiming = "30m"
	ReminderTiming15Minutes ReminderTiming = "15m"
)

// Offset returns the duration before the appointment start at which
// reminders fire.
func (t ReminderTiming) Offset() (time.Duration, error) {
	switch t {
	case ReminderTiming24Hours:
		return 24 * time.Hour, nil
	case ReminderTiming2Hours:
		return 2 * time.Hour, nil
	case ReminderTiming30Minutes:
		return 30 * time.Minute, nil
	case ReminderTiming15Minutes:
		return 15 * time.Minute, nil
	default:
		return 0, fmt.Errorf("unknown reminder timing %q", string(t))
	}
}

// ReminderPreference is embedded in Appointment.
type ReminderPreference struct {
	Email  bool           `db:"remind_email" json:"email"`
	SMS    bool           `db:"remind_sms" json:"sms"`
	Push   bool           `db:"remind_push" json:"push"`
	Timing ReminderTiming `db:"remind_timing" json:"timing"`
}

// Channels returns the enabled channels in a stable order.
func (p ReminderPreference) Channels() []ReminderChannel {
	var channels []ReminderChannel
	if p.Email {
		channels = append(channels, ReminderChannelEmail)
	}
	if p.SMS {
		channels = append(channels, ReminderChannelSMS)
	}
	if p.Push {
		channels = append(channels, ReminderChannelPush)
	}
	return channels
}

type ReminderChannel string

const (
	ReminderChannelEmail ReminderChannel = "email"
	ReminderChannelSMS   ReminderChannel = "sms"
	ReminderChannelPush  ReminderChannel = "push"
)

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusSent      ReminderStatus = "sent"
	ReminderStatusCancelled ReminderStatus = "cancelled"
	ReminderStatusFailed    ReminderStatus = "failed"
)

// ScheduledReminder is one pending notification for one channel. FireAt is
// always strictly before the appointment start; a reminder whose computed
// fire time has already passed is never created.
type ScheduledReminder struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	Channel       ReminderChannel `db:"channel" json:"channel"`
	FireAt        time.Time       `db:"fire_at" json:"fire_at"`
	Status        ReminderStatus  `db:"status" json:"status"`
	Message       string          `db:"message" json:"message"`
	LastError     *string         `db:"last_error" json:"last_error,omitempty"`
	SentAt        *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// PatientContact carries the per-channel addresses the dispatch worker sends
// to. Maintained by the profile collaborator, read-only here.
type PatientContact struct {
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	PushToken string    `db:"push_token" json:"push_token"`
}
