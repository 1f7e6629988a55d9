package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaskRune replaces hidden phone characters.
const MaskRune = '*'

// SessionConfig overrides the policy for one session. Zero values fall back
// to the policy defaults.
type SessionConfig struct {
	CodeLength            int
	ResendCooldownSeconds int
	MaxRetries            int
	Channel               Channel
}

// Session is a read-only snapshot of the active verification session.
type Session struct {
	ID                    string    `json:"id,omitempty"`
	Purpose               Purpose   `json:"purpose,omitempty"`
	Visible               bool      `json:"visible"`
	Status                Status    `json:"status"`
	PhoneNumber           string    `json:"-"`
	MaskedPhone           string    `json:"masked_phone"`
	ErrorMessage          string    `json:"error_message,omitempty"`
	ResendCooldownSeconds int       `json:"resend_cooldown_seconds"`
	RetryCount            int       `json:"retry_count"`
	MaxRetries            int       `json:"max_retries"`
	CodeLength            int       `json:"code_length"`
	Channel               Channel   `json:"channel"`
	OpenedAt              time.Time `json:"opened_at,omitzero"`
}

// CanResend reports whether a resend would pass every gate.
func (s Session) CanResend() bool {
	return s.Status.AcceptsCode() &&
		s.ResendCooldownSeconds == 0 &&
		s.RetryCount < s.MaxRetries
}

// RetriesExhausted reports whether the session may never resend again.
func (s Session) RetriesExhausted() bool {
	return s.MaxRetries > 0 && s.RetryCount >= s.MaxRetries
}

// MaskPhone hides all but the last four characters of phone, keeping its length.
func MaskPhone(phone string) string {
	n := utf8.RuneCountInString(phone)
	if n <= 4 {
		return phone
	}

	runes := []rune(phone)
	return strings.Repeat(string(MaskRune), n-4) + string(runes[n-4:])
}
