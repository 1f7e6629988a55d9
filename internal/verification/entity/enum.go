package entity

import (
	"errors"
	"strings"
)

var ErrChannelUnsupported = errors.New("verification: channel is unsupported")

// Status is the lifecycle state of a verification session.
type Status int8

const (
	// StatusIdle means no session is active.
	StatusIdle Status = iota
	// StatusSending means a send request is in flight.
	StatusSending
	// StatusSent means a code was delivered and can be verified.
	StatusSent
	// StatusVerifying means a verify request is in flight.
	StatusVerifying
	// StatusSuccess means the code was accepted.
	StatusSuccess
	// StatusError means the last send or verify failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSending:
		return "sending"
	case StatusSent:
		return "sent"
	case StatusVerifying:
		return "verifying"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Busy reports whether a request is in flight.
func (s Status) Busy() bool {
	return s == StatusSending || s == StatusVerifying
}

// AcceptsCode reports whether a code may be submitted in this state.
func (s Status) AcceptsCode() bool {
	return s == StatusSent || s == StatusError
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Channel is the delivery channel of a verification code.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	return c == ChannelSMS || c == ChannelWhatsApp
}

// ParseChannel maps user input to a Channel. Empty input yields def.
func ParseChannel(s string, def Channel) (Channel, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return def, nil
	}

	c := Channel(s)
	if !c.Valid() {
		return "", ErrChannelUnsupported
	}

	return c, nil
}

// Purpose names the feature that asked for verification.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePaymentMethod Purpose = "payment_method"
	PurposeProfilePhone  Purpose = "profile_phone"
	PurposeReportWizard  Purpose = "report_wizard"
	PurposeStandalone    Purpose = "standalone"
)

func (p Purpose) Ensure() Purpose {
	switch p {
	case PurposeRegistration, PurposePaymentMethod, PurposeProfilePhone, PurposeReportWizard:
		return p
	default:
		return PurposeStandalone
	}
}

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeVerified  Outcome = "verified"
	OutcomeCancelled Outcome = "cancelled"
)
