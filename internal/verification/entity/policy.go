package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
)

const (
	MsgInvalidCode        = "Invalid verification code. Please try again."
	MsgVerifyFailed       = "Verification failed. Please try again."
	MsgSendFailed         = "Failed to send verification code. Please try again."
	MsgMaxAttempts        = "Maximum attempts reached"
	MsgPhoneRequired      = "Please enter a valid phone number"
	MsgChannelUnsupported = "Verification channel must be sms or whatsapp"
	MsgCodeSent           = "Verification code sent to %s"
	MsgVerified           = "Phone number verified successfully"
	msgIncompleteCode     = "Please enter the complete %d-digit code"
	msgCooldown           = "Please wait %d seconds before requesting a new code"
)

// Policy holds the verification rules shared by the modal and inline flows.
type Policy struct {
	CodeLength     int
	MaxRetries     int
	ResendCooldown time.Duration
	MinPhoneLength int
	Channel        Channel
}

// DefaultPolicy is used when configuration leaves a field unset.
func DefaultPolicy() Policy {
	return Policy{
		CodeLength:     6,
		MaxRetries:     3,
		ResendCooldown: 90 * time.Second,
		MinPhoneLength: 9,
		Channel:        ChannelSMS,
	}
}

// Normalize fills zero fields from DefaultPolicy.
func (p Policy) Normalize() Policy {
	def := DefaultPolicy()
	if p.CodeLength <= 0 {
		p.CodeLength = def.CodeLength
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = def.MaxRetries
	}
	if p.ResendCooldown <= 0 {
		p.ResendCooldown = def.ResendCooldown
	}
	if p.MinPhoneLength <= 0 {
		p.MinPhoneLength = def.MinPhoneLength
	}
	if !p.Channel.Valid() {
		p.Channel = def.Channel
	}
	return p
}

// Apply resolves cfg against the policy into a complete SessionConfig.
func (p Policy) Apply(cfg SessionConfig) SessionConfig {
	p = p.Normalize()
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = p.CodeLength
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = p.MaxRetries
	}
	if cfg.ResendCooldownSeconds <= 0 {
		cfg.ResendCooldownSeconds = int(p.ResendCooldown / time.Second)
	}
	if !cfg.Channel.Valid() {
		cfg.Channel = p.Channel
	}
	return cfg
}

// ValidatePhone rejects empty and too short numbers.
func (p Policy) ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" || utf8.RuneCountInString(phone) < p.Normalize().MinPhoneLength {
		return goerror.NewValidation("phone_number", MsgPhoneRequired)
	}
	return nil
}

// ValidateChannel rejects anything but sms and whatsapp.
func (p Policy) ValidateChannel(c Channel) error {
	if !c.Valid() {
		return goerror.NewValidation("channel", MsgChannelUnsupported)
	}
	return nil
}

// ValidateCode requires exactly length digits.
func (p Policy) ValidateCode(code string, length int) error {
	if utf8.RuneCountInString(code) != length || strings.IndexFunc(code, func(r rune) bool { return !IsDigit(r) }) >= 0 {
		return goerror.NewValidation("code", IncompleteCodeMessage(length))
	}
	return nil
}

// IsDigit reports whether r is one of the ASCII digits the OTP service
// accepts.
func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ResendGate checks the retry cap, then the cooldown. An exhausted cap wins
// since it never lifts.
func (p Policy) ResendGate(cooldownSeconds, retryCount, maxRetries int) error {
	if retryCount >= maxRetries {
		return goerror.NewBusiness(MsgMaxAttempts, goerror.CodeTooManyRequest)
	}
	if cooldownSeconds > 0 {
		return goerror.NewBusiness(CooldownMessage(cooldownSeconds), goerror.CodeTooManyRequest)
	}
	return nil
}

func IncompleteCodeMessage(length int) string {
	return fmt.Sprintf(msgIncompleteCode, length)
}

func CooldownMessage(seconds int) string {
	return fmt.Sprintf(msgCooldown, seconds)
}

// IsInvalidCode reports whether err means the server rejected the code itself.
func IsInvalidCode(err error) bool {
	return goerror.HasCode(err, goerror.CodeNotFound)
}

// IsValidation reports whether err is a local input error.
func IsValidation(err error) bool {
	var gerr *goerror.Error
	return errors.As(err, &gerr) && gerr.Type() == goerror.TypeValidation
}

// VerifyFailureMessage picks the user-facing text for a failed verify.
func VerifyFailureMessage(err error) string {
	if IsValidation(err) {
		return goerror.Message(err, MsgVerifyFailed)
	}
	if IsInvalidCode(err) {
		return MsgInvalidCode
	}
	return MsgVerifyFailed
}

// SendFailureMessage picks the user-facing text for a failed send. Messages
// of server errors are never shown.
func SendFailureMessage(err error) string {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Type() == goerror.TypeServer {
		return MsgSendFailed
	}
	return goerror.Message(err, MsgSendFailed)
}
