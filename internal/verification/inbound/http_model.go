package inbound

import (
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
)

type OpenSessionRequest struct {
	PhoneNumber    string `json:"phone_number" validate:"required,phone"`
	Purpose        string `json:"purpose"`
	Channel        string `json:"channel" validate:"otpchannel"`
	CodeLength     int    `json:"code_length" validate:"gte=0,lte=10"`
	ResendCooldown int    `json:"resend_cooldown" validate:"gte=0,lte=3600"`
	MaxRetries     int    `json:"max_retries" validate:"gte=0,lte=20"`
}

type VerifyCodeRequest struct {
	Code string `json:"code"`
}

type DirectSendRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Channel     string `json:"channel" validate:"otpchannel"`
}

type DirectVerifyRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Code        string `json:"code" validate:"required,digits"`
}

type SessionResponse struct {
	ID                    string    `json:"id,omitempty"`
	Purpose               string    `json:"purpose,omitempty"`
	Visible               bool      `json:"visible"`
	Status                string    `json:"status"`
	MaskedPhone           string    `json:"masked_phone"`
	ErrorMessage          string    `json:"error_message,omitempty"`
	ResendCooldownSeconds int       `json:"resend_cooldown_seconds"`
	RetryCount            int       `json:"retry_count"`
	MaxRetries            int       `json:"max_retries"`
	CodeLength            int       `json:"code_length"`
	Channel               string    `json:"channel"`
	CanResend             bool      `json:"can_resend"`
	OpenedAt              time.Time `json:"opened_at,omitzero"`
	// Accepted reports whether the requested action went through.
	Accepted bool `json:"accepted"`

	message string
}

func (r SessionResponse) Message() string {
	if r.message != "" {
		return r.message
	}
	return "verification session"
}

func newSessionResponse(s entity.Session, accepted bool, msg string) SessionResponse {
	return SessionResponse{
		ID:                    s.ID,
		Purpose:               string(s.Purpose),
		Visible:               s.Visible,
		Status:                s.Status.String(),
		MaskedPhone:           s.MaskedPhone,
		ErrorMessage:          s.ErrorMessage,
		ResendCooldownSeconds: s.ResendCooldownSeconds,
		RetryCount:            s.RetryCount,
		MaxRetries:            s.MaxRetries,
		CodeLength:            s.CodeLength,
		Channel:               string(s.Channel),
		CanResend:             s.CanResend(),
		OpenedAt:              s.OpenedAt,
		Accepted:              accepted,
		message:               msg,
	}
}

type DirectResponse struct {
	MaskedPhone string `json:"masked_phone"`
	Verified    bool   `json:"verified"`

	message string
}

func (r DirectResponse) Message() string {
	return r.message
}
