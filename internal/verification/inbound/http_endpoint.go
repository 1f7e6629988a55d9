package inbound

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/router"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/validator"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
)

type HTTPEndpoint struct {
	uc        uc
	direct    directClient
	validator validator.Validator
}

// OpenSession opens the verification modal for a phone number and sends the
// first code. Any open session is superseded.
func (h *HTTPEndpoint) OpenSession(r *router.Request) (any, error) {
	var req OpenSessionRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := h.validator.Validate(req); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	channel, err := entity.ParseChannel(req.Channel, "")
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "channel", entity.MsgChannelUnsupported)
	}

	ctx := r.Context()
	purpose := entity.Purpose(req.Purpose).Ensure()
	ok := h.uc.OpenSession(ctx, usecase.OpenSessionInput{
		PhoneNumber: req.PhoneNumber,
		Purpose:     purpose,
		Config: entity.SessionConfig{
			CodeLength:            req.CodeLength,
			ResendCooldownSeconds: req.ResendCooldown,
			MaxRetries:            req.MaxRetries,
			Channel:               channel,
		},
		OnSuccess: func() {
			slog.InfoContext(ctx, "http verification session verified", "purpose", purpose)
		},
		OnCancel: func() {
			slog.InfoContext(ctx, "http verification session cancelled", "purpose", purpose)
		},
	})

	s := h.uc.Snapshot()
	if ok {
		return newSessionResponse(s, true, "verification code sent"), nil
	}
	return newSessionResponse(s, false, refusal(s, entity.MsgSendFailed)), nil
}

// GetSession returns the current session.
func (h *HTTPEndpoint) GetSession(r *router.Request) (any, error) {
	return newSessionResponse(h.uc.Snapshot(), true, ""), nil
}

// CloseSession dismisses the modal. Closing before success cancels.
func (h *HTTPEndpoint) CloseSession(r *router.Request) (any, error) {
	h.uc.CloseSession(r.Context())

	return newSessionResponse(h.uc.Snapshot(), true, "verification session closed"), nil
}

// VerifyCode submits the code typed into the modal.
func (h *HTTPEndpoint) VerifyCode(r *router.Request) (any, error) {
	var req VerifyCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ok := h.uc.VerifyCode(r.Context(), req.Code)

	s := h.uc.Snapshot()
	if ok {
		return newSessionResponse(s, true, entity.MsgVerified), nil
	}
	return newSessionResponse(s, false, refusal(s, entity.MsgVerifyFailed)), nil
}

// ResendCode asks for a new code when the cooldown and retry cap allow it.
func (h *HTTPEndpoint) ResendCode(r *router.Request) (any, error) {
	ok := h.uc.ResendCode(r.Context())

	s := h.uc.Snapshot()
	if ok {
		return newSessionResponse(s, true, "verification code resent"), nil
	}

	msg := refusal(s, entity.MsgSendFailed)
	if err := h.uc.Policy().ResendGate(s.ResendCooldownSeconds, s.RetryCount, s.MaxRetries); err != nil {
		msg = goerror.Message(err, msg)
	}
	return newSessionResponse(s, false, msg), nil
}

// SuppressModal is called by pages that mount the inline verification flow.
func (h *HTTPEndpoint) SuppressModal(r *router.Request) (any, error) {
	h.uc.SuppressModal(r.Context())

	return newSessionResponse(h.uc.Snapshot(), true, "verification modal suppressed"), nil
}

// DirectSend sends a code without touching the modal session.
func (h *HTTPEndpoint) DirectSend(r *router.Request) (any, error) {
	var req DirectSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := h.validator.Validate(req); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	channel, err := entity.ParseChannel(req.Channel, h.uc.Policy().Channel)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "channel", entity.MsgChannelUnsupported)
	}

	if err := h.direct.SendCode(r.Context(), req.PhoneNumber, channel); err != nil {
		slog.WarnContext(r.Context(), "direct send failed", "masked_phone", entity.MaskPhone(req.PhoneNumber), "error", err)
		return nil, goerror.WrapBusiness(err, entity.SendFailureMessage(err), codeOf(err))
	}

	return DirectResponse{MaskedPhone: entity.MaskPhone(req.PhoneNumber), message: "verification code sent"}, nil
}

// DirectVerify checks a code without touching the modal session.
func (h *HTTPEndpoint) DirectVerify(r *router.Request) (any, error) {
	var req DirectVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Code = strings.TrimSpace(req.Code)
	if err := h.validator.Validate(req); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	policy := h.uc.Policy()
	if err := policy.ValidateCode(req.Code, policy.CodeLength); err != nil {
		return nil, err
	}

	if err := h.direct.VerifyCode(r.Context(), req.PhoneNumber, req.Code); err != nil {
		slog.WarnContext(r.Context(), "direct verify failed", "invalid_code", entity.IsInvalidCode(err), "error", err)
		code := goerror.CodeInternal
		if entity.IsInvalidCode(err) {
			code = goerror.CodeNotFound
		}
		return nil, goerror.WrapBusiness(err, entity.VerifyFailureMessage(err), code)
	}

	return DirectResponse{
		MaskedPhone: entity.MaskPhone(req.PhoneNumber),
		Verified:    true,
		message:     entity.MsgVerified,
	}, nil
}

func refusal(s entity.Session, fallback string) string {
	if s.ErrorMessage != "" {
		return s.ErrorMessage
	}
	return fallback
}

func codeOf(err error) goerror.Code {
	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Type() != goerror.TypeServer {
		return gerr.Code()
	}
	return goerror.CodeInternal
}
