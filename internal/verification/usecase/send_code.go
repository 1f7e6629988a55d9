package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// SendCode asks the remote service to deliver a code to phone over channel
// and reports whether it did. Only a shown session waiting for a code, or
// one whose first send never went out, can send.
func (c *Coordinator) SendCode(ctx context.Context, phone string, channel entity.Channel) bool {
	ctx, span := c.startSpan(ctx, "SendCode")
	defer span.End()

	phone = strings.TrimSpace(phone)

	c.mu.Lock()
	s := c.session
	if !s.Visible || !(s.Status.AcceptsCode() || s.Status == entity.StatusIdle) {
		slog.WarnContext(ctx, "send refused in current state", "status", s.Status.String(), "visible", s.Visible)
		c.mu.Unlock()
		return false
	}

	gen, ok := c.beginSendLocked(ctx, phone, channel)
	c.mu.Unlock()
	if !ok {
		return false
	}

	return c.send(ctx, gen, phone, channel)
}

// ResendCode sends a new code to the session's phone when the retry cap and
// the cooldown both allow it. A refused resend only raises a toast.
func (c *Coordinator) ResendCode(ctx context.Context) bool {
	ctx, span := c.startSpan(ctx, "ResendCode")
	defer span.End()

	c.mu.Lock()
	if !c.session.Visible || !c.session.Status.AcceptsCode() {
		c.mu.Unlock()
		return false
	}

	s := c.session
	if err := c.policy.ResendGate(s.ResendCooldownSeconds, s.RetryCount, s.MaxRetries); err != nil {
		slog.WarnContext(ctx, "resend refused",
			"session_id", s.ID,
			"retry_count", s.RetryCount,
			"max_retries", s.MaxRetries,
			"cooldown_seconds", s.ResendCooldownSeconds,
		)
		c.toastLocked(entity.ToastWarning, goerror.Message(err, entity.MsgSendFailed))
		c.mu.Unlock()
		return false
	}

	gen, ok := c.beginSendLocked(ctx, s.PhoneNumber, s.Channel)
	c.mu.Unlock()
	if !ok {
		return false
	}

	return c.send(ctx, gen, s.PhoneNumber, s.Channel)
}

// beginSendLocked validates the request and moves the session to Sending.
func (c *Coordinator) beginSendLocked(ctx context.Context, phone string, channel entity.Channel) (uint64, bool) {
	if c.session.Status.Busy() {
		slog.WarnContext(ctx, "send refused while a request is in flight", "status", c.session.Status.String())
		return 0, false
	}

	err := c.policy.ValidatePhone(phone)
	if err == nil {
		err = c.policy.ValidateChannel(channel)
	}
	if err != nil {
		c.session.ErrorMessage = goerror.Message(err, entity.MsgSendFailed)
		c.changedLocked()
		return 0, false
	}

	if phone != c.session.PhoneNumber {
		c.session.PhoneNumber = phone
		c.session.MaskedPhone = entity.MaskPhone(phone)
	}
	c.session.Channel = channel
	c.session.Status = entity.StatusSending
	c.session.ErrorMessage = ""
	c.changedLocked()

	return c.gen.Load(), true
}

func (c *Coordinator) send(ctx context.Context, gen uint64, phone string, channel entity.Channel) bool {
	err := c.client.SendCode(ctx, phone, channel)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(ctx, gen, "send") {
		return false
	}

	if err != nil {
		slog.ErrorContext(ctx, "failed to send verification code",
			"session_id", c.session.ID,
			"masked_phone", c.session.MaskedPhone,
			"error", err,
		)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.failedCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("channel", string(channel)),
			attribute.String("op", "send"),
		))

		c.stopCooldownLocked()
		c.session.ResendCooldownSeconds = 0
		c.session.Status = entity.StatusError
		c.session.ErrorMessage = entity.SendFailureMessage(err)
		c.changedLocked()
		c.toastLocked(entity.ToastError, c.session.ErrorMessage)
		return false
	}

	c.sentCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("channel", string(channel))))

	c.session.Status = entity.StatusSent
	c.session.RetryCount++
	c.startCooldownLocked(gen, c.cooldownSeconds)
	c.changedLocked()
	c.toastLocked(entity.ToastSuccess, fmt.Sprintf(entity.MsgCodeSent, c.session.MaskedPhone))

	slog.InfoContext(ctx, "verification code sent",
		"session_id", c.session.ID,
		"retry_count", c.session.RetryCount,
		"max_retries", c.session.MaxRetries,
	)

	return true
}
