package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// VerifyCode submits code for the session's phone. A code of the wrong
// length is rejected locally. On success the success callback runs once and
// the modal closes after the success close delay.
func (c *Coordinator) VerifyCode(ctx context.Context, code string) bool {
	ctx, span := c.startSpan(ctx, "VerifyCode")
	defer span.End()

	code = strings.TrimSpace(code)

	c.mu.Lock()
	if !c.session.Visible || !c.session.Status.AcceptsCode() {
		slog.WarnContext(ctx, "verify refused in current state", "status", c.session.Status.String(), "visible", c.session.Visible)
		c.mu.Unlock()
		return false
	}

	if err := c.policy.ValidateCode(code, c.session.CodeLength); err != nil {
		c.session.ErrorMessage = goerror.Message(err, entity.MsgVerifyFailed)
		c.changedLocked()
		c.mu.Unlock()
		return false
	}

	c.session.Status = entity.StatusVerifying
	c.session.ErrorMessage = ""
	c.changedLocked()
	phone := c.session.PhoneNumber
	gen := c.gen.Load()
	c.mu.Unlock()

	err := c.client.VerifyCode(ctx, phone, code)

	c.mu.Lock()
	if c.stale(ctx, gen, "verify") {
		c.mu.Unlock()
		return false
	}

	if err != nil {
		slog.WarnContext(ctx, "failed to verify code",
			"session_id", c.session.ID,
			"invalid_code", entity.IsInvalidCode(err),
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.failedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "verify")))

		c.session.Status = entity.StatusError
		c.session.ErrorMessage = entity.VerifyFailureMessage(err)
		c.changedLocked()
		c.toastLocked(entity.ToastError, c.session.ErrorMessage)
		c.mu.Unlock()
		return false
	}

	c.verifiedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("purpose", string(c.session.Purpose))))

	c.session.Status = entity.StatusSuccess
	c.stopCooldownLocked()
	c.session.ResendCooldownSeconds = 0
	success := c.onSuccess
	c.onSuccess = nil
	c.onCancel = nil
	c.publishOutcomeLocked(ctx, entity.OutcomeVerified)

	c.closer = c.clock.AfterFunc(c.successCloseDelay, func() {
		c.autoClose(trace.ContextWithSpanContext(context.Background(), span.SpanContext()), gen)
	})

	slog.InfoContext(ctx, "phone number verified", "session_id", c.session.ID, "purpose", c.session.Purpose)
	c.changedLocked()
	c.toastLocked(entity.ToastSuccess, entity.MsgVerified)
	c.mu.Unlock()

	if success != nil {
		success()
	}

	return true
}

func (c *Coordinator) autoClose(ctx context.Context, gen uint64) {
	c.mu.Lock()
	stale := c.stale(ctx, gen, "auto close")
	c.mu.Unlock()
	if stale {
		return
	}

	c.close(ctx, "closed after success")
}
