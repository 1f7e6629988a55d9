package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
)

type OpenSessionInput struct {
	PhoneNumber string
	Purpose     entity.Purpose
	Config      entity.SessionConfig
	// OnSuccess runs once when the code is accepted.
	OnSuccess func()
	// OnCancel runs once when the session is closed before success.
	OnCancel func()
}

// OpenSession supersedes any active session, shows the modal and sends the
// first code. It reports whether that send succeeded.
func (c *Coordinator) OpenSession(ctx context.Context, in OpenSessionInput) bool {
	ctx, span := c.startSpan(ctx, "OpenSession")
	defer span.End()

	phone := strings.TrimSpace(in.PhoneNumber)
	cfg := c.policy.Apply(in.Config)

	c.mu.Lock()
	if c.session.Visible {
		slog.InfoContext(ctx, "superseding active verification session", "session_id", c.session.ID, "purpose", c.session.Purpose)
	}
	c.resetLocked()

	c.session.Visible = true
	c.session.Purpose = in.Purpose.Ensure()
	c.session.PhoneNumber = phone
	c.session.MaskedPhone = entity.MaskPhone(phone)
	c.session.CodeLength = cfg.CodeLength
	c.session.MaxRetries = cfg.MaxRetries
	c.session.Channel = cfg.Channel
	c.session.OpenedAt = c.clock.Now()
	if c.uuid != nil {
		c.session.ID = c.uuid.Generate()
	}
	c.cooldownSeconds = cfg.ResendCooldownSeconds
	c.onSuccess = in.OnSuccess
	c.onCancel = in.OnCancel

	slog.InfoContext(ctx, "verification session opened",
		"session_id", c.session.ID,
		"purpose", c.session.Purpose,
		"masked_phone", c.session.MaskedPhone,
		"channel", c.session.Channel,
	)

	gen, ok := c.beginSendLocked(ctx, phone, cfg.Channel)
	c.mu.Unlock()
	if !ok {
		return false
	}

	return c.send(ctx, gen, phone, cfg.Channel)
}

// CloseSession hides the modal. A session closed before success fires its
// cancel callback once; the session is reset after the reset delay. Closing
// a hidden session does nothing.
func (c *Coordinator) CloseSession(ctx context.Context) {
	ctx, span := c.startSpan(ctx, "CloseSession")
	defer span.End()

	c.close(ctx, "closed")
}

// SuppressModal closes the modal on behalf of a surface that runs its own
// verification flow.
func (c *Coordinator) SuppressModal(ctx context.Context) {
	ctx, span := c.startSpan(ctx, "SuppressModal")
	defer span.End()

	c.close(ctx, "suppressed")
}

// ResetSession restores defaults, drops callbacks and stops timers without
// firing any callback.
func (c *Coordinator) ResetSession() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.changedLocked()
}

func (c *Coordinator) close(ctx context.Context, reason string) {
	c.mu.Lock()
	if !c.session.Visible {
		c.mu.Unlock()
		return
	}

	c.gen.Inc()
	c.stopTimersLocked()
	c.session.Visible = false

	var cancel func()
	if c.session.Status != entity.StatusSuccess {
		cancel = c.onCancel
		c.publishOutcomeLocked(ctx, entity.OutcomeCancelled)
	}
	c.onSuccess = nil
	c.onCancel = nil

	gen := c.gen.Load()
	c.closer = c.clock.AfterFunc(c.resetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.stale(context.Background(), gen, "deferred reset") {
			return
		}
		c.resetLocked()
		c.changedLocked()
	})

	slog.InfoContext(ctx, "verification session "+reason,
		"session_id", c.session.ID,
		"status", c.session.Status.String(),
	)
	c.changedLocked()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Coordinator) resetLocked() {
	c.gen.Inc()
	c.stopTimersLocked()
	c.session = c.idleSession()
	c.cooldownSeconds = int(c.policy.ResendCooldown.Seconds())
	c.onSuccess = nil
	c.onCancel = nil
}
