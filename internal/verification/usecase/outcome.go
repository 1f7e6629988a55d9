package usecase

import (
	"context"
	"log/slog"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
)

// publishOutcomeLocked hands the session outcome to the broker in the
// background. Sessions that never got an id were never opened.
func (c *Coordinator) publishOutcomeLocked(ctx context.Context, outcome entity.Outcome) {
	if c.repoMessaging == nil || c.session.ID == "" {
		return
	}

	evt := OutcomeEvent{
		SessionID:   c.session.ID,
		Purpose:     c.session.Purpose,
		Outcome:     outcome,
		PhoneNumber: c.session.PhoneNumber,
		MaskedPhone: c.session.MaskedPhone,
		RetryCount:  c.session.RetryCount,
		OccurredAt:  c.clock.Now(),
	}

	pCtx := context.WithoutCancel(ctx)
	scheduled := c.goroutine.Go(pCtx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.publishTimeout)
		defer cancel()

		if err := c.repoMessaging.PublishOutcome(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "failed to publish verification outcome",
				"session_id", evt.SessionID,
				"outcome", evt.Outcome,
				"error", err,
			)
			return err
		}
		return nil
	})
	if !scheduled {
		slog.WarnContext(ctx, "verification outcome dropped", "session_id", evt.SessionID, "outcome", evt.Outcome)
	}
}
