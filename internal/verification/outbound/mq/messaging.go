package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/messaging"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/shared/event"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client  messaging.Publisher
	ins     instrument.Instrumentation
	backoff func() retry.Backoff
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{
		client: client,
		ins:    ins,
		backoff: func() retry.Backoff {
			b := retry.NewFibonacci(100 * time.Millisecond)
			b = retry.WithCappedDuration(2*time.Second, b)
			return retry.WithMaxRetries(4, b)
		},
	}
}

func (m *Messaging) PublishOutcome(ctx context.Context, msg usecase.OutcomeEvent) error {
	ctx, span := m.ins.Tracer("verification.outbound.mq").Start(ctx, "PublishOutcome")
	defer span.End()

	var dest string
	switch msg.Outcome {
	case entity.OutcomeVerified:
		dest = event.PhoneVerificationVerifiedDestination
	case entity.OutcomeCancelled:
		dest = event.PhoneVerificationCancelledDestination
	default:
		err := fmt.Errorf("mq: unknown verification outcome %q", msg.Outcome)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("messaging.destination.name", dest))

	body, err := json.Marshal(event.PhoneVerificationMessage{
		SessionID:   msg.SessionID,
		Purpose:     string(msg.Purpose),
		PhoneNumber: msg.PhoneNumber,
		MaskedPhone: msg.MaskedPhone,
		RetryCount:  msg.RetryCount,
		OccurredAt:  msg.OccurredAt.UTC(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	out := messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(msg.SessionID),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))}},
	}

	if err := retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		_, err := m.client.Publish(ctx, dest, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, messaging.ErrClosed) || errors.Is(err, messaging.ErrDestinationRequired) {
			return err
		}
		return retry.RetryableError(err)
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
