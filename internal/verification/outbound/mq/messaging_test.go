package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/messaging"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/shared/event"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcome(o entity.Outcome) usecase.OutcomeEvent {
	return usecase.OutcomeEvent{
		SessionID:   "01J0000000000000000000000",
		Purpose:     entity.PurposePaymentMethod,
		Outcome:     o,
		PhoneNumber: "+966500000000",
		MaskedPhone: "*********0000",
		RetryCount:  2,
		OccurredAt:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestMessaging_PublishOutcome(t *testing.T) {
	mem := messaging.NewMemory()
	m := NewMessaging(mem, instrument.NewNoop())

	ctx := instrument.SetCorrelationID(context.Background(), "cid-42")
	require.NoError(t, m.PublishOutcome(ctx, outcome(entity.OutcomeVerified)))
	require.NoError(t, m.PublishOutcome(ctx, outcome(entity.OutcomeCancelled)))

	verified := mem.Messages(event.PhoneVerificationVerifiedDestination)
	require.Len(t, verified, 1)
	assert.Len(t, mem.Messages(event.PhoneVerificationCancelledDestination), 1)

	var body event.PhoneVerificationMessage
	require.NoError(t, json.Unmarshal(verified[0].Body, &body))
	assert.Equal(t, "payment_method", body.Purpose)
	assert.Equal(t, "+966500000000", body.PhoneNumber)
	assert.Equal(t, 2, body.RetryCount)
	assert.Equal(t, []byte("01J0000000000000000000000"), verified[0].Key)
	assert.Equal(t, []messaging.Header{{Key: "cID", Value: []byte("cid-42")}}, verified[0].Headers)
}

func TestMessaging_UnknownOutcome(t *testing.T) {
	m := NewMessaging(messaging.NewMemory(), instrument.NewNoop())
	assert.Error(t, m.PublishOutcome(context.Background(), outcome("expired")))
}

type flakyPublisher struct {
	fails int
	calls int
}

func (f *flakyPublisher) Publish(ctx context.Context, dest string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	f.calls++
	if f.calls <= f.fails {
		return messaging.PublishResult{}, errors.New("broker unavailable")
	}
	return messaging.PublishResult{Topic: dest}, nil
}

func (f *flakyPublisher) Close() error { return nil }

func TestMessaging_RetriesTransientFailures(t *testing.T) {
	pub := &flakyPublisher{fails: 2}
	m := NewMessaging(pub, instrument.NewNoop())
	m.backoff = func() retry.Backoff { return retry.WithMaxRetries(3, retry.NewConstant(time.Millisecond)) }

	require.NoError(t, m.PublishOutcome(context.Background(), outcome(entity.OutcomeVerified)))
	assert.Equal(t, 3, pub.calls)
}

func TestMessaging_GivesUp(t *testing.T) {
	pub := &flakyPublisher{fails: 10}
	m := NewMessaging(pub, instrument.NewNoop())
	m.backoff = func() retry.Backoff { return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond)) }

	assert.Error(t, m.PublishOutcome(context.Background(), outcome(entity.OutcomeCancelled)))
	assert.Equal(t, 3, pub.calls)
}

func TestMessaging_ClosedIsNotRetried(t *testing.T) {
	mem := messaging.NewMemory()
	require.NoError(t, mem.Close())
	m := NewMessaging(mem, instrument.NewNoop())

	err := m.PublishOutcome(context.Background(), outcome(entity.OutcomeVerified))
	assert.ErrorIs(t, err, messaging.ErrClosed)
}
