package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/clock"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goroutine"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/uid"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testPhone = "+966500000000"

type fakeClient struct {
	mu          sync.Mutex
	sends       int
	verifies    int
	sendErr     error
	verifyErr   error
	onSend      func()
	onVerify    func()
	lastPhone   string
	lastCode    string
	lastChannel entity.Channel
}

func (f *fakeClient) SendCode(ctx context.Context, phone string, channel entity.Channel) error {
	f.mu.Lock()
	f.sends++
	f.lastPhone = phone
	f.lastChannel = channel
	hook := f.onSend
	f.onSend = nil
	err := f.sendErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeClient) VerifyCode(ctx context.Context, phone, code string) error {
	f.mu.Lock()
	f.verifies++
	f.lastCode = code
	hook := f.onVerify
	f.onVerify = nil
	err := f.verifyErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeClient) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends, f.verifies
}

type fakeOutcomes struct {
	mu     sync.Mutex
	events []OutcomeEvent
}

func (f *fakeOutcomes) PublishOutcome(ctx context.Context, msg OutcomeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

func (f *fakeOutcomes) list() []OutcomeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]OutcomeEvent(nil), f.events...)
}

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type fixture struct {
	coord    *Coordinator
	client   *fakeClient
	clock    *clock.Fake
	outcomes *fakeOutcomes
	mgr      *goroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		client:   &fakeClient{},
		clock:    clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		outcomes: &fakeOutcomes{},
		mgr:      goroutine.NewManager(4),
	}
	f.coord = New(Dependency{
		Client:        f.client,
		RepoMessaging: f.outcomes,
		Clock:         f.clock,
		UUID:          uid.NewUUID(),
		UID:           &seqID{},
		Goroutine:     f.mgr,
		Policy:        entity.DefaultPolicy(),
	})
	t.Cleanup(func() { _ = f.mgr.Wait() })

	return f
}

type callbacks struct {
	mu      sync.Mutex
	success int
	cancel  int
}

func (c *callbacks) onSuccess() { c.mu.Lock(); c.success++; c.mu.Unlock() }
func (c *callbacks) onCancel()  { c.mu.Lock(); c.cancel++; c.mu.Unlock() }

func (c *callbacks) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.success, c.cancel
}

func (f *fixture) open(t *testing.T, cb *callbacks, cfg entity.SessionConfig) bool {
	t.Helper()
	return f.coord.OpenSession(context.Background(), OpenSessionInput{
		PhoneNumber: testPhone,
		Purpose:     entity.PurposeRegistration,
		Config:      cfg,
		OnSuccess:   cb.onSuccess,
		OnCancel:    cb.onCancel,
	})
}

// drain collects every event already buffered on ch.
func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case evt := <-ch:
			out = append(out, evt)
		default:
			return out
		}
	}
}

func subscribe(t *testing.T, c *Coordinator) <-chan Event {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	ch := c.Subscribe(ctx)
	t.Cleanup(func() {
		cancel()
		for range ch {
		}
	})
	return ch
}

func toasts(events []Event) []entity.Toast {
	var out []entity.Toast
	for _, evt := range events {
		if evt.Type == EventToast {
			out = append(out, evt.Toast)
		}
	}
	return out
}

func TestOpenSession_SendsFirstCode(t *testing.T) {
	f := newFixture(t)
	ch := subscribe(t, f.coord)

	var during entity.Status
	f.client.onSend = func() { during = f.coord.Snapshot().Status }

	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))

	s := f.coord.Snapshot()
	assert.Equal(t, entity.StatusSending, during)
	assert.Equal(t, entity.StatusSent, s.Status)
	assert.True(t, s.Visible)
	assert.Equal(t, 90, s.ResendCooldownSeconds)
	assert.Equal(t, 1, s.RetryCount)
	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, 6, s.CodeLength)
	assert.Equal(t, entity.ChannelSMS, s.Channel)
	assert.Equal(t, "*********0000", s.MaskedPhone)
	assert.Equal(t, entity.PurposeRegistration, s.Purpose)
	assert.NotEmpty(t, s.ID)
	assert.Empty(t, s.ErrorMessage)
	assert.Equal(t, testPhone, f.client.lastPhone)

	var statuses []entity.Status
	events := drain(ch)
	for _, evt := range events {
		if evt.Type == EventSession {
			statuses = append(statuses, evt.Session.Status)
		}
	}
	assert.Equal(t, []entity.Status{entity.StatusIdle, entity.StatusSending, entity.StatusSent}, statuses)
	require.Len(t, toasts(events), 1)
	assert.Equal(t, "Verification code sent to *********0000", toasts(events)[0].Message)
}

func TestOpenSession_ConfigOverrides(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{
		CodeLength:            4,
		ResendCooldownSeconds: 30,
		MaxRetries:            5,
		Channel:               entity.ChannelWhatsApp,
	}))

	s := f.coord.Snapshot()
	assert.Equal(t, 4, s.CodeLength)
	assert.Equal(t, 30, s.ResendCooldownSeconds)
	assert.Equal(t, 5, s.MaxRetries)
	assert.Equal(t, entity.ChannelWhatsApp, f.client.lastChannel)
}

func TestCooldown_DecreasesOncePerSecond(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))

	for want := 89; want >= 0; want-- {
		f.clock.Advance(time.Second)
		s := f.coord.Snapshot()
		require.Equal(t, want, s.ResendCooldownSeconds)
		if want > 0 {
			require.False(t, s.CanResend())
		}
	}

	assert.Equal(t, 0, f.clock.Pending())
	assert.True(t, f.coord.Snapshot().CanResend())

	f.clock.Advance(10 * time.Second)
	assert.Equal(t, 0, f.coord.Snapshot().ResendCooldownSeconds)
}

func TestResendCode_RefusedDuringCooldown(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))

	f.clock.Advance(30 * time.Second)
	ch := subscribe(t, f.coord)
	drain(ch)

	assert.False(t, f.coord.ResendCode(context.Background()))

	sends, _ := f.client.counts()
	assert.Equal(t, 1, sends)
	ts := toasts(drain(ch))
	require.Len(t, ts, 1)
	assert.Equal(t, entity.ToastWarning, ts[0].Level)
	assert.Equal(t, "Please wait 60 seconds before requesting a new code", ts[0].Message)
}

func TestResendCode_RestartsSingleCooldown(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{ResendCooldownSeconds: 5}))

	f.clock.Advance(5 * time.Second)
	require.True(t, f.coord.ResendCode(context.Background()))

	s := f.coord.Snapshot()
	assert.Equal(t, 2, s.RetryCount)
	assert.Equal(t, 5, s.ResendCooldownSeconds)
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(time.Second)
	assert.Equal(t, 4, f.coord.Snapshot().ResendCooldownSeconds)
}

func TestResendCode_RetryCap(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{MaxRetries: 2}))

	f.clock.Advance(90 * time.Second)
	require.True(t, f.coord.ResendCode(context.Background()))

	ch := subscribe(t, f.coord)
	drain(ch)

	assert.False(t, f.coord.ResendCode(context.Background()))
	f.clock.Advance(90 * time.Second)
	assert.False(t, f.coord.ResendCode(context.Background()))

	sends, _ := f.client.counts()
	assert.Equal(t, 2, sends)

	s := f.coord.Snapshot()
	assert.True(t, s.RetriesExhausted())
	assert.False(t, s.CanResend())

	ts := toasts(drain(ch))
	require.NotEmpty(t, ts)
	for _, toast := range ts {
		assert.Equal(t, entity.MsgMaxAttempts, toast.Message)
	}
}

func TestVerifyCode_LengthGate(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))

	for _, code := range []string{"", "123", "1234567", "12a456"} {
		assert.False(t, f.coord.VerifyCode(context.Background(), code))
	}

	_, verifies := f.client.counts()
	assert.Equal(t, 0, verifies)

	s := f.coord.Snapshot()
	assert.Equal(t, entity.StatusSent, s.Status)
	assert.Equal(t, "Please enter the complete 6-digit code", s.ErrorMessage)
}

func TestVerifyCode_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid code",
			err:  goerror.WrapBusiness(errors.New("status 404"), entity.MsgInvalidCode, goerror.CodeNotFound),
			want: entity.MsgInvalidCode,
		},
		{
			name: "generic failure",
			err:  goerror.NewServer(errors.New("status 502")),
			want: entity.MsgVerifyFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cb := &callbacks{}
			require.True(t, f.open(t, cb, entity.SessionConfig{}))
			f.client.verifyErr = tt.err

			assert.False(t, f.coord.VerifyCode(context.Background(), "123456"))

			s := f.coord.Snapshot()
			assert.Equal(t, entity.StatusError, s.Status)
			assert.Equal(t, tt.want, s.ErrorMessage)

			f.client.verifyErr = nil
			assert.True(t, f.coord.VerifyCode(context.Background(), "654321"))
			assert.Empty(t, f.coord.Snapshot().ErrorMessage)

			success, cancel := cb.counts()
			assert.Equal(t, 1, success)
			assert.Equal(t, 0, cancel)
		})
	}
}

func TestVerifyCode_SuccessAutoCloses(t *testing.T) {
	f := newFixture(t)
	cb := &callbacks{}
	require.True(t, f.open(t, cb, entity.SessionConfig{}))

	require.True(t, f.coord.VerifyCode(context.Background(), "123456"))
	assert.Equal(t, "123456", f.client.lastCode)

	s := f.coord.Snapshot()
	assert.Equal(t, entity.StatusSuccess, s.Status)
	assert.True(t, s.Visible)
	assert.Equal(t, 0, s.ResendCooldownSeconds)

	assert.False(t, f.coord.VerifyCode(context.Background(), "123456"))

	f.clock.Advance(time.Second)
	s = f.coord.Snapshot()
	assert.False(t, s.Visible)
	assert.Equal(t, entity.StatusSuccess, s.Status)

	f.clock.Advance(300 * time.Millisecond)
	assert.Equal(t, entity.StatusIdle, f.coord.Snapshot().Status)

	success, cancel := cb.counts()
	assert.Equal(t, 1, success)
	assert.Equal(t, 0, cancel)

	require.NoError(t, f.mgr.Wait())
	events := f.outcomes.list()
	require.Len(t, events, 1)
	assert.Equal(t, entity.OutcomeVerified, events[0].Outcome)
	assert.Equal(t, entity.PurposeRegistration, events[0].Purpose)
	assert.Equal(t, 1, events[0].RetryCount)
}

func TestCloseSession_CancelsOnceAndResets(t *testing.T) {
	f := newFixture(t)
	cb := &callbacks{}
	require.True(t, f.open(t, cb, entity.SessionConfig{}))

	f.coord.CloseSession(context.Background())
	f.coord.CloseSession(context.Background())

	_, cancel := cb.counts()
	assert.Equal(t, 1, cancel)

	s := f.coord.Snapshot()
	assert.False(t, s.Visible)
	assert.Equal(t, entity.StatusSent, s.Status)

	f.clock.Advance(299 * time.Millisecond)
	assert.Equal(t, entity.StatusSent, f.coord.Snapshot().Status)

	f.clock.Advance(time.Millisecond)
	s = f.coord.Snapshot()
	assert.Equal(t, entity.StatusIdle, s.Status)
	assert.Empty(t, s.PhoneNumber)
	assert.Empty(t, s.MaskedPhone)
	assert.Zero(t, s.RetryCount)
	assert.Zero(t, s.ResendCooldownSeconds)
	assert.Equal(t, 0, f.clock.Pending())

	success, cancel := cb.counts()
	assert.Equal(t, 0, success)
	assert.Equal(t, 1, cancel)

	require.NoError(t, f.mgr.Wait())
	events := f.outcomes.list()
	require.Len(t, events, 1)
	assert.Equal(t, entity.OutcomeCancelled, events[0].Outcome)
	assert.Equal(t, testPhone, events[0].PhoneNumber)
}

func TestCloseSession_DropsInFlightVerify(t *testing.T) {
	f := newFixture(t)
	cb := &callbacks{}
	require.True(t, f.open(t, cb, entity.SessionConfig{}))

	f.client.onVerify = func() { f.coord.CloseSession(context.Background()) }

	assert.False(t, f.coord.VerifyCode(context.Background(), "123456"))

	success, cancel := cb.counts()
	assert.Equal(t, 0, success)
	assert.Equal(t, 1, cancel)
	assert.Equal(t, entity.StatusVerifying, f.coord.Snapshot().Status)

	f.clock.Advance(300 * time.Millisecond)
	assert.Equal(t, entity.StatusIdle, f.coord.Snapshot().Status)
}

func TestOpenSession_SupersedesPrevious(t *testing.T) {
	f := newFixture(t)
	first := &callbacks{}
	second := &callbacks{}

	f.client.onSend = func() {
		assert.True(t, f.coord.OpenSession(context.Background(), OpenSessionInput{
			PhoneNumber: "+966511112222",
			OnSuccess:   second.onSuccess,
			OnCancel:    second.onCancel,
		}))
	}

	assert.False(t, f.open(t, first, entity.SessionConfig{}))

	s := f.coord.Snapshot()
	assert.Equal(t, entity.StatusSent, s.Status)
	assert.Equal(t, "+966511112222", s.PhoneNumber)
	assert.Equal(t, 1, s.RetryCount)
	assert.Equal(t, entity.PurposeStandalone, s.Purpose)
	assert.Equal(t, 1, f.clock.Pending())

	require.True(t, f.coord.VerifyCode(context.Background(), "123456"))
	f.coord.CloseSession(context.Background())

	success, cancel := first.counts()
	assert.Equal(t, 0, success)
	assert.Equal(t, 0, cancel)

	success, cancel = second.counts()
	assert.Equal(t, 1, success)
	assert.Equal(t, 0, cancel)
}

func TestOpenSession_CancelsPendingReset(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))
	f.coord.CloseSession(context.Background())

	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))
	f.clock.Advance(time.Second)

	s := f.coord.Snapshot()
	assert.True(t, s.Visible)
	assert.Equal(t, entity.StatusSent, s.Status)
	assert.Equal(t, 89, s.ResendCooldownSeconds)
}

func TestSendCode_Failure(t *testing.T) {
	f := newFixture(t)
	ch := subscribe(t, f.coord)
	f.client.sendErr = goerror.NewServer(errors.New("dial tcp: connection refused"))

	assert.False(t, f.open(t, &callbacks{}, entity.SessionConfig{}))

	s := f.coord.Snapshot()
	assert.Equal(t, entity.StatusError, s.Status)
	assert.Equal(t, entity.MsgSendFailed, s.ErrorMessage)
	assert.Zero(t, s.RetryCount)
	assert.Zero(t, s.ResendCooldownSeconds)
	assert.Equal(t, 0, f.clock.Pending())

	ts := toasts(drain(ch))
	require.Len(t, ts, 1)
	assert.Equal(t, entity.ToastError, ts[0].Level)

	f.client.sendErr = nil
	require.True(t, f.coord.ResendCode(context.Background()))
	assert.Equal(t, 1, f.coord.Snapshot().RetryCount)
}

func TestSendCode_Validation(t *testing.T) {
	f := newFixture(t)
	ch := subscribe(t, f.coord)

	assert.False(t, f.coord.OpenSession(context.Background(), OpenSessionInput{PhoneNumber: "  "}))
	assert.False(t, f.coord.SendCode(context.Background(), testPhone, "email"))

	sends, _ := f.client.counts()
	assert.Equal(t, 0, sends)
	assert.Equal(t, entity.MsgChannelUnsupported, f.coord.Snapshot().ErrorMessage)
	assert.Empty(t, toasts(drain(ch)))
}

func TestSendCode_RefusedWhileBusy(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))

	f.client.onVerify = func() {
		assert.False(t, f.coord.SendCode(context.Background(), testPhone, entity.ChannelSMS))
		assert.False(t, f.coord.ResendCode(context.Background()))
		assert.False(t, f.coord.VerifyCode(context.Background(), "123456"))
	}
	require.True(t, f.coord.VerifyCode(context.Background(), "123456"))

	sends, verifies := f.client.counts()
	assert.Equal(t, 1, sends)
	assert.Equal(t, 1, verifies)
}

func TestSendCode_RefusedOutsideAwaitingCode(t *testing.T) {
	t.Run("after success", func(t *testing.T) {
		f := newFixture(t)
		cb := &callbacks{}
		require.True(t, f.open(t, cb, entity.SessionConfig{}))
		require.True(t, f.coord.VerifyCode(context.Background(), "123456"))

		assert.False(t, f.coord.SendCode(context.Background(), testPhone, entity.ChannelSMS))
		assert.False(t, f.coord.ResendCode(context.Background()))

		s := f.coord.Snapshot()
		assert.Equal(t, entity.StatusSuccess, s.Status)
		assert.Equal(t, 1, s.RetryCount)

		f.clock.Advance(time.Second + 300*time.Millisecond)
		require.NoError(t, f.mgr.Wait())

		sends, _ := f.client.counts()
		assert.Equal(t, 1, sends)
		success, cancel := cb.counts()
		assert.Equal(t, 1, success)
		assert.Equal(t, 0, cancel)

		events := f.outcomes.list()
		require.Len(t, events, 1)
		assert.Equal(t, entity.OutcomeVerified, events[0].Outcome)
	})

	t.Run("closed session", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))
		f.clock.Advance(90 * time.Second)
		f.coord.CloseSession(context.Background())

		assert.False(t, f.coord.SendCode(context.Background(), testPhone, entity.ChannelSMS))
		assert.False(t, f.coord.ResendCode(context.Background()))
		assert.False(t, f.coord.VerifyCode(context.Background(), "123456"))

		f.clock.Advance(300 * time.Millisecond)
		assert.False(t, f.coord.SendCode(context.Background(), testPhone, entity.ChannelSMS))

		sends, verifies := f.client.counts()
		assert.Equal(t, 1, sends)
		assert.Equal(t, 0, verifies)
		require.NoError(t, f.mgr.Wait())
	})
}

func TestSuppressModal(t *testing.T) {
	f := newFixture(t)
	cb := &callbacks{}
	require.True(t, f.open(t, cb, entity.SessionConfig{}))

	f.coord.SuppressModal(context.Background())

	assert.False(t, f.coord.Snapshot().Visible)
	_, cancel := cb.counts()
	assert.Equal(t, 1, cancel)
}

func TestResetSession(t *testing.T) {
	f := newFixture(t)
	cb := &callbacks{}
	require.True(t, f.open(t, cb, entity.SessionConfig{}))

	f.coord.ResetSession()

	s := f.coord.Snapshot()
	assert.Equal(t, entity.StatusIdle, s.Status)
	assert.False(t, s.Visible)
	assert.Equal(t, 0, f.clock.Pending())

	f.coord.CloseSession(context.Background())
	success, cancel := cb.counts()
	assert.Equal(t, 0, success)
	assert.Equal(t, 0, cancel)
}

func TestSubscribe_ClosesOnCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch := f.coord.Subscribe(ctx)

	evt := <-ch
	assert.Equal(t, EventSession, evt.Type)
	assert.Equal(t, entity.StatusIdle, evt.Session.Status)

	cancel()
	for range ch {
	}

	require.True(t, f.open(t, &callbacks{}, entity.SessionConfig{}))
}
