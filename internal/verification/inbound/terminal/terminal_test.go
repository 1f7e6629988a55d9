package terminal

import (
	"context"
	"sync"
	"testing"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/clock"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/surface"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCoordinator struct {
	mu      sync.Mutex
	session entity.Session
	codes   []string
	resends int
	closes  int
	events  chan usecase.Event
}

func newFakeCoordinator() *fakeCoordinator {
	return &fakeCoordinator{
		session: entity.Session{Status: entity.StatusIdle, CodeLength: 6, MaxRetries: 3, Channel: entity.ChannelSMS},
		events:  make(chan usecase.Event, 8),
	}
}

func (f *fakeCoordinator) Subscribe(ctx context.Context) <-chan usecase.Event {
	return f.events
}

func (f *fakeCoordinator) OpenSession(ctx context.Context, in usecase.OpenSessionInput) bool {
	return true
}

func (f *fakeCoordinator) Snapshot() entity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeCoordinator) VerifyCode(ctx context.Context, code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, code)
	return true
}

func (f *fakeCoordinator) ResendCode(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resends++
	return true
}

func (f *fakeCoordinator) CloseSession(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.session.Visible = false
}

func sentSession() entity.Session {
	return entity.Session{
		ID:                    "s-1",
		Visible:               true,
		Status:                entity.StatusSent,
		MaskedPhone:           "*********0000",
		ResendCooldownSeconds: 90,
		RetryCount:            1,
		MaxRetries:            3,
		CodeLength:            6,
		Channel:               entity.ChannelWhatsApp,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func updateModal(t *testing.T, m ModalModel, msg tea.Msg) (ModalModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	mm, ok := next.(ModalModel)
	require.True(t, ok)
	return mm, cmd
}

func TestModalModel_RendersSession(t *testing.T) {
	coord := newFakeCoordinator()
	m := NewModalModel(context.Background(), coord, usecase.OpenSessionInput{PhoneNumber: "+966500000000"})

	assert.Contains(t, m.View(), "Opening verification")

	m, cmd := updateModal(t, m, eventMsg(usecase.Event{Type: usecase.EventSession, Session: sentSession()}))
	require.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "*********0000")
	assert.Contains(t, view, "WhatsApp")
	assert.Contains(t, view, "Resend code in 01:30")
	assert.Contains(t, view, "esc close")

	m, _ = updateModal(t, m, eventMsg(usecase.Event{
		Type:  usecase.EventToast,
		Toast: entity.Toast{ID: 1, Level: entity.ToastSuccess, Message: "Verification code sent to *********0000"},
	}))
	assert.Contains(t, m.View(), "Verification code sent to")
}

func TestModalModel_TypingCompleteCodeSubmits(t *testing.T) {
	coord := newFakeCoordinator()
	m := NewModalModel(context.Background(), coord, usecase.OpenSessionInput{})
	m, _ = updateModal(t, m, eventMsg(usecase.Event{Type: usecase.EventSession, Session: sentSession()}))

	var cmd tea.Cmd
	for _, r := range "12345" {
		m, cmd = updateModal(t, m, runes(string(r)))
		assert.Nil(t, cmd)
	}
	m, cmd = updateModal(t, m, runes("6"))
	require.NotNil(t, cmd)

	assert.Equal(t, actionMsg{}, cmd())
	assert.Equal(t, []string{"123456"}, coord.codes)

	_, cmd = updateModal(t, m, runes("r"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, 1, coord.resends)
}

func TestModalModel_PasteSubmits(t *testing.T) {
	coord := newFakeCoordinator()
	m := NewModalModel(context.Background(), coord, usecase.OpenSessionInput{})
	m, _ = updateModal(t, m, eventMsg(usecase.Event{Type: usecase.EventSession, Session: sentSession()}))

	_, cmd := updateModal(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("98-76-54"), Paste: true})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"987654"}, coord.codes)
}

func TestModalModel_QuitsWhenDismissed(t *testing.T) {
	coord := newFakeCoordinator()
	m := NewModalModel(context.Background(), coord, usecase.OpenSessionInput{})
	m, _ = updateModal(t, m, eventMsg(usecase.Event{Type: usecase.EventSession, Session: sentSession()}))

	m, _ = updateModal(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, coord.closes)

	hidden := sentSession()
	hidden.Visible = false
	m, cmd := updateModal(t, m, eventMsg(usecase.Event{Type: usecase.EventSession, Session: hidden}))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, entity.StatusSent, m.Result())
}

func TestModalModel_BusyHidesClose(t *testing.T) {
	coord := newFakeCoordinator()
	m := NewModalModel(context.Background(), coord, usecase.OpenSessionInput{})

	verifying := sentSession()
	verifying.Status = entity.StatusVerifying
	m, _ = updateModal(t, m, eventMsg(usecase.Event{Type: usecase.EventSession, Session: verifying}))

	assert.Contains(t, m.View(), "Verifying")
	assert.NotContains(t, m.View(), "esc close")

	_, _ = updateModal(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Zero(t, coord.closes)
}

type fakeInlineClient struct {
	mu      sync.Mutex
	phones  []string
	channel entity.Channel
	codes   []string
}

func (f *fakeInlineClient) SendCode(ctx context.Context, phone string, channel entity.Channel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phones = append(f.phones, phone)
	f.channel = channel
	return nil
}

func (f *fakeInlineClient) VerifyCode(ctx context.Context, phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, code)
	return nil
}

func updateInline(t *testing.T, m InlineModel, msg tea.Msg) (InlineModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	im, ok := next.(InlineModel)
	require.True(t, ok)
	return im, cmd
}

func TestInlineModel_Flow(t *testing.T) {
	client := &fakeInlineClient{}
	var verified string
	inline := surface.NewInline(surface.InlineDependency{
		Client: client,
		Clock:  clock.NewFake(clock.New().Now()),
		Policy: entity.DefaultPolicy(),
		OnVerificationSuccess: func(phone string) {
			verified = phone
		},
	})
	m := NewInlineModel(context.Background(), inline)

	m, _ = updateInline(t, m, runes("+966500000000"))
	m, _ = updateInline(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "Send code via WhatsApp")

	m, cmd := updateInline(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = updateInline(t, m, cmd())

	assert.Equal(t, []string{"+966500000000"}, client.phones)
	assert.Equal(t, entity.ChannelWhatsApp, client.channel)
	assert.Contains(t, m.View(), "Verification code sent to *********0000")
	assert.Contains(t, m.View(), "Resend code in 01:30")

	m, cmd = updateInline(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("123456"), Paste: true})
	require.NotNil(t, cmd)
	m, _ = updateInline(t, m, cmd())

	assert.Equal(t, []string{"123456"}, client.codes)
	assert.Equal(t, "+966500000000", verified)
	assert.Contains(t, m.View(), "verified")
}

func TestInlineModel_ChangePhone(t *testing.T) {
	client := &fakeInlineClient{}
	inline := surface.NewInline(surface.InlineDependency{
		Client: client,
		Policy: entity.DefaultPolicy(),
	})
	m := NewInlineModel(context.Background(), inline)

	m, _ = updateInline(t, m, runes("+966500000000"))
	m, cmd := updateInline(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = updateInline(t, m, cmd())
	require.Equal(t, surface.StepOTP, inline.View().Step)

	m, _ = updateInline(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Equal(t, surface.StepPhone, inline.View().Step)
	assert.Contains(t, m.View(), "Phone number")
}
