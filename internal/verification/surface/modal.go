package surface

import (
	"context"
	"fmt"
	"sync"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
)

type modalCoordinator interface {
	Snapshot() entity.Session
	VerifyCode(ctx context.Context, code string) bool
	ResendCode(ctx context.Context) bool
	CloseSession(ctx context.Context)
}

// Modal is the view model of the global verification dialog. It renders
// coordinator state and forwards user actions; the only state it owns is
// the digit row.
type Modal struct {
	coord modalCoordinator

	mu     sync.Mutex
	digits *DigitField
	last   entity.Session
	synced bool
}

// ModalView is everything needed to draw the dialog.
type ModalView struct {
	Visible      bool
	Status       entity.Status
	MaskedPhone  string
	Channel      entity.Channel
	Cells        []string
	Focus        int
	Disabled     bool
	Closable     bool
	ErrorMessage string
	Countdown    string
	CanResend    bool
	Attempts     string
	MaxReached   bool
	Verified     bool
}

func NewModal(coord modalCoordinator) *Modal {
	m := &Modal{coord: coord, digits: NewDigitField(0)}
	m.Sync(coord.Snapshot())
	return m
}

// Sync applies a coordinator snapshot. The digits are cleared when the
// dialog opens, when the code length changes and when the session enters
// Error.
func (m *Modal) Sync(s entity.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.syncLocked(s)
}

func (m *Modal) syncLocked(s entity.Session) {
	opened := s.Visible && !m.last.Visible
	resized := s.CodeLength != m.last.CodeLength
	failed := s.Status == entity.StatusError && m.last.Status != entity.StatusError

	if !m.synced || opened || resized || failed {
		m.digits.Reset(s.CodeLength)
	}

	m.last = s
	m.synced = true
}

// Type enters r at the focused digit and reports whether the code is complete.
func (m *Modal) Type(r rune) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last.Status.Busy() {
		return false
	}
	return m.digits.Type(r)
}

func (m *Modal) Backspace() {
	m.edit((*DigitField).Backspace)
}

func (m *Modal) Left() {
	m.edit((*DigitField).Left)
}

func (m *Modal) Right() {
	m.edit((*DigitField).Right)
}

// Paste spreads pasted digits and reports whether the code is complete.
func (m *Modal) Paste(s string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last.Status.Busy() {
		return false
	}
	return m.digits.Paste(s)
}

func (m *Modal) edit(fn func(*DigitField)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.last.Status.Busy() {
		fn(m.digits)
	}
}

// Submit verifies the entered digits. A rejected complete code clears the
// row even when the session was already in Error.
func (m *Modal) Submit(ctx context.Context) bool {
	m.mu.Lock()
	if m.last.Status.Busy() {
		m.mu.Unlock()
		return false
	}
	code := m.digits.Value()
	if m.digits.Complete() {
		// so that a failure after a failure still counts as entering Error
		m.last.Status = entity.StatusVerifying
	}
	m.mu.Unlock()

	ok := m.coord.VerifyCode(ctx, code)
	m.Sync(m.coord.Snapshot())
	return ok
}

// Resend asks for a new code. Refusals are reported by the coordinator.
func (m *Modal) Resend(ctx context.Context) bool {
	m.mu.Lock()
	busy := m.last.Status.Busy()
	m.mu.Unlock()
	if busy {
		return false
	}

	ok := m.coord.ResendCode(ctx)
	m.Sync(m.coord.Snapshot())
	return ok
}

// Close dismisses the dialog unless a request is in flight.
func (m *Modal) Close(ctx context.Context) bool {
	m.mu.Lock()
	busy := m.last.Status.Busy()
	m.mu.Unlock()
	if busy {
		return false
	}

	m.coord.CloseSession(ctx)
	m.Sync(m.coord.Snapshot())
	return true
}

func (m *Modal) View() ModalView {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.last
	busy := s.Status.Busy()
	exhausted := s.RetriesExhausted()

	v := ModalView{
		Visible:      s.Visible,
		Status:       s.Status,
		MaskedPhone:  s.MaskedPhone,
		Channel:      s.Channel,
		Cells:        m.digits.Cells(),
		Focus:        m.digits.Focus(),
		Disabled:     busy,
		Closable:     !busy,
		ErrorMessage: s.ErrorMessage,
		Countdown:    Countdown(s.ResendCooldownSeconds),
		CanResend:    !busy && s.CanResend(),
		MaxReached:   exhausted,
		Verified:     s.Status == entity.StatusSuccess,
	}
	if s.RetryCount > 1 && !exhausted {
		v.Attempts = fmt.Sprintf("Attempts: %d / %d", s.RetryCount, s.MaxRetries)
	}

	return v
}

// Countdown renders seconds as mm:ss, or "" when nothing is left.
func Countdown(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
