package surface

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/clock"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
)

// Step is where the inline flow currently is.
type Step string

const (
	StepPhone    Step = "phone"
	StepOTP      Step = "otp"
	StepVerified Step = "verified"
)

type inlineClient interface {
	SendCode(ctx context.Context, phone string, channel entity.Channel) error
	VerifyCode(ctx context.Context, phone, code string) error
}

type modalSuppressor interface {
	Subscribe(ctx context.Context) <-chan usecase.Event
	SuppressModal(ctx context.Context)
}

type InlineDependency struct {
	Client inlineClient
	Modal  modalSuppressor
	Clock  clock.Clocker
	Policy entity.Policy
	// OnVerificationSuccess receives the verified phone number. The flow
	// stops at StepVerified; what happens next is up to the caller.
	OnVerificationSuccess func(phone string)
}

// Inline is a self-contained phone verification stepper for embedding in
// larger forms. It keeps its own phone, code and resend bookkeeping, calls
// the OTP service directly and keeps the global modal closed while mounted.
type Inline struct {
	client    inlineClient
	modal     modalSuppressor
	clock     clock.Clocker
	policy    entity.Policy
	onSuccess func(phone string)

	mu            sync.Mutex
	step          Step
	phone         string
	channel       entity.Channel
	digits        *DigitField
	busy          bool
	errorMessage  string
	notice        string
	sends         int
	cooldownUntil time.Time
	gen           uint64

	unwatch   context.CancelFunc
	watchDone chan struct{}
}

// InlineView is everything needed to draw the stepper.
type InlineView struct {
	Step         Step
	Phone        string
	MaskedPhone  string
	Channel      entity.Channel
	Cells        []string
	Focus        int
	Busy         bool
	ErrorMessage string
	Notice       string
	Countdown    string
	CanResend    bool
	MaxReached   bool
}

func NewInline(dep InlineDependency) *Inline {
	policy := dep.Policy.Normalize()
	c := dep.Clock
	if c == nil {
		c = clock.New()
	}

	return &Inline{
		client:    dep.Client,
		modal:     dep.Modal,
		clock:     c,
		policy:    policy,
		onSuccess: dep.OnVerificationSuccess,
		step:      StepPhone,
		channel:   policy.Channel,
		digits:    NewDigitField(policy.CodeLength),
	}
}

// Mount starts keeping the global modal closed: it is suppressed now if
// open and every time it opens until Unmount.
func (in *Inline) Mount(ctx context.Context) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.unwatch != nil || in.modal == nil {
		return
	}

	wctx, cancel := context.WithCancel(ctx)
	events := in.modal.Subscribe(wctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for evt := range events {
			if evt.Type == usecase.EventSession && evt.Session.Visible {
				slog.DebugContext(wctx, "inline verification suppressing modal", "session_id", evt.Session.ID)
				in.modal.SuppressModal(wctx)
			}
		}
	}()

	in.unwatch = cancel
	in.watchDone = done
}

// Unmount stops the modal watcher and discards any request still in flight.
func (in *Inline) Unmount() {
	in.mu.Lock()
	cancel, done := in.unwatch, in.watchDone
	in.unwatch, in.watchDone = nil, nil
	in.gen++
	in.busy = false
	in.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (in *Inline) SetPhone(phone string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.step == StepPhone && !in.busy {
		in.phone = phone
		in.errorMessage = ""
	}
}

func (in *Inline) SetChannel(c entity.Channel) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.step == StepPhone && !in.busy {
		in.channel = c
	}
}

// SendCode sends the first code to the entered phone and moves to StepOTP.
func (in *Inline) SendCode(ctx context.Context) bool {
	in.mu.Lock()
	if in.step != StepPhone || in.busy {
		in.mu.Unlock()
		return false
	}

	in.phone = strings.TrimSpace(in.phone)
	err := in.policy.ValidatePhone(in.phone)
	if err == nil {
		err = in.policy.ValidateChannel(in.channel)
	}
	if err != nil {
		in.errorMessage = goerror.Message(err, entity.MsgSendFailed)
		in.mu.Unlock()
		return false
	}

	return in.sendLocked(ctx)
}

// Resend sends a new code to the stored phone when the retry cap and the
// cooldown allow it.
func (in *Inline) Resend(ctx context.Context) bool {
	in.mu.Lock()
	if in.step != StepOTP || in.busy {
		in.mu.Unlock()
		return false
	}

	if err := in.policy.ResendGate(in.remainingLocked(), in.sends, in.policy.MaxRetries); err != nil {
		in.errorMessage = goerror.Message(err, entity.MsgSendFailed)
		in.mu.Unlock()
		return false
	}

	return in.sendLocked(ctx)
}

// sendLocked is entered with mu held and returns with it released.
func (in *Inline) sendLocked(ctx context.Context) bool {
	in.busy = true
	in.errorMessage = ""
	in.notice = ""
	phone, channel, gen := in.phone, in.channel, in.gen
	in.mu.Unlock()

	err := in.client.SendCode(ctx, phone, channel)

	in.mu.Lock()
	defer in.mu.Unlock()

	if gen != in.gen {
		slog.DebugContext(ctx, "dropping late inline send result")
		return false
	}
	in.busy = false

	if err != nil {
		slog.WarnContext(ctx, "inline verification send failed", "masked_phone", entity.MaskPhone(phone), "error", err)
		in.errorMessage = entity.SendFailureMessage(err)
		return false
	}

	in.step = StepOTP
	in.sends++
	in.cooldownUntil = in.clock.Now().Add(in.policy.ResendCooldown)
	in.digits.Reset(in.policy.CodeLength)
	in.notice = fmt.Sprintf(entity.MsgCodeSent, entity.MaskPhone(phone))

	return true
}

// Verify submits the entered code.
func (in *Inline) Verify(ctx context.Context) bool {
	in.mu.Lock()
	if in.step != StepOTP || in.busy {
		in.mu.Unlock()
		return false
	}

	code := in.digits.Value()
	if err := in.policy.ValidateCode(code, in.policy.CodeLength); err != nil {
		in.errorMessage = goerror.Message(err, entity.MsgVerifyFailed)
		in.mu.Unlock()
		return false
	}

	in.busy = true
	in.errorMessage = ""
	in.notice = ""
	phone, gen := in.phone, in.gen
	in.mu.Unlock()

	err := in.client.VerifyCode(ctx, phone, code)

	in.mu.Lock()
	if gen != in.gen {
		in.mu.Unlock()
		slog.DebugContext(ctx, "dropping late inline verify result")
		return false
	}
	in.busy = false

	if err != nil {
		slog.WarnContext(ctx, "inline verification failed", "invalid_code", entity.IsInvalidCode(err), "error", err)
		in.errorMessage = entity.VerifyFailureMessage(err)
		in.digits.Reset(in.policy.CodeLength)
		in.mu.Unlock()
		return false
	}

	in.step = StepVerified
	in.notice = entity.MsgVerified
	cb := in.onSuccess
	in.mu.Unlock()

	if cb != nil {
		cb(phone)
	}
	return true
}

// ChangePhone returns to phone entry, clearing the code and the resend
// bookkeeping of the old number.
func (in *Inline) ChangePhone() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.step != StepOTP {
		return
	}

	in.gen++
	in.step = StepPhone
	in.busy = false
	in.sends = 0
	in.cooldownUntil = time.Time{}
	in.errorMessage = ""
	in.notice = ""
	in.digits.Reset(in.policy.CodeLength)
}

// Type enters r at the focused digit and reports whether the code is complete.
func (in *Inline) Type(r rune) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.step != StepOTP || in.busy {
		return false
	}
	return in.digits.Type(r)
}

func (in *Inline) Paste(s string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.step != StepOTP || in.busy {
		return false
	}
	return in.digits.Paste(s)
}

func (in *Inline) Backspace() {
	in.edit((*DigitField).Backspace)
}

func (in *Inline) Left() {
	in.edit((*DigitField).Left)
}

func (in *Inline) Right() {
	in.edit((*DigitField).Right)
}

func (in *Inline) edit(fn func(*DigitField)) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.step == StepOTP && !in.busy {
		fn(in.digits)
	}
}

func (in *Inline) View() InlineView {
	in.mu.Lock()
	defer in.mu.Unlock()

	remaining := in.remainingLocked()
	exhausted := in.sends >= in.policy.MaxRetries

	return InlineView{
		Step:         in.step,
		Phone:        in.phone,
		MaskedPhone:  entity.MaskPhone(in.phone),
		Channel:      in.channel,
		Cells:        in.digits.Cells(),
		Focus:        in.digits.Focus(),
		Busy:         in.busy,
		ErrorMessage: in.errorMessage,
		Notice:       in.notice,
		Countdown:    Countdown(remaining),
		CanResend:    in.step == StepOTP && !in.busy && remaining == 0 && !exhausted,
		MaxReached:   in.step == StepOTP && exhausted,
	}
}

// remainingLocked is the cooldown left, rounded up to whole seconds.
func (in *Inline) remainingLocked() int {
	if in.cooldownUntil.IsZero() {
		return 0
	}
	left := in.cooldownUntil.Sub(in.clock.Now())
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
