package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/clock"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goroutine"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/uid"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

const (
	DefaultSuccessCloseDelay = time.Second
	DefaultResetDelay        = 300 * time.Millisecond
	defaultPublishTimeout    = 5 * time.Second
)

// OutcomeEvent reports how a session ended.
type OutcomeEvent struct {
	SessionID   string
	Purpose     entity.Purpose
	Outcome     entity.Outcome
	PhoneNumber string
	MaskedPhone string
	RetryCount  int
	OccurredAt  time.Time
}

type otpClient interface {
	SendCode(ctx context.Context, phone string, channel entity.Channel) error
	VerifyCode(ctx context.Context, phone, code string) error
}

type repoMessaging interface {
	PublishOutcome(ctx context.Context, msg OutcomeEvent) error
}

// Coordinator owns the single active verification session of the process.
// Views read it through Snapshot and Subscribe and change it only through
// its methods.
type Coordinator struct {
	client        otpClient
	repoMessaging repoMessaging
	clock         clock.Clocker
	uuid          uid.StringID
	uid           uid.NumberID
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
	policy        entity.Policy

	successCloseDelay time.Duration
	resetDelay        time.Duration
	publishTimeout    time.Duration

	mu        sync.Mutex
	session   entity.Session
	onSuccess func()
	onCancel  func()
	closer    clock.Timer
	cooldown  clock.Timer
	tickToken uint64
	// cooldownSeconds is what every successful send restarts the countdown at.
	cooldownSeconds int

	// gen identifies the active session. Late results and timers started
	// under an older value are dropped.
	gen *atomic.Uint64

	streamMu    sync.RWMutex
	subscribers map[*subscriber]struct{}

	sentCounter     metric.Int64Counter
	verifiedCounter metric.Int64Counter
	failedCounter   metric.Int64Counter
}

type Dependency struct {
	Client        otpClient
	RepoMessaging repoMessaging
	Clock         clock.Clocker
	UUID          uid.StringID
	UID           uid.NumberID
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
	Policy        entity.Policy

	SuccessCloseDelay time.Duration
	ResetDelay        time.Duration
	PublishTimeout    time.Duration
}

func New(dep Dependency) *Coordinator {
	c := &Coordinator{
		client:            dep.Client,
		repoMessaging:     dep.RepoMessaging,
		clock:             dep.Clock,
		uuid:              dep.UUID,
		uid:               dep.UID,
		ins:               dep.Instrument,
		goroutine:         dep.Goroutine,
		policy:            dep.Policy.Normalize(),
		successCloseDelay: dep.SuccessCloseDelay,
		resetDelay:        dep.ResetDelay,
		publishTimeout:    dep.PublishTimeout,
		gen:               atomic.NewUint64(0),
		subscribers:       make(map[*subscriber]struct{}),
	}

	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.ins == nil {
		c.ins = instrument.NewNoop()
	}
	if c.goroutine == nil {
		c.goroutine = goroutine.NewManager(0)
	}
	if c.successCloseDelay <= 0 {
		c.successCloseDelay = DefaultSuccessCloseDelay
	}
	if c.resetDelay <= 0 {
		c.resetDelay = DefaultResetDelay
	}
	if c.publishTimeout <= 0 {
		c.publishTimeout = defaultPublishTimeout
	}

	meter := c.ins.Meter("verification.usecase")
	c.sentCounter = c.counter(meter, "verification.code.sent", "Verification codes delivered by the remote service")
	c.verifiedCounter = c.counter(meter, "verification.code.verified", "Verification codes accepted")
	c.failedCounter = c.counter(meter, "verification.code.failed", "Send or verify requests that failed")

	c.session = c.idleSession()
	c.cooldownSeconds = int(c.policy.ResendCooldown.Seconds())

	return c
}

// Policy returns the defaults sessions are opened with.
func (c *Coordinator) Policy() entity.Policy {
	return c.policy
}

// Snapshot returns a copy of the active session.
func (c *Coordinator) Snapshot() entity.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}

func (c *Coordinator) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("verification.usecase").Start(ctx, name)
}

func (c *Coordinator) counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	cnt, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter", "name", name, "error", err)
		return metricnoop.Int64Counter{}
	}
	return cnt
}

func (c *Coordinator) idleSession() entity.Session {
	cfg := c.policy.Apply(entity.SessionConfig{})
	return entity.Session{
		Status:     entity.StatusIdle,
		CodeLength: cfg.CodeLength,
		MaxRetries: cfg.MaxRetries,
		Channel:    cfg.Channel,
	}
}

// stale reports whether gen no longer names the active session. Callers hold mu.
func (c *Coordinator) stale(ctx context.Context, gen uint64, what string) bool {
	if cur := c.gen.Load(); cur != gen {
		slog.DebugContext(ctx, "dropping late result of superseded session", "result", what, "generation", gen, "current", cur)
		return true
	}
	return false
}

func (c *Coordinator) stopTimersLocked() {
	c.stopCooldownLocked()
	if c.closer != nil {
		c.closer.Stop()
		c.closer = nil
	}
}

func (c *Coordinator) toastLocked(level entity.ToastLevel, msg string) {
	var id int64
	if c.uid != nil {
		id = c.uid.Generate()
	}
	c.broadcast(Event{Type: EventToast, Toast: entity.Toast{ID: id, Level: level, Message: msg}})
}

func (c *Coordinator) changedLocked() {
	c.broadcast(Event{Type: EventSession, Session: c.session})
}
