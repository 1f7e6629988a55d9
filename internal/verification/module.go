package verification

import (
	"log/slog"
	"strings"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/clock"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/config"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goroutine"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/messaging"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/router"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/uid"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/validator"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/inbound"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/outbound/mq"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/outbound/otpapi"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
)

type Dependency struct {
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// Messaging is only needed when verification.events.enabled is set.
	Messaging messaging.Publisher
}

// New builds the coordinator and registers its HTTP endpoints. The
// coordinator is returned so other entrypoints can drive the same session.
func New(dep Dependency) (*usecase.Coordinator, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	client := NewClient(dep.Config, dep.Instrument)
	coord := NewCoordinator(dep, client)

	inbound.RegisterHTTPEndpoint(dep.Router, coord, client, dep.Validator)

	return coord, nil
}

// NewClient builds the OTP service client from verification.api.*.
func NewClient(cfg config.Config, ins instrument.Instrumentation) *otpapi.Client {
	return otpapi.New(otpapi.Config{
		SendURL:   cfg.GetString("verification.api.send_url"),
		VerifyURL: cfg.GetString("verification.api.verify_url"),
		Timeout:   cfg.GetSecond("verification.api.timeout_seconds"),
	}, nil, ins)
}

// PolicyFromConfig reads verification.defaults.*. Missing keys keep the
// built-in defaults.
func PolicyFromConfig(cfg config.Config) entity.Policy {
	p := entity.Policy{
		CodeLength:     cfg.GetInt("verification.defaults.code_length"),
		MaxRetries:     cfg.GetInt("verification.defaults.max_retries"),
		ResendCooldown: cfg.GetSecond("verification.defaults.resend_cooldown_seconds"),
		MinPhoneLength: cfg.GetInt("verification.defaults.min_phone_length"),
	}

	channel, err := entity.ParseChannel(cfg.GetString("verification.defaults.channel"), "")
	if err != nil {
		slog.Warn("ignoring unsupported default verification channel", "channel", strings.TrimSpace(cfg.GetString("verification.defaults.channel")))
	}
	p.Channel = channel

	return p.Normalize()
}

// NewCoordinator wires a coordinator to client. Outcome events are published
// only when verification.events.enabled is set and a publisher is given.
func NewCoordinator(dep Dependency, client *otpapi.Client) *usecase.Coordinator {
	ucDep := usecase.Dependency{
		Client:            client,
		Clock:             dep.Clock,
		UUID:              dep.UUID,
		UID:               dep.UID,
		Instrument:        dep.Instrument,
		Goroutine:         dep.Goroutine,
		Policy:            PolicyFromConfig(dep.Config),
		SuccessCloseDelay: dep.Config.GetMillisecond("verification.timing.success_close_ms"),
		ResetDelay:        dep.Config.GetMillisecond("verification.timing.reset_delay_ms"),
		PublishTimeout:    dep.Config.GetSecond("verification.events.publish_timeout_seconds"),
	}

	if dep.Config.GetBool("verification.events.enabled") && dep.Messaging != nil {
		ucDep.RepoMessaging = mq.NewMessaging(dep.Messaging, dep.Instrument)
	}

	return usecase.New(ucDep)
}
