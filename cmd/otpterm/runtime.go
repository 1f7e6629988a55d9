package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/clock"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/config"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goroutine"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/messaging"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/router"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/uid"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/validator"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification"
)

// runtime is the subset of the service wiring a terminal session needs.
type runtime struct {
	dep     verification.Dependency
	closers []func() error
}

func newRuntime() (*runtime, error) {
	// #nosec G304 -- path is from a command line flag.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	cfg, err := config.NewViper(configPath)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(instrument.NewLogger(f, "otpterm", cfg.GetArray("instrument.log_mask_fields"), logLevel))

	v, err := validator.NewV10Validator()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("init validator: %w", err)
	}
	snow, err := uid.NewSnowflake()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("init snowflake: %w", err)
	}

	ins := instrument.NewNoop()
	pub := messaging.NewMemory()

	rt := &runtime{
		dep: verification.Dependency{
			Router:     router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID(), Instrument: ins, Name: "otpterm"}),
			Config:     cfg,
			Instrument: ins,
			Clock:      clock.New(),
			UUID:       uid.NewUUID(),
			UID:        snow,
			Goroutine:  goroutine.NewManager(cfg.GetInt("app.server.max_goroutine")),
			Validator:  v,
			Messaging:  pub,
		},
	}
	rt.closers = []func() error{
		func() error { return rt.dep.Goroutine.Wait() },
		pub.Close,
		cfg.Close,
		f.Close,
	}

	return rt, nil
}

func (rt *runtime) close(ctx context.Context) {
	for _, fn := range rt.closers {
		if err := fn(); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "error", err)
		}
	}
}
