package app

import (
	"log/slog"
	"os"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification"
)

func (a *App) initModules() {
	coord, err := verification.New(verification.Dependency{
		Router:     a.router,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		UUID:       a.uuid,
		UID:        a.uid,
		Goroutine:  a.goroutine,
		Validator:  a.validator,
		Messaging:  a.messaging,
	})
	if err != nil {
		slog.Error("failed to init module verification", "error", err)
		os.Exit(1)
	}

	a.verification = coord
}
