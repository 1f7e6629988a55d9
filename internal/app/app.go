package app

import (
	"context"
	"net/http"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/clock"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/config"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goroutine"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/instrument"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/messaging"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/router"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/uid"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/validator"
	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/usecase"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID

	// resources
	messaging messaging.Publisher

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	// modules
	verification *usecase.Coordinator

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

// Verification returns the coordinator of the verification module.
func (a *App) Verification() *usecase.Coordinator {
	return a.verification
}
