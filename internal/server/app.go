// Package server initializes and runs the formvault server: it opens the
// snapshot backend, loads the store, and runs the HTTP and gRPC APIs until a
// signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/auth"
	"github.com/dmitrijs2005/formvault/internal/server/config"
	"github.com/dmitrijs2005/formvault/internal/server/httpapi"
	"github.com/dmitrijs2005/formvault/internal/server/services"
	"github.com/dmitrijs2005/formvault/internal/server/snapshot"
	"github.com/dmitrijs2005/formvault/internal/server/store"

	gs "github.com/dmitrijs2005/formvault/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	snapshot    snapshot.SnapshotStore
	store       *store.Store
	userService *services.UserService
	formService *services.FormService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	snap, err := snapshot.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("snapshot init error: %w", err)
	}

	st := store.New(ctx, snap, logger)
	notifier := services.NewNotifier(logger, os.Stdout)

	return &App{
		config:      c,
		logger:      logger,
		snapshot:    snap,
		store:       st,
		userService: services.NewUserService(st, logger, c),
		formService: services.NewFormService(st, notifier, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	opts := []httpapi.Option{httpapi.WithCORSOrigins(app.config.CORSOrigins)}
	if app.config.ExternalTokenSecret != "" {
		opts = append(opts, httpapi.WithIdentityVerifier(auth.NewHMACIdentityVerifier(app.config.ExternalTokenSecret)))
	}

	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.store, app.userService, app.formService, opts...)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.store, app.userService, app.formService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := snapshot.Close(app.snapshot); err != nil {
		app.logger.Error(ctx, "closing snapshot store failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
