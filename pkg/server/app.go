// Package server owns the application lifecycle: it starts the HTTP server
// and shuts every component down in order on SIGINT/SIGTERM.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RiskDesk/internal/usecase"
	"RiskDesk/pkg/cache"
	"RiskDesk/pkg/config"
	xhttp "RiskDesk/pkg/http"
	"RiskDesk/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	handler    xhttp.Handler
	processor  *usecase.DecisionProcessor
	cache      cache.Service
	log        *logger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	handler xhttp.Handler,
	processor *usecase.DecisionProcessor,
	cacheSvc cache.Service,
	log *logger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		handler:   handler,
		processor: processor,
		cache:     cacheSvc,
		log:       log,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", logger.Error(err))
		return err
	}
	a.log.Info("risk api started",
		logger.Int("port", a.cfg.Server.Port),
		logger.String("backend", a.cfg.Backend.Type),
		logger.String("model", a.cfg.Model.Type),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the HTTP server first so no new decisions arrive, then
// flushes the decision processor and closes the cache.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	if a.processor != nil {
		a.processor.Close()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
