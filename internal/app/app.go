package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/linechat-server/internal/config"
	"github.com/avolkov/linechat-server/internal/core"
	"github.com/avolkov/linechat-server/internal/transport/admin"
	"github.com/avolkov/linechat-server/internal/transport/tcp"
)

// App wires together the core hub and the transport layers.
type App struct {
	chat            *tcp.Server
	admin           *stdhttp.Server
	hub             *core.Hub
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	hub := core.NewHub(cfg.VIPSecret, logger)

	return &App{
		chat:            tcp.NewServer(cfg.ChatAddr, hub, logger),
		admin:           admin.NewServer(hub, cfg, logger),
		hub:             hub,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
}

// Run starts both listeners and blocks until context cancellation or a
// fatal listener error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 2)

	go func() {
		serverErr <- a.chat.ListenAndServe(ctx)
	}()

	go func() {
		if err := a.admin.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.admin.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// The chat listener stops via ctx; wait for one of the two
		// goroutines to report.
		return <-serverErr
	}
}
