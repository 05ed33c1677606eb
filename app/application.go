package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"osbootd/config"
	"osbootd/routes"
	"osbootd/tftp"
)

// Application owns the HTTP server and the optional TFTP server.
type Application struct {
	container  *Container
	httpServer *http.Server
	tftpServer *tftp.Server
}

// NewApplication creates an application from a loaded configuration.
func NewApplication(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	container, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}
	return &Application{container: container}, nil
}

// Start brings up the listeners. It returns once both servers are
// accepting connections, or with the first startup error.
func (a *Application) Start() error {
	cfg := a.container.Config
	logger := a.container.Logger

	if cfg.TFTP.Enabled {
		a.tftpServer = tftp.NewServer(cfg.TFTP.Addr, a.container.Artifacts, logger)
		if err := a.tftpServer.Start(); err != nil {
			return fmt.Errorf("failed to start TFTP server: %w", err)
		}
	}

	router := routes.Setup(a.container.HandlerContainer())

	a.httpServer = &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("root", cfg.Root.Dir),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts down the listeners, draining in-flight HTTP requests.
func (a *Application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.container.Logger.Warn("Error shutting down HTTP server", zap.Error(err))
		}
	}

	if a.tftpServer != nil {
		a.tftpServer.Stop()
	}

	return nil
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *Application) Run() error {
	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.container.Logger.Info("Shutting down")
	return a.Stop()
}
