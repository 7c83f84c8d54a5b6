// cmd/api/server.go
// This file contains the serve() method which starts the HTTP server and
// handles graceful shutdown when an OS signal is received.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// serve starts the HTTP server and blocks until SIGINT or SIGTERM. In-flight
// requests and queued notification emails are given 20 seconds to finish.
func (app *applicationDependencies) serve() error {
	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	shutdownErr := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		s := <-quit
		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		err := apiServer.Shutdown(ctx)
		if err != nil {
			shutdownErr <- err
			return
		}

		app.logger.Info("completing background tasks", "address", apiServer.Addr)

		done := make(chan struct{})
		go func() {
			app.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			shutdownErr <- nil
		case <-ctx.Done():
			shutdownErr <- fmt.Errorf("background tasks: %w", ctx.Err())
		}
	}()

	app.logger.Info("starting server", "address", apiServer.Addr, "environment", app.config.environment)

	err := apiServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownErr
	if err != nil {
		return err
	}

	app.logger.Info("server stopped", "address", apiServer.Addr)
	return nil
}
