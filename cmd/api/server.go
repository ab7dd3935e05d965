package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jidetireni/firstcare-registration/factory"
	"github.com/Jidetireni/firstcare-registration/internal/api/handlers"
	"github.com/Jidetireni/firstcare-registration/internal/config"
)

type Server struct {
	Config   *config.Config
	Factory  *factory.Factory
	Handlers *handlers.Handlers
}

func NewServer() (*Server, func(), error) {
	cfg := config.New()

	factory, cleanup, err := factory.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	handlers := handlers.NewHandlers(factory, cfg, factory.Validator)

	server := &Server{
		Config:   cfg,
		Factory:  factory,
		Handlers: handlers,
	}

	server.router()
	return server, cleanup, nil
}

// Start serves until SIGINT or SIGTERM, then lets in-flight requests (a
// registration submission among them) finish.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      s.Factory.Router,
		WriteTimeout: time.Second * 50,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Factory.Logger.Info().
			Str("addr", fmt.Sprintf("http://localhost:%s/api/v1", s.Config.Server.Port)).
			Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case sig := <-stop:
		s.Factory.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.Backend.Timeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
