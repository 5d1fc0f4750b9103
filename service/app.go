package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"postboard/app/client"
	"postboard/app/config"
	"postboard/app/routes"
	"postboard/app/services"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Server is the postboard HTTP service.
type Server struct {
	cfg      config.Config
	sessions *services.SessionService
	handler  http.Handler
	db       *badger.DB
}

// NewServer wires the client, toggle stores, sessions and routes for cfg.
func NewServer(cfg config.Config) (*Server, error) {
	api, err := client.New(cfg.APIURL, time.Duration(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	stores, db, err := NewStoreFactory(cfg)
	if err != nil {
		return nil, err
	}

	sessions := services.NewSessionService(api, stores, cfg.Options(), time.Duration(cfg.SessionIdle), cfg.MaxSessions)
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		handler:  routes.SetupRoutes(sessions),
		db:       db,
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on l until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if idle := time.Duration(s.cfg.SessionIdle); idle > 0 {
		go s.sessions.Run(ctx, idle/2)
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("[server] listening on %s", l.Addr())
		errc <- srv.Serve(l)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("[server] shutting down")
	shutdownCtx, release := context.WithTimeout(context.Background(), shutdownTimeout)
	defer release()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("[server] stopped")
	return nil
}

// Close releases the toggle-state database.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunAppServer serves cfg.Addr until SIGINT or SIGTERM.
func RunAppServer(cfg config.Config) error {
	s, err := NewServer(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, l)
}
