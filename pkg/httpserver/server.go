package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Server wraps http.Server with graceful shutdown driven by context
// cancellation or SIGINT/SIGTERM.
type Server struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	log             *slog.Logger

	mu   sync.Mutex
	srv  *http.Server
	once sync.Once
}

// Option configures the server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: WithAddr requires a non-empty address")
	}
	return func(s *Server) { s.addr = addr }
}

// WithShutdownTimeout bounds how long graceful shutdown may take.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("httpserver: WithShutdownTimeout requires a positive duration")
	}
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns a server with production-safe timeout defaults.
func New(opts ...Option) *Server {
	s := &Server{
		addr:            ":8080",
		readTimeout:     30 * time.Second,
		writeTimeout:    30 * time.Second,
		idleTimeout:     120 * time.Second,
		shutdownTimeout: 5 * time.Second,
		log:             slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the server and blocks until the context is canceled, a
// termination signal arrives, or the listener fails. A clean shutdown
// returns nil.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	s.log.InfoContext(ctx, "http server listening", slog.String("addr", s.addr))

	var runErr error
	select {
	case <-ctx.Done():
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case sig := <-stop:
		s.log.InfoContext(ctx, "shutdown signal received", slog.String("signal", sig.String()))
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

// Shutdown stops the server gracefully. Safe for repeated calls.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}

		ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
		s.log.InfoContext(ctx, "http server stopped")
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
