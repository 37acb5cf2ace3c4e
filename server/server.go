package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/poiesic/auditorium/core"
)

const (
	// DefaultMaxUploadBytes bounds an audio upload.
	DefaultMaxUploadBytes = 25 << 20

	shutdownTimeout = 10 * time.Second
)

var (
	// ErrServiceRequired is returned when New receives a nil service.
	ErrServiceRequired = errors.New("service is required")
)

// Service is the application surface the HTTP handlers drive.
type Service interface {
	CreateRoom(ctx context.Context, name, description string) (*core.Room, error)
	ListRooms(ctx context.Context) ([]*core.RoomSummary, error)
	ListQuestions(ctx context.Context, roomID string) ([]*core.Question, error)
	Ask(ctx context.Context, roomID string, question string) (*core.Question, error)
	Ingest(ctx context.Context, roomID string, audio []byte, mimeType string) (core.ID, error)
}

// Server routes HTTP requests to a Service.
type Server struct {
	service        Service
	router         chi.Router
	logger         *slog.Logger
	corsOrigins    []string
	maxUploadBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// WithMaxUploadBytes bounds the size of an audio upload.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// New creates a Server for service.
func New(service Service, opts ...Option) (*Server, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}
	s := &Server{
		service:        service,
		logger:         slog.Default(),
		corsOrigins:    []string{"http://localhost:5173"},
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.handleListRooms)
		r.Post("/", s.handleCreateRoom)
		r.Route("/{roomId}", func(r chi.Router) {
			r.Get("/questions", s.handleListQuestions)
			r.Post("/questions", s.handleAsk)
			r.Post("/audio", s.handleUploadAudio)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server running", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
