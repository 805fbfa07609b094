package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/reportmerge/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for reportmerge.
type Server struct {
	router   chi.Router
	sessions *SessionStore
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *SessionStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions: sessions,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/sessions", s.handleCreateSession)
		r.Get("/api/sessions/{sessionID}/state", s.handleSessionState)
		r.Put("/api/sessions/{sessionID}/state", s.handleRestoreSession)

		r.Post("/api/sessions/{sessionID}/fragments", s.handleUploadFragment)
		r.Get("/api/sessions/{sessionID}/fragments", s.handleListFragments)
		r.Patch("/api/sessions/{sessionID}/fragments/{fragID}", s.handleUpdateFragment)
		r.Delete("/api/sessions/{sessionID}/fragments/{fragID}", s.handleDeleteFragment)
		r.Post("/api/sessions/{sessionID}/reorder", s.handleReorder)

		r.Post("/api/sessions/{sessionID}/merge", s.handleMerge)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
