// Package server exposes the book chat over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"bookchat/internal/chat"
)

// SessionCookie carries the session id between turns.
const SessionCookie = "bookchat_session"

// Config configures the HTTP transport.
type Config struct {
	Addr           string
	AllowedOrigins []string
	SessionTTL     time.Duration
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server routes chat turns to per-session conversations.
type Server struct {
	config   Config
	sessions *SessionStore
	metrics  *Metrics
	logger   zerolog.Logger
}

// New creates a server driving conversations on machine.
func New(cfg Config, machine *chat.Machine, logger zerolog.Logger) *Server {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return &Server{
		config:   cfg,
		sessions: NewSessionStore(machine, cfg.SessionTTL),
		metrics:  NewMetrics(),
		logger:   logger.With().Str("component", "server").Logger(),
	}
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", s.handleIndex)
	r.Post("/chat", s.handleChat)
	r.Post("/reset", s.handleReset)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// handleIndex starts the user over and returns the greeting.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, chatResponse{Response: s.restart(w, r)})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	conv := s.conversation(w, r)

	start := time.Now()
	reply := conv.Handle(r.Context(), req.Message)
	s.metrics.observe(reply, time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, chatResponse{Response: toHTML(reply.Text)})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, chatResponse{Response: s.restart(w, r)})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

// conversation resolves the cookie session, starting a new one when the
// cookie is absent or its session expired.
func (s *Server) conversation(w http.ResponseWriter, r *http.Request) *chat.Conversation {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if conv, ok := s.sessions.Get(c.Value); ok {
			return conv
		}
	}
	return s.startSession(w)
}

// restart drops the caller's session and issues a fresh one, returning the greeting.
func (s *Server) restart(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.sessions.Delete(c.Value)
		s.logger.Debug().Str("session", c.Value).Msg("session dropped")
	}
	return s.startSession(w).Reset()
}

func (s *Server) startSession(w http.ResponseWriter) *chat.Conversation {
	id, conv := s.sessions.Create()
	s.metrics.Sessions.Set(float64(s.sessions.Len()))
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.SessionTTL.Seconds()),
	})
	s.logger.Debug().Str("session", id).Msg("session started")
	return conv
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// toHTML renders reply line breaks for the browser client.
func toHTML(text string) string {
	return strings.ReplaceAll(text, "\n", "<br>")
}
