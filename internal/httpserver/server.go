// internal/httpserver/server.go
//
// HTTP server wiring for the guessing game.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, access log, panic recovery,
//     timeouts, body limits).
//   - GET / and POST /: load the visitor session, run the game, save the
//     session, render the page.
//   - GET /health for liveness checks.
//
// Notes:
//   - Invalid guesses are game feedback, never HTTP errors.
//   - Session store failures are the only 500 path.

package httpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guess/assets"
	"github.com/robalobadob/guess/internal/config"
	"github.com/robalobadob/guess/internal/game"
	"github.com/robalobadob/guess/internal/session"
)

const shutdownTimeout = 5 * time.Second

// Server bundles router, game engine, and session store.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	engine   *game.Engine
	sessions session.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, engine *game.Engine, sessions session.Store) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, engine: engine, sessions: sessions}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)        // add X-Request-ID
	s.r.Use(chimw.RealIP)           // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)              // zerolog access line
	s.r.Use(chimw.Recoverer)        // recover from panics
	s.r.Use(chimw.Timeout(timeout)) // bound handler time
	s.r.Use(limitBody)

	// --- game ---
	s.r.Get("/", s.handlePlay)
	s.r.Post("/", s.handlePlay)

	// --- diagnostics ---
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	return s
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler { return s.r }

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handlePlay runs one game interaction.
// GET only ensures a round exists; POST also evaluates the "guess" form field.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r)
	if err != nil {
		log.Error().Err(err).Msg("load session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var guess *string
	if r.Method == http.MethodPost {
		g := r.PostFormValue("guess")
		guess = &g
	}
	fb := s.engine.Play(&sess, guess)

	if err := s.sessions.Save(w, r, sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := assets.Render(&buf, fb.Message); err != nil {
		log.Error().Err(err).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.Debug().
		Str("reqId", chimw.GetReqID(r.Context())).
		Str("outcome", string(fb.Outcome)).
		Bool("inProgress", sess.InProgress()).
		Msg("play")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
