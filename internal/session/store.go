// internal/session/store.go
//
// Per-visitor session persistence for the game engine.
// Two backends implement Store:
//   - CookieStore: the whole session lives in a signed cookie (default).
//   - MemoryStore: sessions kept server-side, keyed by a visitor ID cookie.
//
// Backends only ever hand out game.Session values that satisfy the data
// model invariants; anything else loads as a fresh session.

package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/robalobadob/guess/internal/config"
	"github.com/robalobadob/guess/internal/game"
)

// Store loads and saves the game session attached to a request.
type Store interface {
	// Load returns the visitor's session, or an empty session if none exists.
	Load(r *http.Request) (game.Session, error)

	// Save persists s for the visitor, writing cookies to w as needed.
	// Must be called before the response body is written.
	Save(w http.ResponseWriter, r *http.Request, s game.Session) error
}

// Options configures cookie attributes and lifetime shared by all backends.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool // set in production (HTTPS only)
}

// New builds the backend selected by cfg.SessionBackend.
func New(cfg config.Config) (Store, error) {
	opts := Options{CookieName: cfg.CookieName, TTL: cfg.SessionTTL, Secure: cfg.Production}
	switch cfg.SessionBackend {
	case config.BackendCookie:
		return NewCookieStore(cfg.SecretKey, opts)
	case config.BackendMemory:
		return NewMemoryStore(opts), nil
	default:
		return nil, fmt.Errorf("session: unknown backend %q", cfg.SessionBackend)
	}
}

// setCookie writes a session cookie with the shared security attributes.
// maxAge < 0 deletes the cookie; 0 leaves it a browser-session cookie.
func (o Options) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
