package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/guess/internal/game"
)

// hkdfInfo binds derived keys to this use so SECRET_KEY can be shared safely.
const hkdfInfo = "guess/session-cookie/v1"

// sessionClaims is the signed cookie payload. Number and Attempts are both
// present while a round is in progress and both absent otherwise.
type sessionClaims struct {
	Number   *int `json:"number,omitempty"`
	Attempts *int `json:"attempts,omitempty"`
	jwt.RegisteredClaims
}

// CookieStore keeps the session in an HS256-signed JWT cookie.
type CookieStore struct {
	opts Options
	key  []byte
	now  func() time.Time
}

// NewCookieStore derives the signing key from secret and returns the store.
func NewCookieStore(secret string, opts Options) (*CookieStore, error) {
	if secret == "" {
		return nil, errors.New("session: empty secret key")
	}
	key, err := deriveKey(secret)
	if err != nil {
		return nil, err
	}
	return &CookieStore{opts: opts, key: key, now: time.Now}, nil
}

// deriveKey expands secret into a 256-bit HMAC key with HKDF-SHA256.
func deriveKey(secret string) ([]byte, error) {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("session: derive key: %w", err)
	}
	return key, nil
}

// Load verifies the cookie and decodes the round.
// Missing, tampered, expired, or inconsistent cookies yield an empty session.
func (s *CookieStore) Load(r *http.Request) (game.Session, error) {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil || c.Value == "" {
		return game.Session{}, nil
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		log.Debug().Err(err).Msg("discarding invalid session cookie")
		return game.Session{}, nil
	}

	sess, ok := claims.session()
	if !ok {
		log.Debug().Msg("discarding inconsistent session cookie")
		return game.Session{}, nil
	}
	return sess, nil
}

// Save signs the round into the cookie, or deletes the cookie when no round
// is in progress.
func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, sess game.Session) error {
	if !sess.InProgress() {
		if _, err := r.Cookie(s.opts.CookieName); err == nil {
			s.opts.setCookie(w, "", -1)
		}
		return nil
	}

	now := s.now()
	secret, attempts := sess.Round.Secret, sess.Round.Attempts
	claims := sessionClaims{
		Number:   &secret,
		Attempts: &attempts,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return fmt.Errorf("session: sign cookie: %w", err)
	}
	s.opts.setCookie(w, tok, 0)
	return nil
}

// session converts claims to a game.Session, reporting false when the
// payload breaks the data model invariants.
func (c *sessionClaims) session() (game.Session, bool) {
	switch {
	case c.Number == nil && c.Attempts == nil:
		return game.Session{}, true
	case c.Number == nil || c.Attempts == nil:
		return game.Session{}, false
	}
	sess := game.Session{Round: &game.Round{Secret: *c.Number, Attempts: *c.Attempts}}
	if !sess.Valid() {
		return game.Session{}, false
	}
	return sess, true
}
