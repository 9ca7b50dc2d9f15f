package httpserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/guess/internal/config"
	"github.com/robalobadob/guess/internal/game"
	"github.com/robalobadob/guess/internal/session"
)

func testConfig(backend string) config.Config {
	return config.Config{
		SecretKey:      "test_secret_key",
		SessionBackend: backend,
		CookieName:     "guess_session",
		SessionTTL:     time.Hour,
		RequestTimeout: 5 * time.Second,
	}
}

// newTestServer starts a server whose rounds always use secret.
func newTestServer(t *testing.T, backend string, secret int) *httptest.Server {
	t.Helper()
	cfg := testConfig(backend)
	st, err := session.New(cfg)
	require.NoError(t, err)
	picker := game.PickerFunc(func(lo, hi int) int { return secret })
	ts := httptest.NewServer(New(cfg, game.NewEngine(picker), st).Handler())
	t.Cleanup(ts.Close)
	return ts
}

// browser is an HTTP client that keeps cookies like a visitor's browser.
type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newBrowser(t *testing.T, ts *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar}, base: ts.URL}
}

func (b *browser) get() (int, string) {
	b.t.Helper()
	res, err := b.client.Get(b.base + "/")
	require.NoError(b.t, err)
	return readBody(b.t, res)
}

func (b *browser) guess(v string) (int, string) {
	b.t.Helper()
	res, err := b.client.PostForm(b.base+"/", url.Values{"guess": {v}})
	require.NoError(b.t, err)
	return readBody(b.t, res)
}

func readBody(t *testing.T, res *http.Response) (int, string) {
	t.Helper()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func message(body string) string {
	start := strings.Index(body, "<p>")
	end := strings.Index(body, "</p>")
	if start < 0 || end < start {
		return ""
	}
	return body[start+len("<p>") : end]
}

func TestPlayFullRound(t *testing.T) {
	for _, backend := range []string{config.BackendCookie, config.BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			ts := newTestServer(t, backend, 50)
			b := newBrowser(t, ts)

			status, body := b.get()
			require.Equal(t, http.StatusOK, status)
			assert.Contains(t, body, "Number Guessing Game")
			assert.Equal(t, "Guess a number between 1 and 100!", message(body))

			_, body = b.get()
			assert.Equal(t, "", message(body), "reload keeps the round without a welcome")

			_, body = b.guess("30")
			assert.Equal(t, "Too low! Try again.", message(body))

			_, body = b.guess("abc")
			assert.Equal(t, "Invalid input. Enter a number between 1 and 100.", message(body))

			_, body = b.guess("200")
			assert.Equal(t, "Too high! Try again.", message(body))

			_, body = b.guess(" 50 ")
			assert.Equal(t, "You got it! The number was 50. It took 3 attempts.", message(body))

			_, body = b.get()
			assert.Equal(t, "Guess a number between 1 and 100!", message(body), "a new round starts after a win")
		})
	}
}

func TestPostWithoutPriorGet(t *testing.T) {
	ts := newTestServer(t, config.BackendCookie, 10)
	b := newBrowser(t, ts)

	status, body := b.guess("10")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "You got it! The number was 10. It took 1 attempts.", message(body))
}

func TestPostInvalidFreshVisitor(t *testing.T) {
	ts := newTestServer(t, config.BackendCookie, 10)
	b := newBrowser(t, ts)

	status, body := b.guess("not a number")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Invalid input")
}

func TestVisitorsDoNotShareRounds(t *testing.T) {
	ts := newTestServer(t, config.BackendMemory, 40)
	alice, bob := newBrowser(t, ts), newBrowser(t, ts)

	alice.get()
	alice.guess("1")
	alice.guess("2")

	bob.get()
	_, body := bob.guess("40")
	assert.Equal(t, "You got it! The number was 40. It took 1 attempts.", message(body))

	_, body = alice.guess("40")
	assert.Equal(t, "You got it! The number was 40. It took 3 attempts.", message(body))
}

func TestContentTypeAndHealth(t *testing.T) {
	ts := newTestServer(t, config.BackendCookie, 10)

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))

	res, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	status, body := readBody(t, res)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, body)
}

func TestUnsupportedMethodAndPath(t *testing.T) {
	ts := newTestServer(t, config.BackendCookie, 10)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)

	res, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// failingStore simulates an unavailable session backend.
type failingStore struct {
	loadErr, saveErr error
}

func (f failingStore) Load(*http.Request) (game.Session, error) { return game.Session{}, f.loadErr }

func (f failingStore) Save(http.ResponseWriter, *http.Request, game.Session) error {
	return f.saveErr
}

func TestSessionStoreFailure(t *testing.T) {
	tests := []struct {
		name  string
		store failingStore
	}{
		{name: "load", store: failingStore{loadErr: errors.New("backend down")}},
		{name: "save", store: failingStore{saveErr: errors.New("backend down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(testConfig(config.BackendCookie), game.NewEngine(nil), tt.store)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotContains(t, rec.Body.String(), "backend down")
		})
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := testConfig(config.BackendCookie)
	st, err := session.New(cfg)
	require.NoError(t, err)
	srv := New(cfg, game.NewEngine(nil), st)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx, addr) }()

	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
