package redirect

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

const DefaultTimeout = 2 * time.Minute

var (
	ErrAlreadyStarted = errors.New("redirect listener already started")
	ErrClosed         = errors.New("redirect listener closed")
)

const completePage = `<html><head><title>Hotspot 2.0 Release 2</title></head>` +
	`<body><p>Sign-up complete. You may close this page.</p></body></html>`

// Listener is the loopback HTTP endpoint the OSU server redirects the
// user's browser to when sign-up is done. It binds and serves from Listen
// so URL is valid before Start; Start and Stop only open and close a
// sign-up session.
type Listener struct {
	srv     *http.Server
	url     string
	timeout time.Duration
	after   func(d time.Duration, fn func()) func() bool

	mu       sync.Mutex
	session  int
	active   bool
	closed   bool
	cancelTO func() bool
	cb       provisioning.RedirectCallbacks

	logger zerolog.Logger
}

// Listen binds addr, typically 127.0.0.1:0, and starts serving.
func Listen(addr string, timeout time.Duration, logger zerolog.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	l := newListener("http://"+ln.Addr().String()+"/", timeout, logger)
	l.srv = &http.Server{Handler: l.Router(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error().Err(err).Msg("redirect server stopped")
		}
	}()
	return l, nil
}

func newListener(url string, timeout time.Duration, logger zerolog.Logger) *Listener {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Listener{
		url:     url,
		timeout: timeout,
		after: func(d time.Duration, fn func()) func() bool {
			return time.AfterFunc(d, fn).Stop
		},
		logger: logger.With().Str("component", "redirect").Logger(),
	}
}

func (l *Listener) URL() string { return l.url }

// Start opens a session. Exactly one of the callbacks fires per session
// unless Stop ends it first.
func (l *Listener) Start(cb provisioning.RedirectCallbacks) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if l.active {
		return ErrAlreadyStarted
	}
	l.session++
	l.active = true
	l.cb = cb
	session := l.session
	l.cancelTO = l.after(l.timeout, func() { l.timedOut(session) })
	l.logger.Info().Str("url", l.url).Dur("timeout", l.timeout).Msg("redirect listener started")
	return nil
}

func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.endLocked()
}

// Close ends any session and shuts the server down.
func (l *Listener) Close() error {
	l.mu.Lock()
	l.endLocked()
	l.closed = true
	l.mu.Unlock()
	if l.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return l.srv.Shutdown(ctx)
}

func (l *Listener) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.HandleFunc("/*", l.handleRedirect)
	return r
}

func (l *Listener) handleRedirect(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		http.Error(w, "no sign-up in progress", http.StatusNotFound)
		return
	}
	fn := l.cb.OnRedirectReceived
	l.endLocked()
	l.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(completePage))

	l.logger.Info().Str("path", r.URL.Path).Msg("redirect received")
	if fn != nil {
		fn()
	}
}

func (l *Listener) timedOut(session int) {
	l.mu.Lock()
	if !l.active || l.session != session {
		l.mu.Unlock()
		return
	}
	fn := l.cb.OnRedirectTimedOut
	l.endLocked()
	l.mu.Unlock()

	l.logger.Warn().Msg("redirect timed out")
	if fn != nil {
		fn()
	}
}

func (l *Listener) endLocked() {
	if !l.active {
		return
	}
	l.active = false
	l.cb = provisioning.RedirectCallbacks{}
	if l.cancelTO != nil {
		l.cancelTO()
		l.cancelTO = nil
	}
}

var _ provisioning.RedirectListener = (*Listener)(nil)
