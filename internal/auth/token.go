// Package auth owns the OAuth2 access-token lifecycle for the cloud
// backend: acquisition, expiry tracking, and coalescing of concurrent
// requests so a single consent flow serves every waiter.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	// expirySkew guards against a token expiring while a request is in
	// flight; a token within this margin of expiry is treated as invalid.
	expirySkew = 5 * time.Second

	// defaultLifetime applies when the provider reports no expiry at all.
	defaultLifetime = time.Hour

	defaultReadyPoll    = 120 * time.Millisecond
	defaultReadyTimeout = 6 * time.Second
)

// Provider performs the actual token acquisition against the identity
// provider. Implementations decide what "interactive" means for their
// runtime (consent browser flow, cached grant, test stub).
type Provider interface {
	// Ready reports whether the provider can serve requests yet.
	Ready(ctx context.Context) bool

	// RequestToken acquires a fresh access token. With interactive=false the
	// provider must not show any consent UI and should fail if a silent
	// grant is impossible.
	RequestToken(ctx context.Context, interactive bool) (*oauth2.Token, error)
}

// Manager caches a single access token for the process session and
// coalesces concurrent acquisitions into one provider round trip. The
// token is never persisted; a new process starts unauthenticated.
type Manager struct {
	clientID    string
	newProvider func() Provider

	readyPoll    time.Duration
	readyTimeout time.Duration
	now          func() time.Time

	initOnce sync.Once
	provider Provider

	mu      sync.Mutex
	token   *oauth2.Token
	pending *pendingRequest
}

// pendingRequest is the single outstanding acquisition shared by all
// concurrent callers. It is fulfilled exactly once and then discarded.
type pendingRequest struct {
	done  chan struct{}
	token *oauth2.Token
	err   error
}

func (p *pendingRequest) wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.done:
	}
	if p.err != nil {
		return nil, p.err
	}
	t := *p.token
	return &t, nil
}

// NewManager creates a Manager. The provider is constructed lazily, once,
// on the first acquisition that needs it.
func NewManager(clientID string, newProvider func() Provider) *Manager {
	return &Manager{
		clientID:     clientID,
		newProvider:  newProvider,
		readyPoll:    defaultReadyPoll,
		readyTimeout: defaultReadyTimeout,
		now:          time.Now,
	}
}

// Configured reports whether a client credential is available at all.
func (m *Manager) Configured() bool { return m.clientID != "" }

// EnsureToken returns a valid access token, reusing the cached one when it
// has not expired, joining an in-flight acquisition when one exists, and
// otherwise starting a new one. interactive controls whether the provider
// may show a consent UI.
func (m *Manager) EnsureToken(ctx context.Context, interactive bool) (*oauth2.Token, error) {
	if m.clientID == "" {
		return nil, ErrNotConfigured
	}

	m.mu.Lock()
	if m.tokenValidLocked() {
		t := *m.token
		m.mu.Unlock()
		return &t, nil
	}
	if m.pending != nil {
		p := m.pending
		m.mu.Unlock()
		return p.wait(ctx)
	}
	p := &pendingRequest{done: make(chan struct{})}
	m.pending = p
	m.mu.Unlock()

	tok, err := m.acquire(ctx, interactive)

	m.mu.Lock()
	if err != nil {
		m.token = nil
	} else {
		m.token = tok
	}
	p.token, p.err = tok, err
	m.pending = nil
	m.mu.Unlock()
	close(p.done)

	if err != nil {
		return nil, err
	}
	t := *tok
	return &t, nil
}

// AccessToken is the credential hook used by the request executor.
func (m *Manager) AccessToken(ctx context.Context, interactive bool) (string, error) {
	tok, err := m.EnsureToken(ctx, interactive)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Invalidate drops the cached token, forcing the next caller through a
// full acquisition. Used on sign-out and after authorization errors.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()
}

func (m *Manager) tokenValidLocked() bool {
	return m.token != nil &&
		m.token.AccessToken != "" &&
		m.now().Before(m.token.Expiry.Add(-expirySkew))
}

func (m *Manager) acquire(ctx context.Context, interactive bool) (*oauth2.Token, error) {
	m.initOnce.Do(func() { m.provider = m.newProvider() })

	if err := m.awaitProvider(ctx); err != nil {
		return nil, err
	}

	tok, err := m.provider.RequestToken(ctx, interactive)
	if err != nil {
		var ae *AuthError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, &AuthError{Reason: err.Error()}
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, &AuthError{Reason: "provider returned an empty token"}
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = m.expiryFor(tok.AccessToken)
	}
	return tok, nil
}

// awaitProvider polls Ready until it reports true or the readiness timeout
// elapses. No other operation in the core busy-waits.
func (m *Manager) awaitProvider(ctx context.Context) error {
	if m.provider.Ready(ctx) {
		return nil
	}

	poll := time.NewTicker(m.readyPoll)
	defer poll.Stop()
	timeout := time.NewTimer(m.readyTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return ErrProviderUnavailable
		case <-poll.C:
			if m.provider.Ready(ctx) {
				return nil
			}
		}
	}
}

// expiryFor derives an expiry when the provider omitted one: a JWT-shaped
// access token may carry its own exp claim; otherwise the default lifetime
// applies.
func (m *Manager) expiryFor(accessToken string) time.Time {
	now := m.now()
	if exp, ok := jwtExpiry(accessToken); ok && exp.After(now) {
		return exp
	}
	return now.Add(defaultLifetime)
}

func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
