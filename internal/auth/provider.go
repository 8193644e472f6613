package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ConsentFunc drives the interactive part of the authorization-code flow:
// it presents authURL to the user and returns the authorization code.
type ConsentFunc func(ctx context.Context, authURL string) (code string, err error)

// CodeFlowProvider implements Provider over a standard OAuth2
// authorization-code flow. Interactive requests run the consent flow;
// silent requests succeed only when a refresh token from an earlier grant
// is still held in memory.
type CodeFlowProvider struct {
	config  *oauth2.Config
	consent ConsentFunc

	mu      sync.Mutex
	refresh string
}

// NewCodeFlowProvider creates a provider for the given OAuth2 config.
func NewCodeFlowProvider(config *oauth2.Config, consent ConsentFunc) *CodeFlowProvider {
	return &CodeFlowProvider{config: config, consent: consent}
}

// Ready reports whether the provider endpoint is known.
func (p *CodeFlowProvider) Ready(ctx context.Context) bool {
	return p.config != nil && p.config.Endpoint.AuthURL != ""
}

// RequestToken acquires an access token. A held refresh token is tried
// first; interactive callers fall back to the consent flow when the silent
// path fails.
func (p *CodeFlowProvider) RequestToken(ctx context.Context, interactive bool) (*oauth2.Token, error) {
	p.mu.Lock()
	refresh := p.refresh
	p.mu.Unlock()

	if refresh != "" {
		// Expiry in the past forces the token source to refresh immediately.
		seed := &oauth2.Token{RefreshToken: refresh, Expiry: time.Now().Add(-time.Hour)}
		tok, err := p.config.TokenSource(ctx, seed).Token()
		if err == nil {
			p.remember(tok)
			return tok, nil
		}
		if !interactive {
			return nil, &AuthError{Reason: err.Error()}
		}
	}

	if !interactive {
		return nil, &AuthError{Reason: "no prior grant; interactive consent required"}
	}

	state := uuid.NewString()
	code, err := p.consent(ctx, p.config.AuthCodeURL(state, oauth2.AccessTypeOffline))
	if err != nil {
		return nil, &AuthError{Reason: err.Error()}
	}

	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, &AuthError{Reason: err.Error()}
	}
	p.remember(tok)
	return tok, nil
}

func (p *CodeFlowProvider) remember(tok *oauth2.Token) {
	if tok.RefreshToken == "" {
		return
	}
	p.mu.Lock()
	p.refresh = tok.RefreshToken
	p.mu.Unlock()
}
