package cloudfile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeTokens is a TokenSource returning a fixed token, or an error.
type fakeTokens struct {
	configured bool
	token      string
	err        error
	calls      atomic.Int32
	// interactiveSeen records the flag of the last AccessToken call.
	interactiveSeen atomic.Bool
}

func (f *fakeTokens) Configured() bool { return f.configured }

func (f *fakeTokens) AccessToken(ctx context.Context, interactive bool) (string, error) {
	f.calls.Add(1)
	f.interactiveSeen.Store(interactive)
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func TestDoRetriesOnceOnUnauthorized(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		body, _ := io.ReadAll(r.Body)
		if string(body) != "payload" {
			t.Errorf("attempt %d body = %q", attempts.Load(), body)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := &fakeTokens{configured: true, token: "tok"}
	e := NewExecutor(srv.Client(), tokens)

	resp, err := e.Do(context.Background(), http.MethodPost, srv.URL, nil, []byte("payload"), CallOptions{Interactive: true})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if n := attempts.Load(); n != 2 {
		t.Errorf("attempts = %d, want 2", n)
	}
	if n := tokens.calls.Load(); n != 1 {
		t.Errorf("token calls = %d, want 1", n)
	}
}

func TestDoRetryOutcomeIsFinal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Even the authenticated attempt is rejected; there is no third try.
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tokens := &fakeTokens{configured: true, token: "tok"}
	e := NewExecutor(srv.Client(), tokens)

	resp, err := e.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, CallOptions{})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	if n := tokens.calls.Load(); n != 1 {
		t.Errorf("token calls = %d, want 1", n)
	}
}

func TestDoNoRetryWithoutCredentials(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := NewExecutor(srv.Client(), &fakeTokens{configured: false})

	resp, err := e.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, CallOptions{})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestDoForceAuthSkipsBareAttempt(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing credentials on forced-auth request")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := &fakeTokens{configured: true, token: "tok"}
	e := NewExecutor(srv.Client(), tokens)

	resp, err := e.Do(context.Background(), http.MethodPut, srv.URL, nil, []byte("x"), CallOptions{Interactive: true, ForceAuth: true})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()

	if n := attempts.Load(); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
	if !tokens.interactiveSeen.Load() {
		t.Errorf("interactive flag not forwarded to the token source")
	}
}

func TestDoTokenFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	wantErr := fmt.Errorf("consent dismissed")
	e := NewExecutor(srv.Client(), &fakeTokens{configured: true, err: wantErr})

	if _, err := e.Do(context.Background(), http.MethodGet, srv.URL, nil, nil, CallOptions{Interactive: true}); err == nil {
		t.Fatalf("expected token acquisition error")
	}
}

func TestDoPreservesCallerHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/x-litl" {
			t.Errorf("Content-Type = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewExecutor(srv.Client(), &fakeTokens{})
	header := http.Header{"Content-Type": []string{"application/x-litl"}}
	resp, err := e.Do(context.Background(), http.MethodPost, srv.URL, header, []byte("x"), CallOptions{})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
}
