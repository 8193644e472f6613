package cloudfile

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// TokenSource supplies bearer credentials for authenticated retries.
type TokenSource interface {
	// Configured reports whether a credential provider exists at all. When
	// it does not, rejected responses are returned to the caller untouched.
	Configured() bool

	// AccessToken returns a valid bearer token, acquiring one if needed.
	AccessToken(ctx context.Context, interactive bool) (string, error)
}

// CallOptions control a single executed request.
type CallOptions struct {
	// Interactive permits a consent UI if token acquisition needs one.
	Interactive bool

	// ForceAuth attaches credentials up front and skips the unauthenticated
	// first attempt. Upload operations always set this.
	ForceAuth bool
}

// Executor issues requests with the try-unauthenticated-first protocol: a
// 401/403 on the bare attempt triggers exactly one authenticated retry,
// and whatever that retry returns is what the caller observes. More than
// one retry risks repeated consent prompts.
type Executor struct {
	client *http.Client
	tokens TokenSource
}

// NewExecutor creates an Executor. A nil http.Client falls back to
// http.DefaultClient.
func NewExecutor(client *http.Client, tokens TokenSource) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{client: client, tokens: tokens}
}

// Do executes the request described by method/url/header/body. The body is
// held as bytes so the authenticated retry can reissue a fresh copy.
func (e *Executor) Do(ctx context.Context, method, url string, header http.Header, body []byte, opts CallOptions) (*http.Response, error) {
	if opts.ForceAuth {
		token, err := e.tokens.AccessToken(ctx, opts.Interactive)
		if err != nil {
			return nil, err
		}
		return e.send(ctx, method, url, header, body, token)
	}

	resp, err := e.send(ctx, method, url, header, body, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}
	if e.tokens == nil || !e.tokens.Configured() {
		// No credential provider: the caller decides how to report this.
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	token, err := e.tokens.AccessToken(ctx, opts.Interactive)
	if err != nil {
		return nil, err
	}
	return e.send(ctx, method, url, header, body, token)
}

func (e *Executor) send(ctx context.Context, method, url string, header http.Header, body []byte, token string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return resp, nil
}
