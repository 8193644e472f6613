// Package cloudfile implements the remote side of document persistence:
// authenticated reads and writes against an object-storage API with
// metadata, plus parsing of user-supplied file references.
package cloudfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
)

// maxDownloadBytes caps how much of a remote object is read before the
// envelope is parsed.
const maxDownloadBytes = 16 << 20

// FileRef is the minimal remote metadata used to reconcile a user-facing
// file name.
type FileRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
}

// Config describes the storage endpoint.
type Config struct {
	// BaseURL is the API root, e.g. "https://storage.example.com".
	BaseURL string

	// ViewBase is the root of user-facing view links ("/d/<id>/view" is
	// appended). Defaults to BaseURL.
	ViewBase string

	// ContentType is sent for uploaded content. Defaults to
	// application/octet-stream.
	ContentType string
}

// Client performs the remote file operations, delegating request execution
// and the authenticated-retry protocol to an Executor.
type Client struct {
	base        string
	viewBase    string
	contentType string
	exec        *Executor
}

// NewClient creates a Client for the given endpoint.
func NewClient(cfg Config, exec *Executor) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	viewBase := strings.TrimRight(cfg.ViewBase, "/")
	if viewBase == "" {
		viewBase = base
	}
	ct := cfg.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Client{base: base, viewBase: viewBase, contentType: ct, exec: exec}
}

// ShareLink returns the user-facing view URL for a file ID. The same link
// shape is accepted back by ParseFileID.
func (c *Client) ShareLink(id string) string {
	return fmt.Sprintf("%s/d/%s/view", c.viewBase, url.PathEscape(id))
}

// Metadata fetches id/name/mimeType for a file. Metadata is best-effort
// display information: any non-success response or undecodable body yields
// nil rather than an error.
func (c *Client) Metadata(ctx context.Context, id string, interactive bool) (*FileRef, error) {
	if id == "" {
		return nil, nil
	}
	u := fmt.Sprintf("%s/files/%s?fields=id,name,mimeType", c.base, url.PathEscape(id))
	resp, err := c.exec.Do(ctx, http.MethodGet, u, nil, nil, CallOptions{Interactive: interactive})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	var ref FileRef
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ref); err != nil {
		return nil, nil
	}
	return &ref, nil
}

// Download fetches a file's raw content and, opportunistically, its
// metadata. A failed metadata fetch never fails the download; the returned
// reference then carries only the ID.
func (c *Client) Download(ctx context.Context, id string, interactive bool) ([]byte, *FileRef, error) {
	if id == "" {
		return nil, nil, fmt.Errorf("missing cloud file ID")
	}
	u := fmt.Sprintf("%s/files/%s?alt=media", c.base, url.PathEscape(id))
	resp, err := c.exec.Do(ctx, http.MethodGet, u, nil, nil, CallOptions{Interactive: interactive})
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, nil, err
	}

	content, err := readCapped(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	ref, _ := c.Metadata(ctx, id, interactive)
	if ref == nil {
		ref = &FileRef{ID: id}
	}
	return content, ref, nil
}

// Update replaces the content of an existing file in place. Uploads always
// run authenticated. The returned reference falls back to the
// caller-supplied id and name if the provider omits them.
func (c *Client) Update(ctx context.Context, id string, content []byte, name string, interactive bool) (*FileRef, error) {
	if id == "" {
		return nil, fmt.Errorf("missing cloud file ID")
	}
	u := fmt.Sprintf("%s/upload/files/%s?uploadType=media&fields=id,name", c.base, url.PathEscape(id))
	header := http.Header{"Content-Type": []string{c.contentType}}
	resp, err := c.exec.Do(ctx, http.MethodPatch, u, header, content, CallOptions{Interactive: interactive, ForceAuth: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	ref := FileRef{ID: id, Name: name}
	var got FileRef
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&got); err == nil {
		if got.ID != "" {
			ref.ID = got.ID
		}
		if got.Name != "" {
			ref.Name = got.Name
		}
	}
	return &ref, nil
}

// Create uploads a new file using a two-part multipart/related body: a
// JSON metadata part (name, mimeType) and the content itself, separated by
// a random boundary.
func (c *Client) Create(ctx context.Context, content []byte, name string, interactive bool) (*FileRef, error) {
	boundary := "crr-" + uuid.NewString()
	meta, err := json.Marshal(map[string]string{"name": name, "mimeType": c.contentType})
	if err != nil {
		return nil, fmt.Errorf("unable to encode file metadata: %w", err)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "--%s\r\nContent-Type: application/json; charset=UTF-8\r\n\r\n%s\r\n", boundary, meta)
	fmt.Fprintf(&body, "--%s\r\nContent-Type: %s\r\n\r\n%s\r\n", boundary, c.contentType, content)
	fmt.Fprintf(&body, "--%s--", boundary)

	u := fmt.Sprintf("%s/upload/files?uploadType=multipart&fields=id,name", c.base)
	header := http.Header{"Content-Type": []string{"multipart/related; boundary=" + boundary}}
	resp, err := c.exec.Do(ctx, http.MethodPost, u, header, []byte(body.String()), CallOptions{Interactive: interactive, ForceAuth: true})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var ref FileRef
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ref); err != nil {
		return nil, fmt.Errorf("unable to decode create response: %w", err)
	}
	if ref.Name == "" {
		ref.Name = name
	}
	return &ref, nil
}

func success(status int) bool { return status >= 200 && status <= 299 }

// checkStatus maps a non-success response to a RemoteError, reusing the
// googleapi error reader so structured error bodies are preserved.
func checkStatus(resp *http.Response) error {
	if success(resp.StatusCode) {
		return nil
	}
	err := googleapi.CheckResponse(resp)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &RemoteError{Status: gerr.Code, Body: strings.TrimSpace(gerr.Body)}
	}
	if err != nil {
		return &RemoteError{Status: resp.StatusCode, Body: err.Error()}
	}
	return &RemoteError{Status: resp.StatusCode}
}

func readCapped(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDownloadBytes+1))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if len(data) > maxDownloadBytes {
		return nil, ErrPayloadTooLarge
	}
	return data, nil
}
