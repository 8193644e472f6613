// Package localfile wraps user-granted local file access. Runtimes with
// real file-handle support keep a reusable handle for in-place saves;
// degraded runtimes get one-shot export/import instead.
package localfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCancelled reports a picker or prompt the user dismissed. It is an
// outcome, not a failure: callers swallow it silently.
var ErrCancelled = errors.New("cancelled by user")

// Handle is an open reference to a local file.
type Handle interface {
	// Name is the user-facing file name.
	Name() string

	// Writable reports whether the handle supports repeated in-place
	// writes. One-shot export handles report false, which forces later
	// saves through save-as.
	Writable() bool

	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Backend produces handles through user-driven pickers.
type Backend interface {
	// Available reports whether the runtime supports local file access.
	Available() bool

	// OpenPicker asks the user for a file to read. Dismissal returns
	// ErrCancelled.
	OpenPicker(ctx context.Context) (Handle, error)

	// SavePicker asks the user for a save destination. Dismissal returns
	// ErrCancelled.
	SavePicker(ctx context.Context, suggestedName string) (Handle, error)
}

// PathPrompter supplies file paths for pickers on hosts where the user is
// asked for a path rather than shown a native dialog.
type PathPrompter interface {
	OpenPath(ctx context.Context) (string, error)
	SavePath(ctx context.Context, suggestedName string) (string, error)
}

// DirBackend is the full-capability backend over the OS filesystem.
type DirBackend struct {
	prompt PathPrompter
}

// NewDirBackend creates a backend that resolves picker interactions via
// the given prompter.
func NewDirBackend(prompt PathPrompter) *DirBackend {
	return &DirBackend{prompt: prompt}
}

func (b *DirBackend) Available() bool { return b.prompt != nil }

func (b *DirBackend) OpenPicker(ctx context.Context) (Handle, error) {
	path, err := b.prompt.OpenPath(ctx)
	if err != nil {
		return nil, err
	}
	return &FileHandle{path: path, writable: true}, nil
}

func (b *DirBackend) SavePicker(ctx context.Context, suggestedName string) (Handle, error) {
	path, err := b.prompt.SavePath(ctx, suggestedName)
	if err != nil {
		return nil, err
	}
	return &FileHandle{path: path, writable: true}, nil
}

// FileHandle is a reusable handle to a file path.
type FileHandle struct {
	path     string
	writable bool
}

// NewFileHandle wraps an already-known path, e.g. one passed on the
// command line.
func NewFileHandle(path string) *FileHandle {
	return &FileHandle{path: path, writable: true}
}

func (h *FileHandle) Name() string   { return filepath.Base(h.path) }
func (h *FileHandle) Writable() bool { return h.writable }

func (h *FileHandle) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", h.path, err)
	}
	return data, nil
}

// Write replaces the file's content. The underlying descriptor is closed
// on every exit path, success or error.
func (h *FileHandle) Write(ctx context.Context, data []byte) error {
	f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open %s for writing: %w", h.path, err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("unable to write %s: %w", h.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("unable to finish writing %s: %w", h.path, cerr)
	}
	return nil
}

// FileSupplier hands over a file's name and content without granting a
// handle, the way an upload input does.
type FileSupplier func(ctx context.Context) (name string, data []byte, err error)

// FallbackBackend is the degraded mode for runtimes without native handle
// support: opens read content through a supplier, saves are one-shot
// exports into a fixed directory. Neither retains a writable handle, so
// subsequent saves fall back to save-as.
type FallbackBackend struct {
	exportDir string
	supplier  FileSupplier
}

// NewFallbackBackend creates the degraded backend. exportDir receives
// one-shot saves; supplier serves opens.
func NewFallbackBackend(exportDir string, supplier FileSupplier) *FallbackBackend {
	return &FallbackBackend{exportDir: exportDir, supplier: supplier}
}

func (b *FallbackBackend) Available() bool { return b.supplier != nil || b.exportDir != "" }

func (b *FallbackBackend) OpenPicker(ctx context.Context) (Handle, error) {
	if b.supplier == nil {
		return nil, fmt.Errorf("no way to open local files in this runtime")
	}
	name, data, err := b.supplier(ctx)
	if err != nil {
		return nil, err
	}
	return &suppliedHandle{name: name, data: data}, nil
}

func (b *FallbackBackend) SavePicker(ctx context.Context, suggestedName string) (Handle, error) {
	if b.exportDir == "" {
		return nil, fmt.Errorf("no export directory configured")
	}
	path := filepath.Join(b.exportDir, filepath.Base(suggestedName))
	return &FileHandle{path: path, writable: false}, nil
}

// suppliedHandle carries content read through a FileSupplier. It cannot be
// written back.
type suppliedHandle struct {
	name string
	data []byte
}

func (h *suppliedHandle) Name() string   { return h.name }
func (h *suppliedHandle) Writable() bool { return false }

func (h *suppliedHandle) Read(ctx context.Context) ([]byte, error) {
	return h.data, nil
}

func (h *suppliedHandle) Write(ctx context.Context, data []byte) error {
	return fmt.Errorf("%s was opened without write access", h.name)
}
