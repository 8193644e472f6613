// Package document tracks which backend owns the current document and
// whether in-memory edits diverge from the last durable save.
package document

import (
	"sync"

	"github.com/crrlabs/riskregister/internal/localfile"
)

// Backend is the storage target currently bound to the document.
type Backend int

const (
	BackendNone Backend = iota
	BackendLocal
	BackendCloud
)

func (b Backend) String() string {
	switch b {
	case BackendLocal:
		return "local"
	case BackendCloud:
		return "cloud"
	default:
		return "none"
	}
}

// Identity records the document's binding: at most one of cloud ID or
// local handle is set, both empty when unbound. Created once at process
// start; only the sync orchestrator mutates it, and a failed operation
// must leave it untouched.
type Identity struct {
	mu          sync.Mutex
	backend     Backend
	displayName string
	cloudID     string
	handle      localfile.Handle
	saving      bool
}

// NewIdentity returns an unbound identity.
func NewIdentity() *Identity { return &Identity{} }

// BindCloud binds the document to a cloud object, discarding any local
// binding.
func (i *Identity) BindCloud(id, name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.backend = BackendCloud
	i.cloudID = id
	i.handle = nil
	i.displayName = name
}

// BindLocal binds the document to a local handle, discarding any cloud
// binding.
func (i *Identity) BindLocal(h localfile.Handle, name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.backend = BackendLocal
	i.handle = h
	i.cloudID = ""
	i.displayName = name
}

// Reset returns the identity to the unbound state. The saving flag is
// left alone; it belongs to the operation that set it.
func (i *Identity) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.backend = BackendNone
	i.cloudID = ""
	i.handle = nil
	i.displayName = ""
}

// SetDisplayName updates the user-facing name without changing the
// binding, e.g. after the provider reconciles a file name.
func (i *Identity) SetDisplayName(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.displayName = name
}

func (i *Identity) Backend() Backend {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.backend
}

func (i *Identity) CloudID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cloudID
}

func (i *Identity) Handle() localfile.Handle {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.handle
}

func (i *Identity) DisplayName() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.displayName
}

// CanSave reports whether an in-place save target exists: a cloud binding,
// or a local handle that supports writing.
func (i *Identity) CanSave() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	switch i.backend {
	case BackendCloud:
		return true
	case BackendLocal:
		return i.handle != nil && i.handle.Writable()
	default:
		return false
	}
}

// BeginSave atomically claims the save-in-progress flag. It returns false
// when a save is already in flight, which callers must treat as a
// rejection rather than queueing a second write.
func (i *Identity) BeginSave() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.saving {
		return false
	}
	i.saving = true
	return true
}

// EndSave releases the save-in-progress flag. It runs on every exit path
// of a save so a failed save never leaves the status stuck.
func (i *Identity) EndSave() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.saving = false
}

func (i *Identity) Saving() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.saving
}
