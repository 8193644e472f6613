// Package syncer is the façade the editor drives: open, save, save-as,
// and new, sequencing the local and cloud backends and keeping document
// identity and dirty state consistent.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/crrlabs/riskregister/internal/cloudfile"
	"github.com/crrlabs/riskregister/internal/document"
	"github.com/crrlabs/riskregister/internal/localfile"
	"github.com/crrlabs/riskregister/internal/model"
	"github.com/crrlabs/riskregister/internal/store"
)

// ErrSaveInProgress rejects a save requested while another is in flight.
var ErrSaveInProgress = errors.New("a save is already in progress")

// Credentials is the slice of the token manager the orchestrator needs:
// whether an interactive retry is worth attempting at all.
type Credentials interface {
	Configured() bool
}

// Prompter collects the user inputs the orchestrator needs beyond file
// pickers. Dismissals return localfile.ErrCancelled.
type Prompter interface {
	// CloudFileRef asks for a file link or ID to open.
	CloudFileRef(ctx context.Context) (string, error)

	// CloudFileName asks for the name to create a cloud file under.
	CloudFileName(ctx context.Context, suggested string) (string, error)
}

// Status is the snapshot of persistence state the UI renders.
type Status struct {
	Backend     document.Backend
	DisplayName string
	CloudID     string
	Dirty       bool
	Saving      bool
}

// Orchestrator wires the dataset store, both backends, and the document
// identity/dirty trackers. All identity mutations happen here, and only
// after the operation that justifies them has succeeded.
type Orchestrator struct {
	store    store.Store
	cloud    *cloudfile.Client
	local    localfile.Backend
	creds    Credentials
	identity *document.Identity
	tracker  *document.Tracker
	prompts  Prompter
	title    string
}

// New creates an Orchestrator. local may be nil on cloud-only hosts.
func New(st store.Store, cloud *cloudfile.Client, local localfile.Backend, creds Credentials, identity *document.Identity, tracker *document.Tracker, prompts Prompter) *Orchestrator {
	return &Orchestrator{
		store:    st,
		cloud:    cloud,
		local:    local,
		creds:    creds,
		identity: identity,
		tracker:  tracker,
		prompts:  prompts,
		title:    model.DefaultTitle,
	}
}

// Status reports the current persistence state.
func (o *Orchestrator) Status() Status {
	return Status{
		Backend:     o.identity.Backend(),
		DisplayName: o.identity.DisplayName(),
		CloudID:     o.identity.CloudID(),
		Dirty:       o.tracker.Dirty(),
		Saving:      o.identity.Saving(),
	}
}

// ShareLink returns the view URL for the bound cloud file, or "" when the
// document is not cloud-bound.
func (o *Orchestrator) ShareLink() string {
	if o.identity.Backend() != document.BackendCloud {
		return ""
	}
	return o.cloud.ShareLink(o.identity.CloudID())
}

// OpenLocal opens a file through the local picker and replaces the
// dataset. A dismissed picker is not an error.
func (o *Orchestrator) OpenLocal(ctx context.Context) error {
	if o.local == nil || !o.local.Available() {
		return fmt.Errorf("local file access is not available in this runtime")
	}
	h, err := o.local.OpenPicker(ctx)
	if errors.Is(err, localfile.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	data, err := h.Read(ctx)
	if err != nil {
		return err
	}
	env, err := model.Decode(data)
	if err != nil {
		return err
	}

	o.store.ReplaceAll(env.Data)
	o.identity.BindLocal(h, h.Name())
	o.tracker.CommitBaseline()
	return nil
}

// OpenCloud resolves a free-form file reference, downloads the content,
// and binds the document to the cloud object. A failure leaves the
// previous identity untouched.
func (o *Orchestrator) OpenCloud(ctx context.Context, raw string, interactive bool) error {
	id := cloudfile.ParseFileID(raw)
	if id == "" {
		return fmt.Errorf("unable to determine a cloud file ID from %q", raw)
	}

	data, ref, err := o.cloud.Download(ctx, id, interactive)
	if err != nil {
		return err
	}
	env, err := model.Decode(data)
	if err != nil {
		return err
	}

	o.store.ReplaceAll(env.Data)
	o.identity.BindCloud(id, cloudDisplayName(ref, env, id))
	o.tracker.CommitBaseline()
	return nil
}

// OpenFromLink handles a shareable link found at startup: a silent load
// attempt first, then one interactive attempt if credentials are
// configured at all.
func (o *Orchestrator) OpenFromLink(ctx context.Context, raw string) error {
	err := o.OpenCloud(ctx, raw, false)
	if err == nil {
		return nil
	}
	if !o.creds.Configured() {
		return err
	}
	log.Printf("silent load failed, retrying with consent: %v", err)
	return o.OpenCloud(ctx, raw, true)
}

// PromptOpenCloud asks the user for a file reference and opens it
// interactively.
func (o *Orchestrator) PromptOpenCloud(ctx context.Context) error {
	raw, err := o.prompts.CloudFileRef(ctx)
	if errors.Is(err, localfile.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return o.OpenCloud(ctx, raw, true)
}

// Save writes to the bound backend, or falls through to a local save-as
// when no in-place target exists. At most one save runs at a time; a
// second request while one is in flight is rejected, never interleaved.
func (o *Orchestrator) Save(ctx context.Context) error {
	if !o.identity.BeginSave() {
		return ErrSaveInProgress
	}
	defer o.identity.EndSave()
	return o.save(ctx)
}

func (o *Orchestrator) save(ctx context.Context) error {
	switch o.identity.Backend() {
	case document.BackendCloud:
		data, err := o.encode()
		if err != nil {
			return err
		}
		ref, err := o.cloud.Update(ctx, o.identity.CloudID(), data, o.identity.DisplayName(), true)
		if err != nil {
			return err
		}
		if ref.Name != "" {
			o.identity.SetDisplayName(ref.Name)
		}
		o.tracker.CommitBaseline()
		return nil

	case document.BackendLocal:
		h := o.identity.Handle()
		if h == nil || !h.Writable() {
			return o.saveAsLocal(ctx)
		}
		data, err := o.encode()
		if err != nil {
			return err
		}
		if err := h.Write(ctx, data); err != nil {
			return err
		}
		o.tracker.CommitBaseline()
		return nil

	default:
		return o.saveAsLocal(ctx)
	}
}

// SaveAsLocal saves to a destination chosen through the local save
// picker, establishing a new identity on success.
func (o *Orchestrator) SaveAsLocal(ctx context.Context) error {
	if !o.identity.BeginSave() {
		return ErrSaveInProgress
	}
	defer o.identity.EndSave()
	return o.saveAsLocal(ctx)
}

func (o *Orchestrator) saveAsLocal(ctx context.Context) error {
	if o.local == nil || !o.local.Available() {
		return fmt.Errorf("local file access is not available in this runtime")
	}
	h, err := o.local.SavePicker(ctx, o.suggestedName())
	if errors.Is(err, localfile.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	data, err := o.encode()
	if err != nil {
		return err
	}
	if err := h.Write(ctx, data); err != nil {
		return err
	}

	if h.Writable() {
		o.identity.BindLocal(h, h.Name())
	} else {
		// One-shot export: the document stays unbound, but the name and
		// baseline reflect the file that was just produced.
		o.identity.Reset()
		o.identity.SetDisplayName(h.Name())
	}
	o.tracker.CommitBaseline()
	return nil
}

// SaveAsCloud creates a new cloud file under a user-chosen name and binds
// the document to it, detaching any previous local binding.
func (o *Orchestrator) SaveAsCloud(ctx context.Context) error {
	if !o.identity.BeginSave() {
		return ErrSaveInProgress
	}
	defer o.identity.EndSave()

	name, err := o.prompts.CloudFileName(ctx, o.suggestedName())
	if errors.Is(err, localfile.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	name = model.ToFileName(strings.TrimSpace(name))

	data, err := o.encode()
	if err != nil {
		return err
	}
	ref, err := o.cloud.Create(ctx, data, name, true)
	if err != nil {
		return err
	}

	o.identity.BindCloud(ref.ID, ref.Name)
	o.tracker.CommitBaseline()
	return nil
}

// New clears the dataset and unbinds the document. A fresh unsaved
// document is dirty by definition.
func (o *Orchestrator) New() {
	o.store.ReplaceAll(model.Dataset{})
	o.identity.Reset()
	o.tracker.ResetBaseline()
}

func (o *Orchestrator) encode() ([]byte, error) {
	return model.NewEnvelope(o.title, o.store.Dataset()).Encode()
}

func (o *Orchestrator) suggestedName() string {
	if name := o.identity.DisplayName(); name != "" {
		return model.ToFileName(name)
	}
	return model.DefaultFileName
}

// cloudDisplayName reconciles a display name: provider metadata first,
// then the envelope title, then the bare ID.
func cloudDisplayName(ref *cloudfile.FileRef, env *model.Envelope, id string) string {
	if ref != nil && ref.Name != "" {
		return ref.Name
	}
	if env.Title != "" {
		return model.ToFileName(env.Title)
	}
	return model.ToFileName(id)
}
