package document

import (
	"sync"
	"time"

	"github.com/crrlabs/riskregister/internal/model"
)

// defaultDebounce coalesces rapid edits so each keystroke does not
// recompute a full snapshot.
const defaultDebounce = 150 * time.Millisecond

// Tracker flags the document dirty when current content diverges from the
// last durable save. Comparison is by canonical snapshot value, so
// reordering entries in memory does not count as a change.
type Tracker struct {
	dataset  func() model.Dataset
	onChange func(dirty bool)
	debounce time.Duration

	mu        sync.Mutex
	lastSaved string
	dirty     bool
	timer     *time.Timer
}

// NewTracker creates a tracker over the given dataset accessor. onChange,
// if non-nil, is invoked whenever the dirty flag flips; it must not call
// back into the tracker.
func NewTracker(dataset func() model.Dataset, onChange func(dirty bool)) *Tracker {
	return &Tracker{
		dataset:  dataset,
		onChange: onChange,
		debounce: defaultDebounce,
	}
}

// MarkDirtySoon schedules the dirty flag after the debounce window. A
// later edit replaces the pending timer, so an edit storm costs one
// firing.
func (t *Tracker) MarkDirtySoon() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounce, t.markDirtyNow)
}

func (t *Tracker) markDirtyNow() {
	t.mu.Lock()
	t.timer = nil
	changed := !t.dirty
	t.dirty = true
	cb := t.onChange
	t.mu.Unlock()
	if changed && cb != nil {
		cb(true)
	}
}

// Recompute compares the current snapshot against the saved baseline and
// updates the dirty flag to the true state. Used after bulk structural
// changes where the UI needs the answer immediately.
func (t *Tracker) Recompute() bool {
	snap := model.Snapshot(t.dataset())

	t.mu.Lock()
	dirty := snap != t.lastSaved
	changed := dirty != t.dirty
	t.dirty = dirty
	cb := t.onChange
	t.mu.Unlock()

	if changed && cb != nil {
		cb(dirty)
	}
	return dirty
}

// CommitBaseline stores the current snapshot as the last-saved baseline
// and clears the dirty flag. Called after every successful save or open.
func (t *Tracker) CommitBaseline() {
	snap := model.Snapshot(t.dataset())

	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	changed := t.dirty
	t.lastSaved = snap
	t.dirty = false
	cb := t.onChange
	t.mu.Unlock()

	if changed && cb != nil {
		cb(false)
	}
}

// ResetBaseline discards the baseline for a fresh unsaved document, which
// is dirty by definition.
func (t *Tracker) ResetBaseline() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	changed := !t.dirty
	t.lastSaved = ""
	t.dirty = true
	cb := t.onChange
	t.mu.Unlock()

	if changed && cb != nil {
		cb(true)
	}
}

// Dirty returns the current flag without recomputing.
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}
