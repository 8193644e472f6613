// Package store holds the in-memory dataset the editor works against.
// The persistence core only ever reads it wholesale (for snapshots and
// saves) or replaces it wholesale (on open/new).
package store

import (
	"strings"
	"sync"

	"github.com/crrlabs/riskregister/internal/model"
)

// Store is the dataset collaborator seen by the sync core.
type Store interface {
	// Dataset returns a deep-enough copy of the current content.
	Dataset() model.Dataset

	// ReplaceAll discards the current content and loads the given dataset,
	// reassigning creation-order IDs from 1.
	ReplaceAll(ds model.Dataset)
}

// MemoryStore is the session-scoped implementation backing the editor.
// Events are prepended on add so the newest entry lists first; IDs are
// monotonic per entity kind and reset only on ReplaceAll.
type MemoryStore struct {
	mu sync.Mutex

	items      []model.Event
	hazards    []model.Hazard
	objectives []model.Objective

	nextItemID      int64
	nextHazardID    int64
	nextObjectiveID int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextItemID: 1, nextHazardID: 1, nextObjectiveID: 1}
}

// AddEvent inserts a new event at the front and returns its assigned ID.
func (s *MemoryStore) AddEvent(ev model.Event) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = s.nextItemID
	s.nextItemID++
	s.items = append([]model.Event{ev}, s.items...)
	return ev.ID
}

// PutEvent updates an existing event in place, or prepends it if the ID is
// unknown. A zero ID falls through to AddEvent semantics.
func (s *MemoryStore) PutEvent(ev model.Event) int64 {
	if ev.ID == 0 {
		return s.AddEvent(ev)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == ev.ID {
			s.items[i] = ev
			return ev.ID
		}
	}
	s.items = append([]model.Event{ev}, s.items...)
	return ev.ID
}

// DeleteEvent removes the event with the given ID.
func (s *MemoryStore) DeleteEvent(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.items[:0]
	for _, ev := range s.items {
		if ev.ID != id {
			out = append(out, ev)
		}
	}
	s.items = out
}

// AddHazard appends a new hazard and returns its assigned ID.
func (s *MemoryStore) AddHazard(title string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled Hazard"
	}
	id := s.nextHazardID
	s.nextHazardID++
	s.hazards = append(s.hazards, model.Hazard{ID: id, Title: title})
	return id
}

// DeleteHazard removes a hazard and detaches it from any events that
// referenced it.
func (s *MemoryStore) DeleteHazard(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.hazards[:0]
	for _, h := range s.hazards {
		if h.ID != id {
			out = append(out, h)
		}
	}
	s.hazards = out

	for i := range s.items {
		if s.items[i].HazardID != nil && *s.items[i].HazardID == id {
			s.items[i].HazardID = nil
		}
	}
}

// AddObjective appends a new objective and returns its assigned ID.
func (s *MemoryStore) AddObjective(obj model.Objective) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(obj.Title) == "" {
		obj.Title = "Untitled Objective"
	}
	obj.ID = s.nextObjectiveID
	s.nextObjectiveID++
	s.objectives = append(s.objectives, obj)
	return obj.ID
}

// DeleteObjective removes an objective and detaches any mitigations that
// referenced it.
func (s *MemoryStore) DeleteObjective(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.objectives[:0]
	for _, o := range s.objectives {
		if o.ID != id {
			out = append(out, o)
		}
	}
	s.objectives = out

	for i := range s.items {
		for j := range s.items[i].PlanMitigations {
			m := &s.items[i].PlanMitigations[j]
			if m.ObjectiveID != nil && *m.ObjectiveID == id {
				m.ObjectiveID = nil
			}
		}
	}
}

// Dataset returns a copy of the current content.
func (s *MemoryStore) Dataset() model.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := model.Dataset{
		Items:      append([]model.Event(nil), s.items...),
		Hazards:    append([]model.Hazard(nil), s.hazards...),
		Objectives: append([]model.Objective(nil), s.objectives...),
	}
	ds.Normalize()
	return ds
}

// ReplaceAll loads a dataset wholesale, renumbering IDs from 1 in input
// order. Hazard and mitigation references are not remapped; callers load
// envelopes whose references were produced by the same renumbering.
func (s *MemoryStore) ReplaceAll(ds model.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.hazards = nil
	s.objectives = nil
	s.nextItemID, s.nextHazardID, s.nextObjectiveID = 1, 1, 1

	for _, h := range ds.Hazards {
		title := strings.TrimSpace(h.Title)
		if title == "" {
			title = "Untitled Hazard"
		}
		s.hazards = append(s.hazards, model.Hazard{ID: s.nextHazardID, Title: title})
		s.nextHazardID++
	}
	for _, o := range ds.Objectives {
		if strings.TrimSpace(o.Title) == "" {
			o.Title = "Untitled Objective"
		}
		o.ID = s.nextObjectiveID
		s.nextObjectiveID++
		s.objectives = append(s.objectives, o)
	}
	for _, ev := range ds.Items {
		ev.ID = s.nextItemID
		s.nextItemID++
		s.items = append(s.items, ev)
	}
}
