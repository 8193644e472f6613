package store

import (
	"testing"

	"github.com/crrlabs/riskregister/internal/model"
)

func TestAddEventPrependsAndAssignsIDs(t *testing.T) {
	s := NewMemoryStore()
	first := s.AddEvent(model.Event{Title: "first"})
	second := s.AddEvent(model.Event{Title: "second"})

	if first != 1 || second != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first, second)
	}
	ds := s.Dataset()
	if len(ds.Items) != 2 {
		t.Fatalf("len(items) = %d", len(ds.Items))
	}
	if ds.Items[0].Title != "second" {
		t.Errorf("newest entry should list first, got %q", ds.Items[0].Title)
	}
}

func TestPutEventUpdatesInPlace(t *testing.T) {
	s := NewMemoryStore()
	id := s.AddEvent(model.Event{Title: "before"})

	s.PutEvent(model.Event{ID: id, Title: "after"})
	ds := s.Dataset()
	if len(ds.Items) != 1 || ds.Items[0].Title != "after" {
		t.Errorf("items = %+v", ds.Items)
	}

	if got := s.PutEvent(model.Event{Title: "new"}); got != 2 {
		t.Errorf("zero-ID put should add, got id %d", got)
	}
}

func TestDeleteEvent(t *testing.T) {
	s := NewMemoryStore()
	id := s.AddEvent(model.Event{Title: "gone"})
	keep := s.AddEvent(model.Event{Title: "kept"})

	s.DeleteEvent(id)
	ds := s.Dataset()
	if len(ds.Items) != 1 || ds.Items[0].ID != keep {
		t.Errorf("items = %+v", ds.Items)
	}
}

func TestDeleteHazardDetachesEvents(t *testing.T) {
	s := NewMemoryStore()
	hid := s.AddHazard("Flooding")
	s.AddEvent(model.Event{Title: "Road closed", HazardID: &hid})

	s.DeleteHazard(hid)
	ds := s.Dataset()
	if len(ds.Hazards) != 0 {
		t.Fatalf("hazards = %+v", ds.Hazards)
	}
	if ds.Items[0].HazardID != nil {
		t.Errorf("event still references deleted hazard")
	}
}

func TestDeleteObjectiveDetachesMitigations(t *testing.T) {
	s := NewMemoryStore()
	oid := s.AddObjective(model.Objective{Title: "Shelter capacity"})
	s.AddEvent(model.Event{
		Title:           "Overcrowding",
		PlanMitigations: []model.Mitigation{{Title: "Open annex", ObjectiveID: &oid}},
	})

	s.DeleteObjective(oid)
	ds := s.Dataset()
	if len(ds.Objectives) != 0 {
		t.Fatalf("objectives = %+v", ds.Objectives)
	}
	if ds.Items[0].PlanMitigations[0].ObjectiveID != nil {
		t.Errorf("mitigation still references deleted objective")
	}
}

func TestUntitledDefaults(t *testing.T) {
	s := NewMemoryStore()
	s.AddHazard("   ")
	s.AddObjective(model.Objective{})

	ds := s.Dataset()
	if ds.Hazards[0].Title != "Untitled Hazard" {
		t.Errorf("hazard title = %q", ds.Hazards[0].Title)
	}
	if ds.Objectives[0].Title != "Untitled Objective" {
		t.Errorf("objective title = %q", ds.Objectives[0].Title)
	}
}

func TestReplaceAllRenumbers(t *testing.T) {
	s := NewMemoryStore()
	s.AddEvent(model.Event{Title: "stale"})

	s.ReplaceAll(model.Dataset{
		Items:   []model.Event{{ID: 40, Title: "a"}, {ID: 7, Title: "b"}},
		Hazards: []model.Hazard{{ID: 99, Title: "h"}},
	})

	ds := s.Dataset()
	if len(ds.Items) != 2 || ds.Items[0].ID != 1 || ds.Items[1].ID != 2 {
		t.Errorf("items not renumbered: %+v", ds.Items)
	}
	if ds.Hazards[0].ID != 1 {
		t.Errorf("hazards not renumbered: %+v", ds.Hazards)
	}

	if id := s.AddEvent(model.Event{Title: "next"}); id != 3 {
		t.Errorf("next id after replace = %d, want 3", id)
	}
}

func TestDatasetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	s.AddEvent(model.Event{Title: "original"})

	ds := s.Dataset()
	ds.Items[0].Title = "mutated"

	if got := s.Dataset().Items[0].Title; got != "original" {
		t.Errorf("store content changed through returned copy: %q", got)
	}
}
