package model

import (
	"encoding/json"
	"sort"
)

// Snapshot produces the canonical serialized form of a dataset used for
// dirty-state comparison. Entries are sorted by their creation-order ID so
// reordering in memory does not change the snapshot. The result is compared
// by value only and never persisted.
func Snapshot(ds Dataset) string {
	ds.Normalize()

	items := append([]Event(nil), ds.Items...)
	hazards := append([]Hazard(nil), ds.Hazards...)
	objectives := append([]Objective(nil), ds.Objectives...)

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	sort.Slice(hazards, func(i, j int) bool { return hazards[i].ID < hazards[j].ID })
	sort.Slice(objectives, func(i, j int) bool { return objectives[i].ID < objectives[j].ID })

	b, err := json.Marshal(Dataset{Items: items, Hazards: hazards, Objectives: objectives})
	if err != nil {
		// Dataset contains only JSON-encodable fields; treat failure as an
		// always-dirty sentinel rather than panicking in the UI path.
		return ""
	}
	return string(b)
}
