package model

import "strings"

const (
	// EnvelopeVersion is the current version of the persisted file format.
	EnvelopeVersion = 1

	// AppID identifies the application family a file belongs to.
	AppID = "crr-v1"

	// DefaultTitle is used when an envelope carries no title of its own.
	DefaultTitle = "Community Risk Register"

	// MIMEType is the content type used for both local and cloud files.
	MIMEType = "application/x-litl"

	// DefaultFileName is suggested when the document has never been named.
	DefaultFileName = "community_risk_register.litl"
)

const fileExt = ".litl"

// ToFileName appends the register file extension for display and storage.
func ToFileName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), fileExt) {
		return name
	}
	return name + fileExt
}

// Mitigation is a planned mitigation attached to an event, optionally
// linked to an objective.
type Mitigation struct {
	Title       string `json:"title"`
	ObjectiveID *int64 `json:"objectiveId,omitempty"`
}

// Event is a single risk-register entry. The ID is a creation-order
// identifier assigned by the dataset store.
type Event struct {
	ID              int64              `json:"id"`
	Title           string             `json:"title"`
	HazardID        *int64             `json:"hazardId,omitempty"`
	Status          string             `json:"status,omitempty"`
	Details         string             `json:"details,omitempty"`
	Likelihood      float64            `json:"likelihood,omitempty"`
	Scores          map[string]float64 `json:"scores,omitempty"`
	PlanMitigations []Mitigation       `json:"planMitigations,omitempty"`
}

// Hazard groups events under a named hazard.
type Hazard struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Objective is a strategic objective mitigations can reference.
type Objective struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Color       string `json:"color,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Dataset is the full logical content of a register document.
type Dataset struct {
	Items      []Event     `json:"items"`
	Hazards    []Hazard    `json:"hazards"`
	Objectives []Objective `json:"objectives"`
}

// Normalize replaces nil slices with empty ones so encoded output always
// carries the three arrays.
func (d *Dataset) Normalize() {
	if d.Items == nil {
		d.Items = []Event{}
	}
	if d.Hazards == nil {
		d.Hazards = []Hazard{}
	}
	if d.Objectives == nil {
		d.Objectives = []Objective{}
	}
}
