package model

import (
	"encoding/json"
	"fmt"
)

// Import guards: payloads beyond these counts are rejected before they
// reach the dataset store.
const (
	MaxImportItems   = 10000
	MaxImportHazards = 5000
)

// ErrTooLarge is returned when a decoded payload exceeds the import guards.
var ErrTooLarge = fmt.Errorf("payload exceeds import limits (%d items / %d hazards)", MaxImportItems, MaxImportHazards)

// ParseError indicates malformed JSON or an unusable envelope.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid register file: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Envelope is the versioned wrapper shared by local files and cloud objects.
type Envelope struct {
	Version int     `json:"litlVersion"`
	AppID   string  `json:"appId"`
	Title   string  `json:"title"`
	Data    Dataset `json:"data"`
}

// NewEnvelope wraps a dataset in the current envelope shape.
func NewEnvelope(title string, ds Dataset) *Envelope {
	if title == "" {
		title = DefaultTitle
	}
	ds.Normalize()
	return &Envelope{
		Version: EnvelopeVersion,
		AppID:   AppID,
		Title:   title,
		Data:    ds,
	}
}

// Encode serializes the envelope as indented UTF-8 JSON, the on-disk and
// on-wire format for register files.
func (e *Envelope) Encode() ([]byte, error) {
	e.Data.Normalize()
	b, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to encode register file: %w", err)
	}
	return b, nil
}

// legacyEnvelope is the pre-v1 shape where the arrays were top-level.
type legacyEnvelope struct {
	Title      string      `json:"title"`
	Items      []Event     `json:"items"`
	Hazards    []Hazard    `json:"hazards"`
	Objectives []Objective `json:"objectives"`
}

// Decode parses a register file. It accepts both the current wrapped shape
// and the legacy shape where items/hazards/objectives are top-level,
// defaulting any missing array to empty. Oversized payloads are rejected
// with ErrTooLarge so garbage never reaches the dataset store.
func Decode(data []byte) (*Envelope, error) {
	var probe struct {
		Data *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &ParseError{Err: err}
	}

	var env *Envelope
	if probe.Data != nil {
		env = &Envelope{}
		if err := json.Unmarshal(data, env); err != nil {
			return nil, &ParseError{Err: err}
		}
	} else {
		var legacy legacyEnvelope
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, &ParseError{Err: err}
		}
		env = &Envelope{
			Version: EnvelopeVersion,
			AppID:   AppID,
			Title:   legacy.Title,
			Data: Dataset{
				Items:      legacy.Items,
				Hazards:    legacy.Hazards,
				Objectives: legacy.Objectives,
			},
		}
	}

	env.Data.Normalize()
	if len(env.Data.Items) > MaxImportItems || len(env.Data.Hazards) > MaxImportHazards {
		return nil, ErrTooLarge
	}
	return env, nil
}
