package secstore

import (
	json "github.com/goccy/go-json"
)

const (
	traceSourceTag     = "tag"
	traceSourceDefault = "default"
)

// AccessTrace captures the permission provenance recorded while resolving a
// path.
type AccessTrace struct {
	Path       string      `json:"path"`
	Permission Permission  `json:"permission"`
	Allowed    bool        `json:"allowed"`
	Steps      []TraceStep `json:"steps"`
}

// TraceStep details how one walked field contributed to the resolution:
// which permission was in force there and whether it came from a registry
// tag or the default-policy fallback. Stepped reports whether the walk
// advanced past the field; when it did not, the recorded permission is the
// one that stays in force for the whole path.
type TraceStep struct {
	Field      string     `json:"field,omitempty"`
	Permission Permission `json:"permission"`
	Source     string     `json:"source"`
	Stepped    bool       `json:"stepped"`
}

// ToJSON serialises the trace for logging or transport helpers.
func (t AccessTrace) ToJSON() ([]byte, error) {
	type alias AccessTrace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously generated via ToJSON.
func TraceFromJSON(payload []byte) (AccessTrace, error) {
	type alias AccessTrace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return AccessTrace{}, err
	}
	return AccessTrace(trace), nil
}
