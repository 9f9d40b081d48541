// Package normalize converts decoded YAML payloads and arbitrary structs
// into the JSON-shaped values the store works with.
package normalize

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Value normalises v recursively: interface-keyed maps become string-keyed,
// and map/slice elements are normalised in place. Scalars pass through.
func Value(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = Value(value)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprintf("%v", key)] = Value(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = Value(value)
		}
		return out
	default:
		return v
	}
}

// Map converts an arbitrary payload (typically a struct) into a JSON-shaped
// map via a marshal round trip.
func Map(payload any) (map[string]any, error) {
	if payload == nil {
		return nil, fmt.Errorf("normalize: payload is nil")
	}
	if m, ok := payload.(map[string]any); ok {
		return Value(m).(map[string]any), nil
	}
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("normalize: marshal payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, fmt.Errorf("normalize: decode payload: %w", err)
	}
	return out, nil
}
