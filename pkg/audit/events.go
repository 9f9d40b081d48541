package audit

import (
	"strings"
	"time"
)

// Verbs emitted by the store for access events.
const (
	VerbRead   = "secstore.read"
	VerbWrite  = "secstore.write"
	VerbDenied = "secstore.denied"
)

// EventInput describes the common fields for store access events.
type EventInput struct {
	ActorID    string
	StoreID    string
	Path       string
	Permission string
	Op         string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildReadEvent constructs a normalized event for a served read. The store
// never emits this verb itself — plain reads stay quiet — so read events only
// appear when a host builds and dispatches them explicitly.
func BuildReadEvent(input EventInput) Event {
	return buildAccessEvent(VerbRead, input)
}

// BuildWriteEvent constructs a normalized event for an applied write.
func BuildWriteEvent(input EventInput) Event {
	return buildAccessEvent(VerbWrite, input)
}

// BuildDeniedEvent constructs a normalized event for a denied operation. The
// denied operation name travels in the metadata under "op".
func BuildDeniedEvent(input EventInput) Event {
	return buildAccessEvent(VerbDenied, input)
}

func buildAccessEvent(verb string, input EventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Op != "" {
		metadata = ensureMetadata(metadata)
		metadata["op"] = input.Op
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		StoreID:    strings.TrimSpace(input.StoreID),
		Path:       strings.TrimSpace(input.Path),
		Permission: strings.TrimSpace(input.Permission),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
