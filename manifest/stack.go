package manifest

import (
	"errors"
	"fmt"
	"sort"

	secstore "github.com/goliatone/go-secstore"
)

var (
	// ErrLayerNameRequired indicates a missing layer name.
	ErrLayerNameRequired = errors.New("manifest: layer name must be provided")
	// ErrDuplicateLayerName indicates Stack construction received multiple
	// layers with the same name.
	ErrDuplicateLayerName = errors.New("manifest: layer names must be unique")
	// ErrPriorityOrder indicates Stack construction detected duplicate
	// priorities.
	ErrPriorityOrder = errors.New("manifest: priorities must be strictly ordered")
)

// Layer pairs a named precedence bucket (system, tenant, user, etc.) with
// the manifest captured for it. Higher priority values represent stronger
// layers.
type Layer struct {
	Name     string
	Label    string
	Priority int
	Manifest Manifest
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithLayerLabel sets a human-friendly label on the layer.
func WithLayerLabel(label string) LayerOption {
	return func(layer *Layer) {
		layer.Label = label
	}
}

// NewLayer constructs a Layer.
func NewLayer(name string, priority int, m Manifest, opts ...LayerOption) Layer {
	layer := Layer{
		Name:     name,
		Priority: priority,
		Manifest: m,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&layer)
	}
	return layer
}

// Stack represents an immutable, priority-ordered set of manifest layers,
// strongest first.
type Stack struct {
	layers []Layer
}

// NewStack validates and sorts the supplied layers so that the strongest
// layer (highest priority) is first.
func NewStack(layers ...Layer) (*Stack, error) {
	if len(layers) == 0 {
		return &Stack{}, nil
	}

	seenNames := make(map[string]struct{}, len(layers))
	copied := make([]Layer, len(layers))
	for i, layer := range layers {
		if layer.Name == "" {
			return nil, ErrLayerNameRequired
		}
		if _, ok := seenNames[layer.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLayerName, layer.Name)
		}
		seenNames[layer.Name] = struct{}{}
		copied[i] = layer
	}

	sort.Slice(copied, func(i, j int) bool {
		if copied[i].Priority == copied[j].Priority {
			return copied[i].Name < copied[j].Name
		}
		return copied[i].Priority > copied[j].Priority
	})

	for i := 1; i < len(copied); i++ {
		if copied[i-1].Priority <= copied[i].Priority {
			return nil, fmt.Errorf("%w: %d", ErrPriorityOrder, copied[i].Priority)
		}
	}

	return &Stack{layers: copied}, nil
}

// Layers returns a copy of the underlying layers, strongest first.
func (s *Stack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Len returns the number of layers in the stack.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Apply writes the layers onto store weakest first, so stronger layers
// override weaker ones field by field while untouched siblings survive
// (merge-write semantics). Validation errors abort before anything is
// written; a failing write stops the remaining layers but does not undo
// earlier ones.
func (s *Stack) Apply(store *secstore.Store) error {
	if s == nil || len(s.layers) == 0 {
		return fmt.Errorf("manifest: stack must include at least one layer")
	}
	for _, layer := range s.layers {
		if err := layer.Manifest.Validate(); err != nil {
			return fmt.Errorf("manifest: layer %q: %w", layer.Name, err)
		}
	}
	for i := len(s.layers) - 1; i >= 0; i-- {
		layer := s.layers[i]
		if err := layer.Manifest.Apply(store); err != nil {
			return fmt.Errorf("manifest: layer %q: %w", layer.Name, err)
		}
	}
	return nil
}
