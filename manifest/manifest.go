// Package manifest declares store contents and per-field permissions in a
// document that can live next to the application's configuration: values and
// tags are written down once and applied to a store at startup.
package manifest

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	secstore "github.com/goliatone/go-secstore"
	"github.com/goliatone/go-secstore/internal/normalize"
)

var (
	// ErrInvalidPermission indicates a manifest carries an unrecognised
	// permission label.
	ErrInvalidPermission = errors.New("manifest: invalid permission")
	// ErrAmbiguousField indicates a field declares more than one source
	// (value, expression, nested fields).
	ErrAmbiguousField = errors.New("manifest: ambiguous field declaration")
)

// Manifest declares seed values and permission tags for one store.
type Manifest struct {
	DefaultPolicy string           `yaml:"default_policy,omitempty" json:"default_policy,omitempty"`
	Fields        map[string]Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Field declares one field: a literal value, an expression-backed producer
// (expr-lang or CEL), or a nested block — plus an optional permission tag.
// Exactly one of Value, Expr, CEL and Fields may be set; a bare Permission
// tags the field without writing it.
type Field struct {
	Value      any              `yaml:"value,omitempty" json:"value,omitempty"`
	Expr       string           `yaml:"expr,omitempty" json:"expr,omitempty"`
	CEL        string           `yaml:"cel,omitempty" json:"cel,omitempty"`
	Fields     map[string]Field `yaml:"fields,omitempty" json:"fields,omitempty"`
	Permission string           `yaml:"permission,omitempty" json:"permission,omitempty"`
}

// DecodeYAML parses a YAML manifest.
func DecodeYAML(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decode yaml: %w", err)
	}
	m.normalizeValues()
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// DecodeJSON parses a JSON manifest.
func DecodeJSON(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decode json: %w", err)
	}
	m.normalizeValues()
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks permission labels and field declarations recursively.
func (m Manifest) Validate() error {
	if m.DefaultPolicy != "" {
		if _, ok := secstore.ParsePermission(m.DefaultPolicy); !ok {
			return fmt.Errorf("%w: default policy %q", ErrInvalidPermission, m.DefaultPolicy)
		}
	}
	return validateFields(m.Fields, "")
}

func validateFields(fields map[string]Field, prefix string) error {
	for _, name := range sortedNames(fields) {
		field := fields[name]
		path := joinPath(prefix, name)
		if field.Permission != "" {
			if _, ok := secstore.ParsePermission(field.Permission); !ok {
				return fmt.Errorf("%w: %q at %q", ErrInvalidPermission, field.Permission, path)
			}
		}
		sources := 0
		if field.Value != nil {
			sources++
		}
		if field.Expr != "" {
			sources++
		}
		if field.CEL != "" {
			sources++
		}
		if len(field.Fields) > 0 {
			sources++
		}
		if sources > 1 {
			return fmt.Errorf("%w: %q", ErrAmbiguousField, path)
		}
		if len(field.Fields) > 0 {
			if err := validateFields(field.Fields, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply writes the manifest onto store through the public write contract,
// then records the declared permission tags. Values are written in sorted
// field order; the first failing write stops application.
func (m Manifest) Apply(store *secstore.Store) error {
	if store == nil {
		return fmt.Errorf("manifest: store is required")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if m.DefaultPolicy != "" {
		if p, ok := secstore.ParsePermission(m.DefaultPolicy); ok {
			store.SetDefaultPolicy(p)
		}
	}
	return applyFields(store, m.Fields, "")
}

func applyFields(store *secstore.Store, fields map[string]Field, prefix string) error {
	for _, name := range sortedNames(fields) {
		field := fields[name]
		path := joinPath(prefix, name)

		switch {
		case field.Expr != "":
			producer := secstore.NewExprProducer(field.Expr,
				secstore.ExprWithSnapshot(secstore.BindStore(store)),
				secstore.ExprWithProgramCache(store.Programs()),
				secstore.ExprWithFunctionRegistry(store.Functions()),
			)
			if _, err := store.Write(path, producer); err != nil {
				return fmt.Errorf("manifest: apply %q: %w", path, err)
			}
		case field.CEL != "":
			producer := secstore.NewCELProducer(field.CEL,
				secstore.CELWithSnapshot(secstore.BindStore(store)),
				secstore.CELWithProgramCache(store.Programs()),
				secstore.CELWithFunctionRegistry(store.Functions()),
			)
			if _, err := store.Write(path, producer); err != nil {
				return fmt.Errorf("manifest: apply %q: %w", path, err)
			}
		case len(field.Fields) > 0:
			if err := applyFields(store, field.Fields, path); err != nil {
				return err
			}
		case field.Value != nil:
			if _, err := store.Write(path, normalize.Value(field.Value)); err != nil {
				return fmt.Errorf("manifest: apply %q: %w", path, err)
			}
		}

		if field.Permission != "" {
			p, _ := secstore.ParsePermission(field.Permission)
			if err := store.TagAt(path, p); err != nil {
				return fmt.Errorf("manifest: tag %q: %w", path, err)
			}
		}
	}
	return nil
}

func (m *Manifest) normalizeValues() {
	normalizeFieldValues(m.Fields)
}

func normalizeFieldValues(fields map[string]Field) {
	for name, field := range fields {
		if field.Value != nil {
			field.Value = normalize.Value(field.Value)
		}
		if len(field.Fields) > 0 {
			normalizeFieldValues(field.Fields)
		}
		fields[name] = field
	}
}

func sortedNames(fields map[string]Field) []string {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return secstore.JoinPath(prefix, name)
}
