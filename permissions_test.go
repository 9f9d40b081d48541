package secstore

import (
	"errors"
	"testing"

	"github.com/goliatone/go-secstore/tagging"
)

func TestParsePermission(t *testing.T) {
	cases := []struct {
		label string
		want  Permission
		ok    bool
	}{
		{label: "r", want: PermissionRead, ok: true},
		{label: "w", want: PermissionWrite, ok: true},
		{label: "rw", want: PermissionReadWrite, ok: true},
		{label: "none", want: PermissionNone, ok: true},
		{label: "", ok: false},
		{label: "admin", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParsePermission(tc.label)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParsePermission(%q) = (%q, %v), want (%q, %v)", tc.label, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPermissionCapabilities(t *testing.T) {
	if !PermissionRead.CanRead() || PermissionRead.CanWrite() {
		t.Fatal("r should read only")
	}
	if PermissionWrite.CanRead() || !PermissionWrite.CanWrite() {
		t.Fatal("w should write only")
	}
	if !PermissionReadWrite.CanRead() || !PermissionReadWrite.CanWrite() {
		t.Fatal("rw should allow both")
	}
	if PermissionNone.CanRead() || PermissionNone.CanWrite() {
		t.Fatal("none should deny both")
	}
}

func TestTagOverridesDefaultPolicy(t *testing.T) {
	s := New(WithDefaultPolicy(PermissionNone), WithField("open", 1))
	s.Tag("open", PermissionRead)

	if !s.AllowedToRead("open") {
		t.Fatal("tag should override the default policy")
	}
	if s.AllowedToWrite("open") {
		t.Fatal("r tag must not admit writes")
	}
	if s.AllowedToRead("other") {
		t.Fatal("untagged field should fall back to the none policy")
	}
}

func TestInvalidTagLabelFallsBackToPolicy(t *testing.T) {
	s := New(WithDefaultPolicy(PermissionRead), WithField("x", 1))
	s.registry.Tag(s.id, "x", "admin")
	if got := s.PermissionFor("x"); got != PermissionRead {
		t.Fatalf("unknown label should fall back to the policy, got %q", got)
	}
}

func TestNestedResolutionUsesChildTags(t *testing.T) {
	s := New(WithFields(map[string]any{
		"service": map[string]any{"token": "hunter2", "name": "billing"},
	}))
	child := s.fields["service"].(*Store)
	child.Tag("token", PermissionNone)

	if s.AllowedToRead("service:token") {
		t.Fatal("child tag should deny the nested read")
	}
	if !s.AllowedToRead("service:name") {
		t.Fatal("untagged sibling should stay readable")
	}
}

func TestNestedFallbackUsesReceiverPolicy(t *testing.T) {
	// The fallback at every step is the root's own policy, not the policy of
	// the node being stepped through.
	registry := tagging.NewRegistry()
	child := New(WithRegistry(registry), WithDefaultPolicy(PermissionNone), WithField("inner", 1))
	s := New(WithRegistry(registry), WithDefaultPolicy(PermissionReadWrite))
	s.set("child", child)

	if !s.AllowedToRead("child:inner") {
		t.Fatal("untagged nested field should fall back to the receiver policy")
	}
	if child.AllowedToRead("inner") {
		t.Fatal("direct read on the child should use its own none policy")
	}
}

func TestStalePermissionSurvivesMissingIntermediate(t *testing.T) {
	// When the walk dies early on a missing or falsy intermediate, the last
	// candidate resolved stays in force for the whole path.
	s := New(WithDefaultPolicy(PermissionNone), WithFields(map[string]any{
		"a": map[string]any{"b": 0},
	}))
	child := s.fields["a"].(*Store)
	child.Tag("b", PermissionRead)

	// a:b:c addresses past b, but b is numeric zero so the walk stops there
	// and b's tag answers for the full path.
	if got := s.PermissionFor("a:b:c"); got != PermissionRead {
		t.Fatalf("expected the stale candidate r, got %q", got)
	}
	value, err := s.Read("a:b:c")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if value != nil {
		t.Fatalf("expected nil for the unreachable leaf, got %v", value)
	}
}

func TestMissingFirstSegmentResolvesOnReceiver(t *testing.T) {
	s := New(WithDefaultPolicy(PermissionRead))
	if got := s.PermissionFor("ghost:deep:leaf"); got != PermissionRead {
		t.Fatalf("expected receiver fallback r, got %q", got)
	}
}

func TestEmptyPathResolvesToPolicy(t *testing.T) {
	s := New(WithDefaultPolicy(PermissionWrite))
	if got := s.PermissionFor(""); got != PermissionWrite {
		t.Fatalf("expected the node policy, got %q", got)
	}
}

func TestProducerFirstSegmentResolvesOnReceiver(t *testing.T) {
	s := New()
	if _, err := s.Write("gen", FieldProducerFunc(func(field string) (any, error) {
		return field, nil
	})); err != nil {
		t.Fatalf("write: %v", err)
	}
	s.Tag("gen", PermissionRead)

	// The whole virtual namespace under the producer answers with the
	// producer field's own permission.
	if got := s.PermissionFor("gen:anything:below"); got != PermissionRead {
		t.Fatalf("expected r, got %q", got)
	}
}

func TestTagAtCreatesIntermediates(t *testing.T) {
	s := New()
	if err := s.TagAt("service:secrets", PermissionNone); err != nil {
		t.Fatalf("tag at: %v", err)
	}
	child, ok := s.fields["service"].(*Store)
	if !ok {
		t.Fatalf("expected tagging to create the intermediate store, got %T", s.fields["service"])
	}
	if p, ok := child.TagOf("secrets"); !ok || p != PermissionNone {
		t.Fatalf("expected none tag on the child, got (%q, %v)", p, ok)
	}
	if _, err := s.Write("service:secrets", "x"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestTagAtRejectsEmptyLeafSegment(t *testing.T) {
	s := New()
	for _, path := range []string{":", "a:"} {
		if err := s.TagAt(path, PermissionRead); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("TagAt(%q) error = %v, want ErrInvalidPath", path, err)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("rejected tags must not create intermediates, got %v", s.Fields())
	}
}

func TestTruthyWalkGuard(t *testing.T) {
	cases := []struct {
		value any
		want  bool
	}{
		{value: nil, want: false},
		{value: false, want: false},
		{value: true, want: true},
		{value: "", want: false},
		{value: "x", want: true},
		{value: 0, want: false},
		{value: 0.0, want: false},
		{value: 7, want: true},
		{value: map[string]any{}, want: true},
		{value: []any{}, want: true},
	}
	for _, tc := range cases {
		if got := truthy(tc.value); got != tc.want {
			t.Fatalf("truthy(%#v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
