package normalize

import "testing"

func TestValueConvertsInterfaceKeyedMaps(t *testing.T) {
	src := map[any]any{
		"a": map[any]any{"b": 1},
		2:   "two",
	}
	got, ok := Value(src).(map[string]any)
	if !ok {
		t.Fatalf("expected a string-keyed map, got %T", Value(src))
	}
	nested, ok := got["a"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested conversion, got %T", got["a"])
	}
	if nested["b"] != 1 {
		t.Fatalf("expected b=1, got %v", nested["b"])
	}
	if got["2"] != "two" {
		t.Fatalf("expected stringified key, got %v", got["2"])
	}
}

func TestValueWalksSlices(t *testing.T) {
	src := []any{map[any]any{"a": 1}, "x"}
	got := Value(src).([]any)
	if _, ok := got[0].(map[string]any); !ok {
		t.Fatalf("expected slice elements normalised, got %T", got[0])
	}
	if got[1] != "x" {
		t.Fatalf("expected x, got %v", got[1])
	}
}

func TestValueScalarsPassThrough(t *testing.T) {
	if Value(42) != 42 || Value("x") != "x" || Value(nil) != nil {
		t.Fatal("scalars must pass through unchanged")
	}
}

func TestMapFromStruct(t *testing.T) {
	payload := struct {
		Name string `json:"name"`
		Port int    `json:"port"`
	}{Name: "billing", Port: 8080}

	got, err := Map(payload)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if got["name"] != "billing" {
		t.Fatalf("expected billing, got %v", got["name"])
	}
	if got["port"] != float64(8080) {
		t.Fatalf("expected 8080, got %v (%T)", got["port"], got["port"])
	}
}

func TestMapRejectsNil(t *testing.T) {
	if _, err := Map(nil); err == nil {
		t.Fatal("expected an error for nil payload")
	}
}

func TestMapPassesMapsThrough(t *testing.T) {
	got, err := Map(map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if got["a"] != 1 {
		t.Fatalf("expected a=1, got %v", got["a"])
	}
}
