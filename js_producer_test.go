//go:build js_eval

package secstore

import (
	"strings"
	"testing"
)

func TestJSProducerEvaluatesAgainstSnapshot(t *testing.T) {
	s := New()
	if _, err := s.Write("limits", map[string]any{"daily": 100, "burst": 25}); err != nil {
		t.Fatalf("write: %v", err)
	}

	producer := NewJSProducer("limits.daily + limits.burst",
		JSWithSnapshot(BindStore(s)),
	)
	got, err := producer.Produce()
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if got != int64(125) {
		t.Fatalf("expected 125, got %v (%T)", got, got)
	}
}

func TestJSProducerSeesField(t *testing.T) {
	producer := NewJSProducer(`"env-" + field`)
	got, err := producer.ProduceField("staging")
	if err != nil {
		t.Fatalf("produce field: %v", err)
	}
	if got != "env-staging" {
		t.Fatalf("expected env-staging, got %v", got)
	}
}

func TestJSProducerCallsRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	producer := NewJSProducer(`upper(field)`, JSWithFunctionRegistry(registry))
	got, err := producer.ProduceField("shout")
	if err != nil {
		t.Fatalf("produce field: %v", err)
	}
	if got != "SHOUT" {
		t.Fatalf("expected SHOUT, got %v", got)
	}
}

func TestJSProducerUsesProgramCache(t *testing.T) {
	cache := &mapCache{}
	producer := NewJSProducer("1 + 2", JSWithProgramCache(cache))

	for range 2 {
		got, err := producer.Produce()
		if err != nil {
			t.Fatalf("produce: %v", err)
		}
		if got != int64(3) {
			t.Fatalf("expected 3, got %v", got)
		}
	}
	if _, ok := cache.entries["1 + 2"]; !ok {
		t.Fatal("expected the compiled program to be cached")
	}
	if cache.hits == 0 {
		t.Fatal("expected the second produce to hit the cache")
	}
}

func TestJSProducerRejectsEmptyExpression(t *testing.T) {
	producer := NewJSProducer("")
	if _, err := producer.Produce(); err == nil {
		t.Fatal("expected an error for an empty expression")
	}
}

func TestJSProducerAvailable(t *testing.T) {
	if !jsProducerAvailable() {
		t.Fatal("expected the js engine under the js_eval tag")
	}
}
