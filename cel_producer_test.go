package secstore

import (
	"errors"
	"strings"
	"testing"
)

func TestCELProducerEvaluatesAgainstSnapshot(t *testing.T) {
	s := New()
	if _, err := s.Write("limits", map[string]any{"daily": 100, "burst": 25}); err != nil {
		t.Fatalf("write: %v", err)
	}

	producer := NewCELProducer("limits.daily + limits.burst",
		CELWithSnapshot(BindStore(s)),
	)
	got, err := producer.Produce()
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if got != int64(125) {
		t.Fatalf("expected 125, got %v (%T)", got, got)
	}
}

func TestCELProducerSeesField(t *testing.T) {
	producer := NewCELProducer(`"env-" + field`)
	got, err := producer.ProduceField("staging")
	if err != nil {
		t.Fatalf("produce field: %v", err)
	}
	if got != "env-staging" {
		t.Fatalf("expected env-staging, got %v", got)
	}
}

func TestCELProducerCallBridge(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	producer := NewCELProducer(`call("upper", field)`,
		CELWithFunctionRegistry(registry),
	)
	got, err := producer.ProduceField("shout")
	if err != nil {
		t.Fatalf("produce field: %v", err)
	}
	if got != "SHOUT" {
		t.Fatalf("expected SHOUT, got %v", got)
	}
}

func TestCELProducerUsesProgramCache(t *testing.T) {
	cache := &mapCache{}
	producer := NewCELProducer("1 + 2", CELWithProgramCache(cache))

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

func TestCELProducerRejectsEmptyExpression(t *testing.T) {
	producer := NewCELProducer("")
	if _, err := producer.Produce(); err == nil {
		t.Fatal("expected an error for an empty expression")
	}
}

func TestCELProducerWrapsEngineErrors(t *testing.T) {
	producer := NewCELProducer("1 +")
	_, err := producer.Produce()
	if err == nil {
		t.Fatal("expected a parse error")
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected *EngineError, got %T: %v", err, err)
	}
	if engineErr.Engine != "cel" {
		t.Fatalf("unexpected engine: %+v", engineErr)
	}
}

func TestCELProducerThroughStoreRead(t *testing.T) {
	s := New()
	if _, err := s.Write("service", map[string]any{"tier": "gold"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	producer := NewCELProducer(`service.tier == "gold" ? "premium" : "standard"`,
		CELWithSnapshot(BindStore(s)),
	)
	if _, err := s.Write("plan", producer); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.Read("plan")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "premium" {
		t.Fatalf("expected premium, got %v", got)
	}
}
