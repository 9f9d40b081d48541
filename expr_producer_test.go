package secstore

import (
	"errors"
	"strings"
	"testing"
)

type mapCache struct {
	entries map[string]any
	hits    int
}

func (c *mapCache) Get(key string) (any, bool) {
	value, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *mapCache) Set(key string, value any) {
	if c.entries == nil {
		c.entries = map[string]any{}
	}
	c.entries[key] = value
}

func TestExprProducerEvaluatesAgainstSnapshot(t *testing.T) {
	s := New()
	if _, err := s.Write("limits", map[string]any{"daily": 100, "burst": 25}); err != nil {
		t.Fatalf("write: %v", err)
	}

	producer := NewExprProducer("limits.daily + limits.burst",
		ExprWithSnapshot(BindStore(s)),
	)
	got, err := producer.Produce()
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if got != 125 {
		t.Fatalf("expected 125, got %v", got)
	}
}

func TestExprProducerSeesFieldAndArgs(t *testing.T) {
	producer := NewExprProducer(`args.prefix + field`,
		ExprWithArgs(map[string]any{"prefix": "env-"}),
	)
	got, err := producer.ProduceField("staging")
	if err != nil {
		t.Fatalf("produce field: %v", err)
	}
	if got != "env-staging" {
		t.Fatalf("expected env-staging, got %v", got)
	}
}

func TestExprProducerCallsRegisteredFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	producer := NewExprProducer(`upper(field)`,
		ExprWithFunctionRegistry(registry),
	)
	got, err := producer.ProduceField("shout")
	if err != nil {
		t.Fatalf("produce field: %v", err)
	}
	if got != "SHOUT" {
		t.Fatalf("expected SHOUT, got %v", got)
	}
}

func TestExprProducerUsesProgramCache(t *testing.T) {
	cache := &mapCache{}
	producer := NewExprProducer("1 + 2", ExprWithProgramCache(cache))

	for range 2 {
		got, err := producer.Produce()
		if err != nil {
			t.Fatalf("produce: %v", err)
		}
		if got != 3 {
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

func TestExprProducerRejectsEmptyExpression(t *testing.T) {
	producer := NewExprProducer("")
	if _, err := producer.Produce(); err == nil {
		t.Fatal("expected an error for an empty expression")
	}
}

func TestExprProducerWrapsEngineErrors(t *testing.T) {
	producer := NewExprProducer("nope(", ExprWithProgramCache(&mapCache{}))
	_, err := producer.ProduceField("x")
	if err == nil {
		t.Fatal("expected a compile error")
	}
	var engineErr *EngineError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected *EngineError, got %T: %v", err, err)
	}
	if engineErr.Engine != "expr" || engineErr.Expression != "nope(" {
		t.Fatalf("unexpected engine error: %+v", engineErr)
	}
}

func TestExprProducerThroughStoreRead(t *testing.T) {
	s := New()
	if _, err := s.Write("limits", map[string]any{"daily": 100}); err != nil {
		t.Fatalf("write: %v", err)
	}
	producer := NewExprProducer("limits.daily * 2", ExprWithSnapshot(BindStore(s)))
	if _, err := s.Write("doubled", producer); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.Read("doubled")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != 200 {
		t.Fatalf("expected 200, got %v", got)
	}
}
