package llm

import (
	"context"
	"errors"
	"testing"
)

func TestScriptedClientReplaysInOrder(t *testing.T) {
	failure := errors.New("boom")
	c := NewScriptedClient([]string{"first", ""}, []error{nil, failure})

	out, err := c.Generate(context.Background(), "p1", GenerationParams{})
	if err != nil || out != "first" {
		t.Fatalf("call 1: got (%q, %v)", out, err)
	}

	if _, err := c.Generate(context.Background(), "p2", GenerationParams{}); !errors.Is(err, failure) {
		t.Fatalf("call 2: expected scripted error, got %v", err)
	}

	if _, err := c.Generate(context.Background(), "p3", GenerationParams{}); err == nil {
		t.Fatal("exhausted script must error")
	}

	if c.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", c.Calls())
	}
	if len(c.Prompts) != 3 || c.Prompts[0] != "p1" {
		t.Errorf("prompts not recorded: %v", c.Prompts)
	}
}

func TestScriptedClientHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewScriptedClient([]string{"unused"}, nil)
	if _, err := c.Generate(ctx, "p", GenerationParams{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
