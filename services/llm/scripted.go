package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedClient replays canned responses in order and records every
// prompt it receives. Test helper; not for production wiring.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int

	// Prompts holds every prompt passed to Generate, in call order.
	Prompts []string
}

// NewScriptedClient creates a client that returns responses[i] or
// errs[i] for the i-th call. A nil entry in errs means success; calls
// past the end of the script fail.
func NewScriptedClient(responses []string, errs []error) *ScriptedClient {
	return &ScriptedClient{responses: responses, errs: errs}
}

// Generate implements the LLMClient interface
func (s *ScriptedClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	i := s.calls
	s.calls++

	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", fmt.Errorf("scripted client exhausted after %d calls", len(s.responses))
}

// Calls reports how many times Generate ran.
func (s *ScriptedClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
