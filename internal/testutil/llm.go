package testutil

import (
	"context"
	"sync"

	"alfredoptarigan/resume-ranker/internal/llm"
)

// StubLLM is an llm.LLMService whose answers come from CompleteFunc.
type StubLLM struct {
	CompleteFunc func(ctx context.Context, req llm.CompletionRequest) (string, error)
	EmbedFunc    func(ctx context.Context, text string) ([]float32, error)

	mu       sync.Mutex
	requests []llm.CompletionRequest
}

func (s *StubLLM) Name() string { return "stub" }

func (s *StubLLM) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.CompleteFunc == nil {
		return "{}", nil
	}
	return s.CompleteFunc(ctx, req)
}

func (s *StubLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.EmbedFunc == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return s.EmbedFunc(ctx, text)
}

// Requests returns a copy of every completion request received so far.
func (s *StubLLM) Requests() []llm.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.CompletionRequest, len(s.requests))
	copy(out, s.requests)
	return out
}
