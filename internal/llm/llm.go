package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
)

// Operation names label metrics, spans and log lines for model calls.
const (
	OperationExtractCriteria = "extract_criteria"
	OperationScoreResume     = "score_resume"
	OperationSuggest         = "suggest_improvements"
	OperationEmbed           = "embed"
)

type CompletionRequest struct {
	Operation    string
	SystemPrompt string
	UserPrompt   string
	// Images are sent after the user prompt as vision input.
	Images      []Image
	Temperature float32
	// JSON asks the provider to constrain the reply to a JSON object.
	JSON bool
}

// Image is inline image data such as a scanned page.
type Image struct {
	MIMEType string
	Data     []byte
}

// LLMService is a hosted language model that answers prompts with text.
type LLMService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// ProviderError is a non-2xx answer from a model API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// NewService builds the configured provider wrapped in the resilience layer.
func NewService(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (LLMService, error) {
	var (
		provider LLMService
		err      error
	)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider, err = NewOpenAIService(cfg.OpenAI, cfg.Timeout, logger)
	case config.ProviderGemini:
		provider, err = NewGeminiService(ctx, cfg.Gemini, cfg.Timeout, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewResilientService(provider, ResilienceOptions{
		MaxRetries:        cfg.MaxRetries,
		RetryBaseDelay:    cfg.RetryBaseDelay,
		RequestsPerMinute: cfg.RequestsPerMinute,
		Breaker:           cfg.Breaker,
	}, logger), nil
}
