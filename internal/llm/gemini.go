package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-ranker/internal/config"
	apperrors "alfredoptarigan/resume-ranker/internal/errors"
)

const (
	providerGemini = "gemini"

	// text-embedding-004 accepts roughly 10k tokens
	maxEmbedChars = 40000
)

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	timeout    time.Duration
	logger     *zap.Logger
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, timeout time.Duration, logger *zap.Logger) (LLMService, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey, "Gemini API key is required", nil)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  cfg.Model,
		embedModel: cfg.EmbedModel,
		timeout:    timeout,
		logger:     logger.With(zap.String("provider", providerGemini)),
	}, nil
}

func (g *geminiService) Name() string {
	return providerGemini
}

// Embed implements LLMService.
func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbedChars {
		text = text[:maxEmbedChars]
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, g.wrapError("failed to generate embedding", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Complete implements LLMService.
func (g *geminiService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	temperature := req.Temperature
	genCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	parts := []*genai.Part{genai.NewPartFromText(req.UserPrompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, genCfg)
	if err != nil {
		return "", g.wrapError("failed to generate text", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		if len(resp.Candidates) > 0 {
			g.logger.Warn("⚠️ Gemini candidate carried no text",
				zap.String("operation", req.Operation),
				zap.String("finish_reason", string(resp.Candidates[0].FinishReason)))
		}
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

func (g *geminiService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// wrapError converts API status errors to ProviderError so the retry policy
// can classify them.
func (g *geminiService) wrapError(msg string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", msg, &ProviderError{
			Provider:   providerGemini,
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
		})
	}
	return fmt.Errorf("%s: %w", msg, err)
}
