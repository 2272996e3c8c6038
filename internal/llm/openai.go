package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	apperrors "alfredoptarigan/resume-ranker/internal/errors"
)

const providerOpenAI = "openai"

type openAIService struct {
	client     *resty.Client
	model      string
	embedModel string
	logger     *zap.Logger
}

// NewOpenAIService talks to the chat completions and embeddings endpoints of
// an OpenAI compatible API rooted at cfg.BaseURL.
func NewOpenAIService(cfg config.OpenAIConfig, timeout time.Duration, logger *zap.Logger) (LLMService, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey, "OpenAI API key is required", nil)
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &openAIService{
		client:     client,
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
		logger:     logger.With(zap.String("provider", providerOpenAI)),
	}, nil
}

func (o *openAIService) Name() string {
	return providerOpenAI
}

// Complete implements LLMService.
func (o *openAIService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]map[string]any, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]any{"role": "user", "content": userContent(req)})

	body := map[string]any{
		"model":       o.model,
		"temperature": req.Temperature,
		"messages":    messages,
	}
	if req.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.IsError() {
		return "", o.providerError(resp)
	}

	o.logger.Debug("📊 Chat completion received",
		zap.String("operation", req.Operation),
		zap.Int64("total_tokens", gjson.GetBytes(resp.Body(), "usage.total_tokens").Int()))

	text := gjson.GetBytes(resp.Body(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no text content in chat completion response")
	}
	return text, nil
}

// Embed implements LLMService.
func (o *openAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": o.embedModel,
			"input": text,
		}).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		return nil, o.providerError(resp)
	}

	values := gjson.GetBytes(resp.Body(), "data.0.embedding").Array()
	if len(values) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	embedding := make([]float32, len(values))
	for i, v := range values {
		embedding[i] = float32(v.Float())
	}
	return embedding, nil
}

// userContent is the plain prompt, or text and image_url parts when the
// request carries images.
func userContent(req CompletionRequest) any {
	if len(req.Images) == 0 {
		return req.UserPrompt
	}

	parts := make([]map[string]any, 0, len(req.Images)+1)
	parts = append(parts, map[string]any{"type": "text", "text": req.UserPrompt})
	for _, img := range req.Images {
		parts = append(parts, map[string]any{
			"type": "image_url",
			"image_url": map[string]string{
				"url": "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	return parts
}

func (o *openAIService) providerError(resp *resty.Response) error {
	msg := gjson.GetBytes(resp.Body(), "error.message").String()
	if msg == "" {
		msg = resp.Status()
	}
	return &ProviderError{
		Provider:   providerOpenAI,
		StatusCode: resp.StatusCode(),
		Message:    msg,
	}
}
