package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/resume-ranker/internal/config"
	apperrors "alfredoptarigan/resume-ranker/internal/errors"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewOpenAIService(config.OpenAIConfig{
		APIKey:     "sk-test",
		BaseURL:    srv.URL,
		Model:      "gpt-4o",
		EmbedModel: "text-embedding-3-small",
	}, 5*time.Second, zaptest.NewLogger(t))
	require.NoError(t, err)
	return svc
}

func TestOpenAICompleteSendsJSONRequest(t *testing.T) {
	var captured map[string]any
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"criteria\":[\"Go\"]}"}}],"usage":{"total_tokens":42}}`))
	})

	out, err := svc.Complete(context.Background(), CompletionRequest{
		Operation:    OperationExtractCriteria,
		SystemPrompt: "system text",
		UserPrompt:   "user text",
		Temperature:  0,
		JSON:         true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"criteria":["Go"]}`, out)

	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, float64(0), captured["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user text", messages[1].(map[string]any)["content"])
}

func TestOpenAICompleteSendsImageParts(t *testing.T) {
	var captured map[string]any
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	_, err := svc.Complete(context.Background(), CompletionRequest{
		UserPrompt: "score this scan",
		Images:     []Image{{MIMEType: "image/png", Data: []byte("png-bytes")}},
	})
	require.NoError(t, err)

	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	parts, ok := messages[0].(map[string]any)["content"].([]any)
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, map[string]any{"type": "text", "text": "score this scan"}, parts[0])
	assert.Equal(t, map[string]any{
		"type":      "image_url",
		"image_url": map[string]any{"url": "data:image/png;base64,cG5nLWJ5dGVz"},
	}, parts[1])
}

func TestOpenAICompleteWithoutSystemPrompt(t *testing.T) {
	var captured map[string]any
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"plain"}}]}`))
	})

	out, err := svc.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
	assert.Len(t, captured["messages"], 1)
	assert.NotContains(t, captured, "response_format")
}

func TestOpenAICompleteStatusError(t *testing.T) {
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	})

	_, err := svc.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusUnauthorized, provErr.StatusCode)
	assert.Equal(t, "Incorrect API key provided", provErr.Message)
	assert.False(t, isRetryableError(err))
}

func TestOpenAICompleteEmptyContent(t *testing.T) {
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	assert.ErrorContains(t, err, "no text content")
}

func TestOpenAIEmbed(t *testing.T) {
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text-embedding-3-small", body["model"])
		assert.Equal(t, "rubric", body["input"])

		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.5,-0.25,1]}]}`))
	})

	vec, err := svc.Embed(context.Background(), "rubric")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25, 1}, vec)
}

func TestNewOpenAIServiceRequiresKey(t *testing.T) {
	_, err := NewOpenAIService(config.OpenAIConfig{}, time.Second, zaptest.NewLogger(t))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))
}
