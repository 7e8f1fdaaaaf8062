package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/helixml/autocommit/internal/config"
)

type mockGeminiClient struct {
	calls    atomic.Int32
	generate func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls.Add(1)
	return m.generate(ctx, model, contents, config)
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: genai.FinishReasonStop}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     7,
			CandidatesTokenCount: 3,
			TotalTokenCount:      10,
		},
	}
}

func TestGeminiProvider_ChatCompletion(t *testing.T) {
	var gotModel string
	var gotSystem string
	var gotUser string

	client := &mockGeminiClient{
		generate: func(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel = model
			if config.SystemInstruction != nil {
				gotSystem = config.SystemInstruction.Parts[0].Text
			}
			gotUser = contents[0].Parts[0].Text
			return textResponse("Update ", "README"), nil
		},
	}

	p := NewGeminiProviderWithClient(client, GeminiConfig{})
	resp, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{
		SystemMessage("be brief"),
		UserMessage("diff text"),
	}))
	require.NoError(t, err)

	assert.Equal(t, DefaultGeminiModel, gotModel)
	assert.Equal(t, "be brief", gotSystem)
	assert.Equal(t, "diff text", gotUser)
	assert.Equal(t, "Update README", resp.Content())
	assert.Equal(t, 10, resp.Usage().TotalTokens())
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	client := &mockGeminiClient{
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}

	p := NewGeminiProviderWithClient(client, GeminiConfig{Model: "gemini-test"})
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiProvider_RetriesRateLimit(t *testing.T) {
	client := &mockGeminiClient{}
	client.generate = func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		if client.calls.Load() == 1 {
			return nil, genai.APIError{Code: http.StatusTooManyRequests, Message: "quota", Status: "RESOURCE_EXHAUSTED"}
		}
		return textResponse("ok"), nil
	}

	p := NewGeminiProviderWithClient(client, GeminiConfig{Model: "gemini-test", MaxRetries: 2, InitialDelay: time.Millisecond})
	resp, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content())
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestGeminiProvider_DefaultConfigDoesNotRetry(t *testing.T) {
	client := &mockGeminiClient{
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded", Status: "UNAVAILABLE"}
		},
	}

	endpoint := config.NewEndpoint()
	p := NewGeminiProviderWithClient(client, GeminiConfig{
		Model:         "gemini-test",
		MaxRetries:    endpoint.MaxRetries(),
		InitialDelay:  endpoint.InitialDelay(),
		BackoffFactor: endpoint.BackoffFactor(),
	})
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode())
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestGeminiProvider_ClientErrorIsNotRetried(t *testing.T) {
	client := &mockGeminiClient{
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}
		},
	}

	p := NewGeminiProviderWithClient(client, GeminiConfig{Model: "gemini-test"})
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode())
	assert.Equal(t, "INVALID_ARGUMENT", provErr.Message())
	assert.Equal(t, int32(1), client.calls.Load())
}

func TestGeminiProvider_PlainErrorHasNoStatus(t *testing.T) {
	client := &mockGeminiClient{
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("connection reset")
		},
	}

	p := NewGeminiProviderWithClient(client, GeminiConfig{Model: "gemini-test"})
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, 0, provErr.StatusCode())
	assert.Contains(t, provErr.Error(), "connection reset")
}

func TestGeminiProvider_OverHTTP(t *testing.T) {
	var gotPath string
	var gotKey string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Fix typo in docs"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "secret", BaseURL: srv.URL, Model: "gemini-test"})
	resp, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("the diff")}))
	require.NoError(t, err)

	assert.Equal(t, "Fix typo in docs", resp.Content())
	assert.True(t, strings.HasSuffix(gotPath, "gemini-test:generateContent"), gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Contains(t, gotBody, "the diff")
}

func TestGeminiProvider_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiConfig{APIKey: "bad", BaseURL: srv.URL, Model: "gemini-test"})
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusForbidden, provErr.StatusCode())
	assert.True(t, provErr.IsAuth())
	assert.Equal(t, "API key not valid", provErr.Message())
}
