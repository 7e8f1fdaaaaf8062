package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-1.5-flash-latest"

// GeminiClient is the subset of the genai SDK used by GeminiProvider.
type GeminiClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// sdkGeminiClient adapts *genai.Client to GeminiClient.
type sdkGeminiClient struct {
	client *genai.Client
}

func (c sdkGeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
	Transport     http.RoundTripper
}

// GeminiProvider generates text with the Gemini API. The SDK client is
// created on first use so that a missing key does not fail startup.
type GeminiProvider struct {
	cfg    GeminiConfig
	model  string
	retry  retryPolicy
	mu     sync.Mutex
	client GeminiClient
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	p := &GeminiProvider{cfg: cfg, model: model}
	p.retry = newRetryPolicy(isRetryableGemini)
	applyRetryConfig(&p.retry, cfg.MaxRetries, cfg.InitialDelay, cfg.BackoffFactor)
	return p
}

// NewGeminiProviderWithClient creates a provider around an existing client.
// Only the model and retry fields of cfg are used.
func NewGeminiProviderWithClient(client GeminiClient, cfg GeminiConfig) *GeminiProvider {
	p := NewGeminiProvider(cfg)
	p.client = client
	return p
}

// Model returns the configured model.
func (p *GeminiProvider) Model() string { return p.model }

// Close is a no-op for the Gemini provider.
func (p *GeminiProvider) Close() error { return nil }

// ChatCompletion sends the messages as a single generateContent call. System
// messages become the system instruction; the rest are sent as user content.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	client, err := p.sdk(ctx)
	if err != nil {
		return ChatCompletionResponse{}, NewProviderError("generate_content", 0, "create gemini client", err)
	}

	var contents []*genai.Content
	config := &genai.GenerateContentConfig{}
	for _, m := range req.Messages() {
		if m.Role() == "system" {
			config.SystemInstruction = genai.NewContentFromText(m.Content(), genai.RoleUser)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content(), genai.RoleUser))
	}
	if req.MaxTokens() > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens())
	}
	if req.Temperature() > 0 {
		t := float32(req.Temperature())
		config.Temperature = &t
	}

	var resp *genai.GenerateContentResponse
	err = p.retry.do(ctx, func() error {
		resp, err = client.GenerateContent(ctx, p.model, contents, config)
		return err
	})
	if err != nil {
		return ChatCompletionResponse{}, wrapGeminiError("generate_content", err)
	}

	return fromGeminiResponse(resp)
}

func (p *GeminiProvider) sdk(ctx context.Context) (GeminiClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  p.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.cfg.Timeout > 0 || p.cfg.Transport != nil {
		cc.HTTPClient = &http.Client{Timeout: p.cfg.Timeout, Transport: p.cfg.Transport}
	}
	if p.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	p.client = sdkGeminiClient{client: client}
	return p.client, nil
}

// fromGeminiResponse reads the first candidate's text parts.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (ChatCompletionResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return ChatCompletionResponse{}, NewProviderError("generate_content", 0, "no candidates in response", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ChatCompletionResponse{}, NewProviderError("generate_content", 0, "candidate has no content", ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = NewUsage(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
			int(resp.UsageMetadata.TotalTokenCount),
		)
	}

	return NewChatCompletionResponse(sb.String(), string(candidate.FinishReason), usage), nil
}

// geminiAPIError extracts the SDK error, which may be returned by value or pointer.
func geminiAPIError(err error) (genai.APIError, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue, true
	}
	var byPointer *genai.APIError
	if errors.As(err, &byPointer) && byPointer != nil {
		return *byPointer, true
	}
	return genai.APIError{}, false
}

func isRetryableGemini(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if apiErr, ok := geminiAPIError(err); ok {
		return retryableStatus(apiErr.Code)
	}
	return false
}

// wrapGeminiError maps Gemini API errors to ProviderError.
func wrapGeminiError(operation string, err error) error {
	if apiErr, ok := geminiAPIError(err); ok {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Status
		}
		return NewProviderError(operation, apiErr.Code, msg, err)
	}
	return NewProviderError(operation, 0, err.Error(), err)
}

// Ensure GeminiProvider implements TextGenerator.
var _ TextGenerator = (*GeminiProvider)(nil)
