package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/valyala/fasttemplate"

	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/domain/diff"
	"github.com/helixml/autocommit/infrastructure/provider"
)

// DiffCharLimit is the rendered diff length, in characters, from which the
// changed-file list is sent instead of the diff.
const DiffCharLimit = 4000

var promptTemplate = fasttemplate.New("{{preamble}}\n\n{{context}}\n\n", "{{", "}}")

// MessageGenerator turns a parsed diff into a commit message using a
// remote text generator.
type MessageGenerator struct {
	generator provider.TextGenerator
	logger    *slog.Logger

	mu     sync.RWMutex
	apiKey string
	prompt string
}

// MessageGeneratorOption configures a MessageGenerator.
type MessageGeneratorOption func(*MessageGenerator)

// WithAPIKey sets the credential checked before every generation.
func WithAPIKey(key string) MessageGeneratorOption {
	return func(g *MessageGenerator) { g.apiKey = key }
}

// WithBasePrompt sets the instruction placed before the context.
func WithBasePrompt(prompt string) MessageGeneratorOption {
	return func(g *MessageGenerator) {
		if strings.TrimSpace(prompt) != "" {
			g.prompt = prompt
		}
	}
}

// NewMessageGenerator creates a MessageGenerator.
func NewMessageGenerator(generator provider.TextGenerator, logger *slog.Logger, opts ...MessageGeneratorOption) *MessageGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &MessageGenerator{
		generator: generator,
		logger:    logger,
		prompt:    commit.DefaultPrompt,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configure replaces the credential and base prompt, for settings reloads.
func (g *MessageGenerator) Configure(apiKey, prompt string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.apiKey = apiKey
	g.prompt = commit.DefaultPrompt
	if strings.TrimSpace(prompt) != "" {
		g.prompt = prompt
	}
}

// Prepare chooses the context for doc. The rendered diff is used when it is
// shorter than DiffCharLimit, the file list otherwise.
func (g *MessageGenerator) Prepare(doc diff.Document, files []string) commit.Request {
	g.mu.RLock()
	base := g.prompt
	g.mu.RUnlock()

	rendered := diff.Render(doc)
	length := diff.Length(rendered)
	if length < DiffCharLimit {
		return commit.NewRequest(base+commit.DiffSuffix, rendered, true)
	}

	g.logger.Info("diff too large, summarizing file list",
		slog.Int("diff_chars", length),
		slog.Int("files", len(files)),
	)
	return commit.NewRequest(base+commit.FileListSuffix, strings.Join(files, "\n"), false)
}

// Generate asks the text generator for a message for req.
func (g *MessageGenerator) Generate(ctx context.Context, req commit.Request) (commit.Message, error) {
	g.mu.RLock()
	key := g.apiKey
	g.mu.RUnlock()

	if strings.TrimSpace(key) == "" {
		return commit.Message{}, commit.ErrCredentialMissing
	}

	prompt := promptTemplate.ExecuteString(map[string]any{
		"preamble": req.Preamble(),
		"context":  req.Context(),
	})

	resp, err := g.generator.ChatCompletion(ctx, provider.NewChatCompletionRequest([]provider.Message{
		provider.UserMessage(prompt),
	}))
	if err != nil {
		return commit.Message{}, toServiceError(err)
	}

	msg := commit.NewMessage(resp.Content(), req.Source())
	if msg.IsZero() {
		return commit.Message{}, commit.NewServiceError(0, "empty completion", provider.ErrEmptyResponse)
	}

	g.logger.Debug("generated commit message",
		slog.String("source", string(msg.Source())),
		slog.Int("prompt_tokens", resp.Usage().PromptTokens()),
		slog.Int("completion_tokens", resp.Usage().CompletionTokens()),
	)
	return msg, nil
}

// Summarize prepares the request for doc and generates a message.
func (g *MessageGenerator) Summarize(ctx context.Context, doc diff.Document, files []string) (commit.Message, error) {
	return g.Generate(ctx, g.Prepare(doc, files))
}

func toServiceError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var provErr *provider.ProviderError
	if errors.As(err, &provErr) {
		return commit.NewServiceError(provErr.StatusCode(), provErr.Message(), err)
	}
	return commit.NewServiceError(0, err.Error(), err)
}
