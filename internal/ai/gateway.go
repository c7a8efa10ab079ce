package ai

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/leowang3268/puzzle-chat-ai/internal/cache"
	"github.com/leowang3268/puzzle-chat-ai/internal/config"
	"github.com/leowang3268/puzzle-chat-ai/pkg/log"
)

// ErrAllModelsFailed is returned when every model in the sequence failed.
// Callers supply their own user-facing fallback text.
var ErrAllModelsFailed = errors.New("all models in sequence failed")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompleteOptions controls a single completion request.
type CompleteOptions struct {
	// Models is the ordered fallback sequence. Empty uses the configured default.
	Models      []string
	Temperature float64
	JSONMode    bool
}

// Completer issues chat-completion requests. Implemented by Gateway; the
// judge and composer depend on this interface so tests can stub the provider.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error)
}

// Gateway talks to an OpenAI-compatible chat-completions endpoint with
// ordered model fallback, a per-attempt timeout, and response caching.
type Gateway struct {
	llm           llms.Model
	cache         cache.ResponseCache
	defaultModels []string
	timeout       time.Duration
	maxTokens     int
	cacheTTL      time.Duration
}

func NewGateway(cfg config.AIConfig, respCache cache.ResponseCache, cacheTTL time.Duration) (*Gateway, error) {
	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	if respCache == nil {
		respCache = cache.NewNoopCache()
	}

	return &Gateway{
		llm:           llm,
		cache:         respCache,
		defaultModels: cfg.Models,
		timeout:       cfg.RequestTimeout,
		maxTokens:     cfg.MaxTokens,
		cacheTTL:      cacheTTL,
	}, nil
}

// Complete tries each model in order and returns the first successful
// response. A non-2xx status, timeout, or transport error fails the attempt
// and falls through to the next model; the same model is never retried.
func (g *Gateway) Complete(ctx context.Context, messages []Message, opts CompleteOptions) (string, error) {
	models := opts.Models
	if len(models) == 0 {
		models = g.defaultModels
	}
	if len(models) == 0 {
		return "", ErrAllModelsFailed
	}

	key := cacheKey(messages, models, opts)
	if cached, err := g.cache.Get(ctx, key); err == nil {
		log.L().Debug().Msg("ai response served from cache")
		return cached, nil
	}

	content := toLLMMessages(messages)

	for _, model := range models {
		callOpts := []llms.CallOption{
			llms.WithModel(model),
			llms.WithTemperature(opts.Temperature),
			llms.WithMaxTokens(g.maxTokens),
		}
		if opts.JSONMode {
			callOpts = append(callOpts, llms.WithJSONMode())
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.llm.GenerateContent(attemptCtx, content, callOpts...)
		cancel()

		if err != nil {
			log.L().Warn().Err(err).Str(log.FieldModel, model).Msg("model attempt failed, trying next")
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
			log.L().Warn().Str(log.FieldModel, model).Msg("model returned empty response, trying next")
			continue
		}

		answer := resp.Choices[0].Content
		if err := g.cache.Set(ctx, key, answer, g.cacheTTL); err != nil {
			log.L().Warn().Err(err).Msg("failed to cache ai response")
		}
		return answer, nil
	}

	return "", ErrAllModelsFailed
}

func toLLMMessages(messages []Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role schema.ChatMessageType
		switch m.Role {
		case RoleSystem:
			role = schema.ChatMessageTypeSystem
		case RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, m.Content))
	}
	return content
}

func cacheKey(messages []Message, models []string, opts CompleteOptions) string {
	payload, _ := json.Marshal(struct {
		Messages    []Message `json:"messages"`
		Models      []string  `json:"models"`
		Temperature float64   `json:"temperature"`
		JSONMode    bool      `json:"json_mode"`
	}{messages, models, opts.Temperature, opts.JSONMode})

	sum := md5.Sum(payload)
	return hex.EncodeToString(sum[:])
}
