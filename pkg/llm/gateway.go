package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"ai-notecanvas/internal/constant"
	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/pkg/metrics"

	"github.com/patrickmn/go-cache"
)

const (
	defaultTemperature  = 0.2
	titleTemperature    = 0.1
	analysisTemperature = 0.3

	minTitleContent = 10
	maxTitleWords   = 2
	maxTitleRunes   = 20
)

// Gateway turns canvas operations into provider calls. It owns API key
// resolution, the structured-output repair loop and title caching.
type Gateway struct {
	provider    Provider
	fallbackKey string
	titles      *cache.Cache
	logger      logger.ILogger
}

func NewGateway(provider Provider, fallbackKey string, log logger.ILogger) *Gateway {
	return &Gateway{
		provider:    provider,
		fallbackKey: fallbackKey,
		titles:      cache.New(time.Hour, 10*time.Minute),
		logger:      log,
	}
}

// Complete sends messages with the key and model from settings. The
// configured fallback key is used when settings carry none.
func (g *Gateway) Complete(ctx context.Context, messages []Message, settings entity.Settings, options ...Option) (string, error) {
	return g.complete(ctx, "chat", messages, settings, options...)
}

func (g *Gateway) complete(ctx context.Context, purpose string, messages []Message, settings entity.Settings, options ...Option) (string, error) {
	key := settings.ApiKey
	if key == "" {
		key = g.fallbackKey
	}
	if key == "" {
		metrics.LLMRequests.WithLabelValues(purpose, "auth").Inc()
		return "", ErrAuth
	}

	model := settings.Model
	if model == "" {
		model = entity.ModelSonarPro
	}

	base := []Option{WithAPIKey(key), WithModel(model), WithTemperature(defaultTemperature)}
	start := time.Now()
	out, err := g.provider.Chat(ctx, messages, append(base, options...)...)
	metrics.LLMDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
	metrics.LLMRequests.WithLabelValues(purpose, metrics.Result(err)).Inc()

	if err != nil {
		g.logger.Warn("LLMGateway", "Completion failed", map[string]interface{}{
			"purpose": purpose,
			"model":   model,
			"error":   err.Error(),
		})
		return "", err
	}
	return out, nil
}

// CompleteStructured asks for JSON and decodes it into T. A response that
// fails to decode, or a first call that fails outright, gets exactly one
// retry with the repair prompt appended.
func CompleteStructured[T any](ctx context.Context, g *Gateway, messages []Message, settings entity.Settings) (T, error) {
	var out T

	content, err := g.complete(ctx, "structured", messages, settings, WithDisableSearch(true))
	if errors.Is(err, ErrAuth) {
		return out, err
	}
	if err == nil {
		if err = DecodeJSON(content, &out); err == nil {
			return out, nil
		}
	}

	g.logger.Warn("LLMGateway", "Structured response unusable, retrying with repair prompt", map[string]interface{}{
		"error": err.Error(),
	})

	repaired := make([]Message, 0, len(messages)+1)
	repaired = append(repaired, messages...)
	repaired = append(repaired, Message{Role: entity.ChatRoleUser, Content: constant.JSONFixPrompt})

	content, err = g.complete(ctx, "structured_repair", repaired, settings, WithDisableSearch(true))
	if err != nil {
		metrics.JSONRepairs.WithLabelValues("error").Inc()
		return out, err
	}

	var retry T
	if err := DecodeJSON(content, &retry); err != nil {
		metrics.JSONRepairs.WithLabelValues("malformed").Inc()
		return out, &MalformedResponseError{Raw: content, Err: err}
	}

	metrics.JSONRepairs.WithLabelValues("ok").Inc()
	return retry, nil
}

// StripCodeFence removes a surrounding ``` or ```json markdown fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeJSON decodes a possibly fenced JSON answer into v.
func DecodeJSON(content string, v interface{}) error {
	return json.Unmarshal([]byte(StripCodeFence(content)), v)
}

// GenerateTitle never fails: short content and every error yield "Untitled".
func (g *Gateway) GenerateTitle(ctx context.Context, content string, settings entity.Settings) string {
	if utf8.RuneCountInString(content) < minTitleContent {
		return constant.UntitledNote
	}

	cacheKey := titleCacheKey(settings.Model, content)
	if cached, found := g.titles.Get(cacheKey); found {
		return cached.(string)
	}

	messages := []Message{
		{Role: entity.ChatRoleSystem, Content: constant.TitleSystemPrompt},
		{Role: entity.ChatRoleUser, Content: content},
	}

	raw, err := g.complete(ctx, "title", messages, settings,
		WithTemperature(titleTemperature),
		WithDisableSearch(true),
	)
	if err != nil {
		return constant.UntitledNote
	}

	title := CleanTitle(raw)
	if title == "" {
		return constant.UntitledNote
	}

	g.titles.Set(cacheKey, title, cache.DefaultExpiration)
	return title
}

// CleanTitle drops quotes, keeps the first two words and caps the length.
func CleanTitle(raw string) string {
	clean := strings.NewReplacer(`'`, "", `"`, "").Replace(raw)
	words := strings.Fields(clean)
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	title := strings.Join(words, " ")
	if utf8.RuneCountInString(title) > maxTitleRunes {
		title = string([]rune(title)[:maxTitleRunes])
	}
	return title
}

func titleCacheKey(model, content string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + content))
	return hex.EncodeToString(sum[:])
}

// RunAnalysis runs one analysis mode over the already formatted notes.
func (g *Gateway) RunAnalysis(ctx context.Context, notesContent, mode string, settings entity.Settings) (string, error) {
	systemPrompt, ok := constant.AnalysisPrompts[mode]
	if !ok {
		return "", ErrUnknownMode
	}

	messages := []Message{
		{Role: entity.ChatRoleSystem, Content: systemPrompt},
		{Role: entity.ChatRoleUser, Content: notesContent},
	}

	return g.complete(ctx, "analysis_"+mode, messages, settings,
		WithTemperature(analysisTemperature),
		WithDisableSearch(true),
	)
}
