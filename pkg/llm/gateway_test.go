package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-notecanvas/internal/constant"
	"ai-notecanvas/internal/entity"
	"ai-notecanvas/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	content string
	err     error
}

// scriptedProvider answers calls in order and records what it was sent.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []reply
	calls   [][]Message
	opts    []Options
}

func (p *scriptedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, append([]Message(nil), history...))
	p.opts = append(p.opts, Apply(Options{}, options...))

	if len(p.replies) == 0 {
		return "", errors.New("unexpected call")
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r.content, r.err
}

func newGateway(p Provider, fallbackKey string) *Gateway {
	return NewGateway(p, fallbackKey, logger.NewNopLogger())
}

var keyed = entity.Settings{ApiKey: "pplx-test", Model: entity.ModelSonar}

type connectShape struct {
	Sections []struct {
		Id string `json:"id"`
	} `json:"sections"`
	Summary string `json:"summary_of_changes"`
}

func TestCompleteWithoutKeyIsErrAuth(t *testing.T) {
	p := &scriptedProvider{}
	_, err := newGateway(p, "").Complete(context.Background(), nil, entity.Settings{})

	assert.ErrorIs(t, err, ErrAuth)
	assert.Empty(t, p.calls)
}

func TestCompleteUsesFallbackKeyAndDefaults(t *testing.T) {
	p := &scriptedProvider{replies: []reply{{content: "ok"}}}
	out, err := newGateway(p, "from-env").Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, entity.Settings{})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	require.Len(t, p.opts, 1)
	assert.Equal(t, "from-env", p.opts[0].APIKey)
	assert.Equal(t, entity.ModelSonarPro, p.opts[0].Model)
	assert.Equal(t, 0.2, p.opts[0].Temperature)
	assert.False(t, p.opts[0].DisableSearch)
}

func TestCompleteSettingsKeyWins(t *testing.T) {
	p := &scriptedProvider{replies: []reply{{content: "ok"}}}
	_, err := newGateway(p, "from-env").Complete(context.Background(), nil, keyed)

	require.NoError(t, err)
	assert.Equal(t, "pplx-test", p.opts[0].APIKey)
	assert.Equal(t, entity.ModelSonar, p.opts[0].Model)
}

func TestCompleteStructuredFencedJSONNoRepair(t *testing.T) {
	p := &scriptedProvider{replies: []reply{
		{content: "```json\n{\"sections\":[{\"id\":\"s1\"}],\"summary_of_changes\":\"added\"}\n```"},
	}}

	got, err := CompleteStructured[connectShape](context.Background(), newGateway(p, ""), []Message{{Role: "user", Content: "x"}}, keyed)

	require.NoError(t, err)
	assert.Equal(t, "added", got.Summary)
	require.Len(t, got.Sections, 1)
	assert.Len(t, p.calls, 1)
	assert.True(t, p.opts[0].DisableSearch)
}

func TestCompleteStructuredRepairsOnce(t *testing.T) {
	p := &scriptedProvider{replies: []reply{
		{content: "Sure! Here is your document."},
		{content: `{"sections":[],"summary_of_changes":"fixed"}`},
	}}
	original := []Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "note"}}

	got, err := CompleteStructured[connectShape](context.Background(), newGateway(p, ""), original, keyed)

	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Summary)
	require.Len(t, p.calls, 2)
	require.Len(t, p.calls[1], 3)
	assert.Equal(t, original, p.calls[1][:2])
	assert.Equal(t, Message{Role: "user", Content: constant.JSONFixPrompt}, p.calls[1][2])
}

func TestCompleteStructuredTwiceMalformed(t *testing.T) {
	p := &scriptedProvider{replies: []reply{
		{content: "nope"},
		{content: "still nope"},
	}}

	_, err := CompleteStructured[connectShape](context.Background(), newGateway(p, ""), nil, keyed)

	var malformed *MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "still nope", malformed.Raw)
	assert.Len(t, p.calls, 2)
}

func TestCompleteStructuredRetriesAfterTransportError(t *testing.T) {
	p := &scriptedProvider{replies: []reply{
		{err: &NetworkError{Err: errors.New("reset")}},
		{content: `{"sections":[]}`},
	}}

	_, err := CompleteStructured[connectShape](context.Background(), newGateway(p, ""), nil, keyed)

	require.NoError(t, err)
	assert.Len(t, p.calls, 2)
}

func TestCompleteStructuredSecondTransportErrorPropagates(t *testing.T) {
	apiErr := &APIError{Status: 500, Body: "boom"}
	p := &scriptedProvider{replies: []reply{
		{err: &NetworkError{Err: errors.New("reset")}},
		{err: apiErr},
	}}

	_, err := CompleteStructured[connectShape](context.Background(), newGateway(p, ""), nil, keyed)

	assert.ErrorIs(t, err, apiErr)
	assert.True(t, IsUpstream(err))
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{}\n```": "{}",
		"```\n[1]\n```":    "[1]",
		"  {\"a\":1}  ":    "{\"a\":1}",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFence(in))
	}
}

func TestGenerateTitleShortContentSkipsNetwork(t *testing.T) {
	p := &scriptedProvider{}
	title := newGateway(p, "").GenerateTitle(context.Background(), "too short", keyed)

	assert.Equal(t, "Untitled", title)
	assert.Empty(t, p.calls)
}

func TestGenerateTitleCleansAndCaches(t *testing.T) {
	p := &scriptedProvider{replies: []reply{{content: `"Quarterly Budget Planning Notes"`}}}
	g := newGateway(p, "")
	content := "Plan the Q3 budget with finance"

	assert.Equal(t, "Quarterly Budget", g.GenerateTitle(context.Background(), content, keyed))
	assert.Equal(t, "Quarterly Budget", g.GenerateTitle(context.Background(), content, keyed))
	require.Len(t, p.calls, 1)
	assert.Equal(t, 0.1, p.opts[0].Temperature)
	assert.True(t, p.opts[0].DisableSearch)
}

func TestGenerateTitleErrorIsUntitled(t *testing.T) {
	p := &scriptedProvider{replies: []reply{{err: &APIError{Status: 401, Body: "bad key"}}}}
	title := newGateway(p, "").GenerateTitle(context.Background(), "long enough content here", keyed)

	assert.Equal(t, "Untitled", title)
}

func TestCleanTitleCapsLength(t *testing.T) {
	assert.Equal(t, "Supercalifragilisti", CleanTitle("Supercalifragilisti"))
	assert.Equal(t, "Electroencephalograp", CleanTitle("Electroencephalography spikes"))
	assert.Equal(t, "Its fine", CleanTitle(" 'It's'  fine today\n"))
}

func TestRunAnalysis(t *testing.T) {
	p := &scriptedProvider{replies: []reply{{content: "## Summary"}}}
	g := newGateway(p, "")

	out, err := g.RunAnalysis(context.Background(), "Note (2024-01-01): hi", constant.AnalysisModeSummary, keyed)
	require.NoError(t, err)
	assert.Equal(t, "## Summary", out)
	assert.Equal(t, 0.3, p.opts[0].Temperature)
	assert.Equal(t, constant.AnalysisPrompts[constant.AnalysisModeSummary], p.calls[0][0].Content)

	_, err = g.RunAnalysis(context.Background(), "x", "poetry", keyed)
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Len(t, p.calls, 1)
}
