package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ai-notecanvas/internal/pkg/logger"
	"ai-notecanvas/internal/pkg/serverutils"
	"ai-notecanvas/internal/repository"
	"ai-notecanvas/internal/repository/memory"
	"ai-notecanvas/internal/service"
	"ai-notecanvas/pkg/events"
	"ai-notecanvas/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, event events.Event) error { return nil }

// scriptedProvider answers LLM calls in order; an empty script fails.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	err     error
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "", &llm.NetworkError{Err: errors.New("no scripted reply")}
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r, nil
}

func (p *scriptedProvider) script(replies ...string) {
	p.mu.Lock()
	p.replies = append(p.replies, replies...)
	p.mu.Unlock()
}

type harness struct {
	app      *fiber.App
	store    service.IGraphStore
	provider *scriptedProvider
}

func newHarness(t *testing.T, fallbackKey string) *harness {
	t.Helper()
	log := logger.NewNopLogger()

	store := service.NewGraphStore(repository.NewNoteDB(memory.NewKVStore(), nil), nopPublisher{}, log)
	require.NoError(t, store.LoadInitialData(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	provider := &scriptedProvider{}
	gateway := llm.NewGateway(provider, fallbackKey, log)

	titles := service.NewTitleScheduler(store, gateway, time.Hour, log)
	t.Cleanup(titles.Stop)

	nodes := service.NewNodeService(store, titles)
	workspace := service.NewWorkspaceService(store)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.NewErrorHandler(log)})
	api := app.Group("/api")
	NewCanvasController(nodes, workspace).RegisterRoutes(api)
	NewConnectController(service.NewConnectService(store, gateway, nopPublisher{}, log)).RegisterRoutes(api)
	NewChatController(service.NewChatService(store, gateway, log)).RegisterRoutes(api)
	NewWorkspaceController(workspace).RegisterRoutes(api)
	NewAnalysisController(service.NewAnalysisService(store, gateway)).RegisterRoutes(api)
	NewExportController(service.NewExportService(store)).RegisterRoutes(api)

	return &harness{app: app, store: store, provider: provider}
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (h *harness) raw(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (h *harness) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	resp := h.raw(t, method, path, body)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

// decode unmarshals the envelope data into v.
func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}
