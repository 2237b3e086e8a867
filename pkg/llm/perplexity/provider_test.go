package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-notecanvas/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSendsPerplexityPayload(t *testing.T) {
	var got map[string]interface{}
	var auth, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL+"/", time.Second)
	out, err := p.Chat(context.Background(),
		[]llm.Message{{Role: "user", Content: "hi"}},
		llm.WithAPIKey("pplx-1"),
		llm.WithModel("sonar"),
		llm.WithDisableSearch(true),
	)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "/chat/completions", path)
	assert.Equal(t, "Bearer pplx-1", auth)
	assert.Equal(t, "sonar", got["model"])
	assert.Equal(t, 0.2, got["temperature"])
	assert.Equal(t, 0.9, got["top_p"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, true, got["disable_search"])
	assert.NotContains(t, got, "max_tokens")
}

func TestChatWithoutKeyNeverCallsServer(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second).Chat(context.Background(), nil)
	assert.ErrorIs(t, err, llm.ErrAuth)
	assert.False(t, called)
}

func TestChatNon2xxIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, time.Second).Chat(context.Background(), nil, llm.WithAPIKey("k"))

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "slow down", apiErr.Body)
}

func TestChatTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewProvider(url, time.Second).Chat(context.Background(), nil, llm.WithAPIKey("k"))

	var netErr *llm.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestChatEmptyChoicesIsEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	out, err := NewProvider(srv.URL, time.Second).Chat(context.Background(), nil, llm.WithAPIKey("k"))
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
