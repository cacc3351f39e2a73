package modelclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randomtoy/chess-llm-arena/internal/modelclient"
)

func TestAnthropicProvider_Call_SendsAPIKeyHeaderAndParsesContent(t *testing.T) {
	var gotAPIKey, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"text": "MOVE: d4"},
			},
		})
	}))
	defer server.Close()

	p := modelclient.NewAnthropicProvider(server.Client(), "sk-ant-test")
	p.Endpoint = server.URL

	out, err := p.Call(context.Background(), "play something", "claude-3-5-sonnet", modelclient.StandardParams)
	require.NoError(t, err)
	require.Equal(t, "MOVE: d4", out)
	require.Equal(t, "sk-ant-test", gotAPIKey)
	require.NotEmpty(t, gotVersion)
}

func TestAnthropicProvider_Call_NoAPIKey(t *testing.T) {
	p := modelclient.NewAnthropicProvider(http.DefaultClient, "")
	_, err := p.Call(context.Background(), "prompt", "claude-3-5-sonnet", modelclient.StandardParams)
	require.ErrorIs(t, err, modelclient.ErrNoAPIKey)
}

func TestAnthropicProvider_Call_EmptyContentIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}})
	}))
	defer server.Close()

	p := modelclient.NewAnthropicProvider(server.Client(), "sk-ant-test")
	p.Endpoint = server.URL
	p.Retry = fastRetry()

	_, err := p.Call(context.Background(), "prompt", "claude-3-5-sonnet", modelclient.StandardParams)
	require.Error(t, err)
}

func TestAnthropicProvider_Call_ClientErrorIsNotRetried(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := modelclient.NewAnthropicProvider(server.Client(), "sk-ant-test")
	p.Endpoint = server.URL
	p.Retry = fastRetry()

	_, err := p.Call(context.Background(), "prompt", "claude-3-5-sonnet", modelclient.StandardParams)
	require.Error(t, err)
	require.ErrorIs(t, err, modelclient.ErrNonRetryable)
	require.Equal(t, 1, attempts)
}
