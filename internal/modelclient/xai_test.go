package modelclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randomtoy/chess-llm-arena/internal/modelclient"
)

func TestXAIProvider_Call_SendsBearerAuthAndParsesChoice(t *testing.T) {
	var gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "MOVE: c4"}},
			},
		})
	}))
	defer server.Close()

	p := modelclient.NewXAIProvider(server.Client(), "xai-test")
	p.Endpoint = server.URL

	out, err := p.Call(context.Background(), "play something", "grok-2", modelclient.StandardParams)
	require.NoError(t, err)
	require.Equal(t, "MOVE: c4", out)
	require.Equal(t, "Bearer xai-test", gotAuth)
	require.Contains(t, gotBody, "grok-2")
}

func TestXAIProvider_Call_NoAPIKey(t *testing.T) {
	p := modelclient.NewXAIProvider(http.DefaultClient, "")
	_, err := p.Call(context.Background(), "prompt", "grok-2", modelclient.StandardParams)
	require.ErrorIs(t, err, modelclient.ErrNoAPIKey)
}

func TestXAIProvider_Call_ServerErrorIsRetryable(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "MOVE: e5"}},
			},
		})
	}))
	defer server.Close()

	p := modelclient.NewXAIProvider(server.Client(), "xai-test")
	p.Endpoint = server.URL
	p.Retry = fastRetry()

	out, err := p.Call(context.Background(), "prompt", "grok-2", modelclient.StandardParams)
	require.NoError(t, err)
	require.Equal(t, "MOVE: e5", out)
	require.Equal(t, 2, attempts)
}
