package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion         = "2023-06-01"
)

// AnthropicProvider calls the Anthropic Messages API, selected by the
// Decision Loop for model ids prefixed "claude-". Grounded on
// server-ai-move.go's getClaudeMove request/response shape.
type AnthropicProvider struct {
	HTTPClient *http.Client
	APIKey     string
	Endpoint   string
	Retry      RetryConfig
}

// NewAnthropicProvider builds a provider with the teacher's default retry
// configuration and endpoint.
func NewAnthropicProvider(httpClient *http.Client, apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		HTTPClient: httpClient,
		APIKey:     apiKey,
		Endpoint:   defaultAnthropicEndpoint,
		Retry:      DefaultRetryConfig,
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) Call(ctx context.Context, prompt, modelID string, params Params) (string, error) {
	if p.APIKey == "" {
		return "", ErrNoAPIKey
	}
	return withRetry(ctx, p.Retry, func() (string, error) {
		return p.call(ctx, prompt, modelID, params)
	})
}

func (p *AnthropicProvider) call(ctx context.Context, prompt, modelID string, params Params) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       modelID,
		System:      chessSystemPrompt,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return "", &TransportError{ModelID: modelID, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{ModelID: modelID, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{ModelID: modelID, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", raw)}
	}

	var out anthropicResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &TransportError{ModelID: modelID, Err: err}
	}
	if len(out.Content) == 0 {
		return "", &TransportError{ModelID: modelID, Err: fmt.Errorf("no content in response")}
	}
	return out.Content[0].Text, nil
}
