package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultXAIEndpoint = "https://api.x.ai/v1/chat/completions"

// XAIProvider calls the xAI Grok chat-completions API, selected by the
// Decision Loop for model ids prefixed "grok-". Grounded on
// api_utils.py::call_grok, the original source's actual second player.
type XAIProvider struct {
	HTTPClient *http.Client
	APIKey     string
	Endpoint   string
	Retry      RetryConfig
}

// NewXAIProvider builds a provider with the teacher's default retry
// configuration and endpoint.
func NewXAIProvider(httpClient *http.Client, apiKey string) *XAIProvider {
	return &XAIProvider{
		HTTPClient: httpClient,
		APIKey:     apiKey,
		Endpoint:   defaultXAIEndpoint,
		Retry:      DefaultRetryConfig,
	}
}

type xaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type xaiResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (p *XAIProvider) Call(ctx context.Context, prompt, modelID string, params Params) (string, error) {
	if p.APIKey == "" {
		return "", ErrNoAPIKey
	}
	return withRetry(ctx, p.Retry, func() (string, error) {
		return p.call(ctx, prompt, modelID, params)
	})
}

func (p *XAIProvider) call(ctx context.Context, prompt, modelID string, params Params) (string, error) {
	body, err := json.Marshal(xaiRequest{
		Model: modelID,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

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

	var out xaiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &TransportError{ModelID: modelID, Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &TransportError{ModelID: modelID, Err: fmt.Errorf("no choices in response")}
	}
	return out.Choices[0].Message.Content, nil
}
