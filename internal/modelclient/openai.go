package modelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider calls the OpenAI chat-completions API, selected by the
// Decision Loop for model ids prefixed "gpt-", "o1", or "o3". Grounded on
// server-ai-move.go's getChatGPTMove request/response shape.
type OpenAIProvider struct {
	HTTPClient *http.Client
	APIKey     string
	Endpoint   string
	Retry      RetryConfig
}

// NewOpenAIProvider builds a provider with the teacher's default retry
// configuration and endpoint.
func NewOpenAIProvider(httpClient *http.Client, apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		HTTPClient: httpClient,
		APIKey:     apiKey,
		Endpoint:   defaultOpenAIEndpoint,
		Retry:      DefaultRetryConfig,
	}
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) Call(ctx context.Context, prompt, modelID string, params Params) (string, error) {
	if p.APIKey == "" {
		return "", ErrNoAPIKey
	}
	return withRetry(ctx, p.Retry, func() (string, error) {
		return p.call(ctx, prompt, modelID, params)
	})
}

func (p *OpenAIProvider) call(ctx context.Context, prompt, modelID string, params Params) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model: modelID,
		Messages: []openAIMessage{
			{Role: "system", Content: chessSystemPrompt},
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

	var out openAIResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &TransportError{ModelID: modelID, Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &TransportError{ModelID: modelID, Err: fmt.Errorf("no choices in response")}
	}
	return out.Choices[0].Message.Content, nil
}

// chessSystemPrompt establishes the model's role; shared across providers
// that support a system/role message.
const chessSystemPrompt = "You are a strong chess player. Follow the STATE, " +
	"STRATEGY_GUIDE, and PROTOCOL sections of the prompt exactly."
