package modelclient

import (
	"context"
	"fmt"
	"strings"
)

// Registry dispatches a Call to the provider whose prefix matches modelID,
// mirroring the teacher's ports.GameStore injection pattern: the Decision
// Loop depends only on the Client interface, never on a concrete provider.
type Registry struct {
	providers []prefixedProvider
}

type prefixedProvider struct {
	prefixes []string
	client   Client
}

// NewRegistry returns an empty registry; register providers with Register.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates client with every model id starting with one of
// prefixes. Later registrations take priority on overlapping prefixes.
func (r *Registry) Register(client Client, prefixes ...string) {
	r.providers = append([]prefixedProvider{{prefixes: prefixes, client: client}}, r.providers...)
}

// Call implements Client by dispatching modelID to its registered provider.
func (r *Registry) Call(ctx context.Context, prompt, modelID string, params Params) (string, error) {
	client, err := r.resolve(modelID)
	if err != nil {
		return "", err
	}
	return client.Call(ctx, prompt, modelID, params)
}

func (r *Registry) resolve(modelID string) (Client, error) {
	for _, p := range r.providers {
		for _, prefix := range p.prefixes {
			if strings.HasPrefix(modelID, prefix) {
				return p.client, nil
			}
		}
	}
	return nil, fmt.Errorf("modelclient: no provider registered for model id %q", modelID)
}

// NewDefaultRegistry wires the three concrete providers spec.md §4.5
// envisions, keyed by their conventional model-id prefixes.
func NewDefaultRegistry(openai *OpenAIProvider, anthropic *AnthropicProvider, xai *XAIProvider) *Registry {
	r := NewRegistry()
	if openai != nil {
		r.Register(openai, "gpt-", "o1", "o3")
	}
	if anthropic != nil {
		r.Register(anthropic, "claude-")
	}
	if xai != nil {
		r.Register(xai, "grok-")
	}
	return r
}
