// Package modelclient is the Model Client: an abstract transport to a
// remote LLM that returns raw text, per spec.md §4.5.
package modelclient

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors a Client implementation returns; the Decision Loop treats
// any of them (after the client's own retry budget is spent) as a
// TransportError for loop purposes, per spec.md §7.
var (
	ErrNonRetryable = errors.New("model client: non-retryable response")
	ErrTransport    = errors.New("model client: transport failure")
	ErrNoAPIKey     = errors.New("model client: no API key configured")
)

// Params are supplied by the Decision Loop per call; they are not fixed
// constants of the client, since the phase (endgame vs. not) changes them.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// EndgameParams and StandardParams are the two parameter sets spec.md §4.5
// names explicitly.
var (
	EndgameParams  = Params{Temperature: 0.3, MaxTokens: 800}
	StandardParams = Params{Temperature: 0.7, MaxTokens: 500}
)

// Client abstracts a remote model transport. Implementations must be safe
// for concurrent use if shared across games in the worker pool.
type Client interface {
	// Call sends prompt to modelID and returns the model's raw text reply.
	// HTTP and response failures come back as a *TransportError that
	// unwraps to ErrTransport or ErrNonRetryable; a provider with no API key
	// returns ErrNoAPIKey, and the Registry returns a plain error for a
	// model id no provider is registered for.
	Call(ctx context.Context, prompt, modelID string, params Params) (string, error)
}

// TransportError wraps a lower-level failure (network error, non-2xx
// status after backoff, unexpected response shape) with the modelID and
// HTTP status (0 if unknown) for logging.
type TransportError struct {
	ModelID    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("modelclient: %s: status %d: %v", e.ModelID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("modelclient: %s: %v", e.ModelID, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return ErrNonRetryable
	}
	return ErrTransport
}
