package llm

import (
	"context"
	"errors"
)

// Prompt is one system/user message pair sent to a chat-completion endpoint.
type Prompt struct {
	System string
	User   string
}

// Client abstracts chat-completion providers.
type Client interface {
	// Complete sends the prompt and returns the top choice's message text.
	// Any transport, credential, or response-shape problem is a hard error;
	// degradation decisions belong to the caller.
	Complete(ctx context.Context, prompt Prompt) (string, error)

	// Name identifies the provider for result attribution.
	Name() string
}

// ErrNotConfigured is returned when an operation needs a provider but no
// credential was configured.
var ErrNotConfigured = errors.New("llm client not configured")
