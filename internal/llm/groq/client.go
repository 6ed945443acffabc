package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vela-dashboard-backend/internal/llm"
)

const apiURL = "https://api.groq.com/openai/v1/chat/completions"

// Client implements llm.Client using the Groq OpenAI-compatible
// chat-completions endpoint.
type Client struct {
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	baseURL     string
	httpClient  *http.Client
}

// Options controls generation parameters for the Groq client.
type Options struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultOptions returns the parameters used for failure analysis: low
// temperature for factual output and a bounded completion size.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.1,
		MaxTokens:   3000,
		Timeout:     60 * time.Second,
	}
}

// NewClient constructs a Groq client.
func NewClient(apiKey, model string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GROQ_MODEL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 3000
	}
	return &Client{
		apiKey:      apiKey,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   maxTokens,
		baseURL:     apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one system+user message pair and returns the top choice text.
func (c *Client) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("groq request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq API error: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("groq response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("groq error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("groq response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("groq response empty content")
	}
	return content, nil
}

// Name returns the display name used in analysis attribution.
func (c *Client) Name() string {
	return "Groq " + displayModel(c.model)
}

func displayModel(model string) string {
	switch strings.ToLower(strings.TrimSpace(model)) {
	case "llama3-8b-8192":
		return "Llama3-8B"
	case "llama3-70b-8192":
		return "Llama3-70B"
	default:
		return model
	}
}

var _ llm.Client = (*Client)(nil)
