package configopt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vela-dashboard-backend/internal/llm"
)

type fakeClient struct {
	response string
	err      error
	prompts  []llm.Prompt
}

func (f *fakeClient) Complete(_ context.Context, prompt llm.Prompt) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) Name() string { return "OpenAI gpt-4o-mini" }

const validConfig = `version: "1"
steps:
  - name: test
    image: golang:1.24
    commands:
      - go test ./...
`

func TestRunAnalyze(t *testing.T) {
	client := &fakeClient{response: "## Performance\n- cache modules"}
	svc := &Service{LLM: client}

	out, err := svc.Run(context.Background(), validConfig, TypeAnalyze)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "## Performance\n- cache modules" {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(client.prompts) != 1 {
		t.Fatalf("expected one model call, got %d", len(client.prompts))
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt.System, "pipeline optimization") {
		t.Fatalf("expected analyze system prompt, got %q", prompt.System)
	}
	if !strings.Contains(prompt.User, "```yaml") || !strings.Contains(prompt.User, validConfig) {
		t.Fatalf("expected fenced config in user prompt, got %q", prompt.User)
	}
}

func TestRunOptimize(t *testing.T) {
	client := &fakeClient{response: "version: \"1\""}
	svc := &Service{LLM: client}

	if _, err := svc.Run(context.Background(), validConfig, TypeOptimize); err != nil {
		t.Fatalf("Run: %v", err)
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt.System, "Return ONLY the optimized YAML") {
		t.Fatalf("expected optimize system prompt, got %q", prompt.System)
	}
	if !strings.Contains(prompt.User, "Optimize this .vela.yml configuration") {
		t.Fatalf("expected optimize verb, got %q", prompt.User)
	}
}

func TestRunInvalidYAML(t *testing.T) {
	svc := &Service{LLM: &fakeClient{}}

	cases := []struct {
		name   string
		config string
	}{
		{"empty", "   "},
		{"broken indentation", "steps:\n  - name: a\n   image: b"},
		{"unclosed quote", `version: "1`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Run(context.Background(), tc.config, TypeAnalyze)
			if !errors.Is(err, ErrInvalidYAML) {
				t.Fatalf("expected ErrInvalidYAML, got %v", err)
			}
		})
	}
}

func TestRunUnknownType(t *testing.T) {
	svc := &Service{LLM: &fakeClient{}}

	_, err := svc.Run(context.Background(), validConfig, "summarize")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestRunNotConfigured(t *testing.T) {
	svc := &Service{}

	_, err := svc.Run(context.Background(), validConfig, TypeAnalyze)
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRunProviderError(t *testing.T) {
	client := &fakeClient{err: errors.New("openai API error: status 500")}
	svc := &Service{LLM: client}

	_, err := svc.Run(context.Background(), validConfig, TypeAnalyze)
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected provider error surfaced, got %v", err)
	}
}
