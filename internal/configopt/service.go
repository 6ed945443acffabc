package configopt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"vela-dashboard-backend/internal/llm"
)

// Analysis types accepted by the optimizer.
const (
	TypeAnalyze  = "analyze"
	TypeOptimize = "optimize"
)

// ErrInvalidYAML is returned when the submitted configuration does not parse.
var ErrInvalidYAML = errors.New("configuration is not valid YAML")

// ErrUnknownType is returned for an unrecognized analysis type.
var ErrUnknownType = errors.New("unknown analysis type")

const analyzeSystemPrompt = `You are an expert DevOps engineer specializing in Vela CI/CD pipeline optimization. Analyze the provided .vela.yml configuration and provide detailed recommendations for:
1. Performance improvements
2. Cost optimization opportunities
3. Reliability enhancements
4. Security best practices
5. Estimated time and cost savings

Format your response with clear sections using markdown headers and bullet points.`

const optimizeSystemPrompt = `You are an expert DevOps engineer. Take the provided .vela.yml configuration and return an optimized version that includes:
1. Dependency caching for faster builds
2. Parallel execution where possible
3. Docker BuildKit support
4. Retry logic for flaky steps
5. Resource optimization
6. Security improvements

Return ONLY the optimized YAML configuration without explanations.`

// Service analyzes and rewrites Vela pipeline configurations via a
// chat-completion provider. Unlike failure analysis there is no local
// fallback: a provider failure is surfaced to the caller.
type Service struct {
	LLM llm.Client // nil when no credential is configured
}

// Run submits the configuration under the requested analysis type and
// returns the model's text.
func (s *Service) Run(ctx context.Context, configText, analysisType string) (string, error) {
	if err := validateYAML(configText); err != nil {
		return "", err
	}

	var system, verb string
	switch analysisType {
	case TypeAnalyze:
		system = analyzeSystemPrompt
		verb = "Please analyze this .vela.yml configuration and provide optimization recommendations"
	case TypeOptimize:
		system = optimizeSystemPrompt
		verb = "Optimize this .vela.yml configuration"
	default:
		return "", ErrUnknownType
	}

	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}

	prompt := llm.Prompt{
		System: system,
		User:   fmt.Sprintf("%s:\n\n```yaml\n%s\n```", verb, configText),
	}
	return s.LLM.Complete(ctx, prompt)
}

// validateYAML rejects configurations that do not parse, saving a model call
// on malformed input.
func validateYAML(configText string) error {
	if strings.TrimSpace(configText) == "" {
		return ErrInvalidYAML
	}
	var parsed any
	if err := yaml.Unmarshal([]byte(configText), &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}
