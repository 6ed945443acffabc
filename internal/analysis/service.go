package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vela-dashboard-backend/internal/docs"
	"vela-dashboard-backend/internal/llm"
	"vela-dashboard-backend/internal/shared/metrics"
	"vela-dashboard-backend/internal/shared/telemetry"
)

// maxQueryChars bounds the documentation query so it stays focused on the
// start of the failure rather than the whole log.
const maxQueryChars = 100

// Result is the structured outcome of one enhanced failure analysis.
type Result struct {
	Analysis       string
	Sections       Sections
	ReferencedDocs []string
	Provider       string
	Timestamp      time.Time
}

// Outcome is the two-variant result of a model invocation: either the
// provider's output or the deterministic local fallback. Modeling this
// explicitly keeps the orchestrator's branching exhaustive instead of
// exception-driven.
type Outcome struct {
	Text     string
	Provider string
	Fallback bool
}

// Service orchestrates the failure-analysis pipeline: build a documentation
// query, fetch matching snippets, compose the prompt, invoke the model with
// fallback, and extract sections.
type Service struct {
	Docs    *docs.Fetcher
	LLM     llm.Client // nil when no credential is configured
	Timeout time.Duration
}

// AnalyzeEnhanced runs the full pipeline for one failure record. It always
// produces a well-formed Result; a provider outage surfaces only through the
// Provider field, never as an error.
func (s *Service) AnalyzeEnhanced(ctx context.Context, rec FailureRecord) Result {
	start := time.Now()
	metrics.IncAnalysisRequested()

	query := buildDocsQuery(rec)

	var snippets []docs.Snippet
	if s.Docs != nil {
		snippets = s.Docs.Fetch(ctx, query)
	}

	prompt := BuildEnhancedPrompt(rec, snippets)
	outcome := s.invoke(ctx, prompt, rec)

	if outcome.Fallback {
		metrics.IncAnalysisFallback()
	} else {
		metrics.IncAnalysisModel()
	}
	metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)

	urls := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		urls = append(urls, snippet.URL)
	}

	return Result{
		Analysis:       outcome.Text,
		Sections:       ExtractSections(outcome.Text),
		ReferencedDocs: urls,
		Provider:       outcome.Provider,
		Timestamp:      time.Now().UTC(),
	}
}

// AnalyzeBasic produces a single free-text analysis. Unlike the enhanced
// path it has no fallback: a provider failure is the caller's to surface.
func (s *Service) AnalyzeBasic(ctx context.Context, rec FailureRecord) (string, error) {
	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.LLM.Complete(ctx, BuildBasicPrompt(rec))
}

// invoke attempts the primary provider exactly once; any failure, including
// a missing credential, yields the fallback variant. No retries.
func (s *Service) invoke(ctx context.Context, prompt llm.Prompt, rec FailureRecord) Outcome {
	if s.LLM == nil {
		telemetry.Info("analysis.fallback", map[string]any{
			"reason": "no credential configured",
			"repo":   rec.Repository,
			"step":   rec.FailingStep,
		})
		return Outcome{
			Text:     fallbackAnalysis(rec),
			Provider: "Basic Analysis",
			Fallback: true,
		}
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	text, err := s.LLM.Complete(callCtx, prompt)
	if err != nil {
		telemetry.Error("analysis.provider_failed", map[string]any{
			"provider": s.LLM.Name(),
			"error":    err.Error(),
			"repo":     rec.Repository,
			"step":     rec.FailingStep,
		})
		return Outcome{
			Text:     fallbackAnalysis(rec),
			Provider: fmt.Sprintf("Basic Analysis (%s failed)", s.LLM.Name()),
			Fallback: true,
		}
	}

	return Outcome{
		Text:     text,
		Provider: s.LLM.Name(),
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// buildDocsQuery derives a short documentation query from the error message,
// step name, and a prefix of the log text.
func buildDocsQuery(rec FailureRecord) string {
	query := strings.Join([]string{rec.ErrorMessage, rec.FailingStep, rec.LogText}, " ")
	if len(query) > maxQueryChars {
		query = query[:maxQueryChars]
	}
	return query
}
