package analysis

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vela-dashboard-backend/internal/llm"
	"vela-dashboard-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses/failure", h.analyzeBasic)
	rg.POST("/analyses/failure/enhanced", h.analyzeEnhanced)
}

type basicRequest struct {
	Logs  string `json:"logs"`
	Error string `json:"error"`
	Repo  string `json:"repo"`
	Step  string `json:"step"`
}

type enhancedRequest struct {
	Logs           string `json:"logs"`
	Error          string `json:"error"`
	Repo           string `json:"repo"`
	Step           string `json:"step"`
	Branch         string `json:"branch"`
	PipelineConfig string `json:"pipeline_config"`
}

type enhancedResponse struct {
	Analysis   string   `json:"analysis"`
	Sections   Sections `json:"sections"`
	VelaDocs   []string `json:"velaDocs"`
	AIProvider string   `json:"aiProvider"`
	Timestamp  string   `json:"timestamp"`
}

func (h *Handler) analyzeBasic(c *gin.Context) {
	var req basicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if msg, ok := validateRequired(req.Logs, req.Error, req.Repo, req.Step); !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
		return
	}

	rec := FailureRecord{
		Repository:   strings.TrimSpace(req.Repo),
		FailingStep:  strings.TrimSpace(req.Step),
		ErrorMessage: req.Error,
		LogText:      req.Logs,
	}

	analysisText, err := h.Svc.AnalyzeBasic(c.Request.Context(), rec)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			respond.Error(c, http.StatusBadGateway, "provider_unconfigured", "no analysis provider configured", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "provider_error", "analysis provider failed", nil)
		return
	}

	respond.OK(c, gin.H{"analysis": analysisText})
}

func (h *Handler) analyzeEnhanced(c *gin.Context) {
	var req enhancedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if msg, ok := validateRequired(req.Logs, req.Error, req.Repo, req.Step); !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", msg, nil)
		return
	}

	rec := FailureRecord{
		Repository:     strings.TrimSpace(req.Repo),
		Branch:         strings.TrimSpace(req.Branch),
		FailingStep:    strings.TrimSpace(req.Step),
		ErrorMessage:   req.Error,
		LogText:        req.Logs,
		PipelineConfig: req.PipelineConfig,
	}

	result := h.Svc.AnalyzeEnhanced(c.Request.Context(), rec)
	c.Set("aiProvider", result.Provider)

	respond.OK(c, toEnhancedResponse(result))
}

func toEnhancedResponse(result Result) enhancedResponse {
	docURLs := result.ReferencedDocs
	if docURLs == nil {
		docURLs = []string{}
	}
	return enhancedResponse{
		Analysis:   result.Analysis,
		Sections:   result.Sections,
		VelaDocs:   docURLs,
		AIProvider: result.Provider,
		Timestamp:  result.Timestamp.Format(time.RFC3339),
	}
}

func validateRequired(logs, errMsg, repo, step string) (string, bool) {
	switch {
	case strings.TrimSpace(repo) == "":
		return "repo is required", false
	case strings.TrimSpace(step) == "":
		return "step is required", false
	case strings.TrimSpace(errMsg) == "":
		return "error is required", false
	case strings.TrimSpace(logs) == "":
		return "logs is required", false
	}
	return "", true
}
