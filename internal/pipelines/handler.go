package pipelines

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vela-dashboard-backend/internal/analysis"
	"vela-dashboard-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the pipelines service.
type Handler struct {
	Svc      *Service
	Analyzer *analysis.Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, analyzer *analysis.Service) *Handler {
	return &Handler{Svc: svc, Analyzer: analyzer}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pipelines", h.list)
	rg.GET("/pipelines/:id", h.get)
	rg.POST("/pipelines", h.create)
	rg.POST("/pipelines/demo", h.seedDemo)
	rg.POST("/pipelines/:id/analyze", h.analyze)
	rg.POST("/pipelines/failures/latest/analyze", h.analyzeLatest)
}

type pipelineResponse struct {
	ID          string `json:"id"`
	RepoName    string `json:"repoName"`
	Branch      string `json:"branch"`
	Status      string `json:"status"`
	Progress    *int   `json:"progress"`
	Duration    string `json:"duration,omitempty"`
	Author      string `json:"author,omitempty"`
	CommitHash  string `json:"commitHash,omitempty"`
	CurrentStep string `json:"currentStep,omitempty"`
	VelaBuildID string `json:"velaBuildId,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func (h *Handler) list(c *gin.Context) {
	runs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list pipelines", nil)
		return
	}

	out := make([]pipelineResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toResponse(run))
	}
	respond.OK(c, gin.H{"pipelines": out})
}

func (h *Handler) get(c *gin.Context) {
	run, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "pipeline not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load pipeline", nil)
		return
	}
	respond.OK(c, gin.H{"pipeline": toResponse(run)})
}

type createRequest struct {
	RepoName    string `json:"repoName"`
	Branch      string `json:"branch"`
	Status      string `json:"status"`
	Progress    *int   `json:"progress"`
	Duration    string `json:"duration"`
	Author      string `json:"author"`
	CommitHash  string `json:"commitHash"`
	CurrentStep string `json:"currentStep"`
	VelaBuildID string `json:"velaBuildId"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.RepoName) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "repoName is required", nil)
		return
	}
	if strings.TrimSpace(req.Branch) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "branch is required", nil)
		return
	}

	run, err := h.Svc.Create(c.Request.Context(), Pipeline{
		RepoName:    req.RepoName,
		Branch:      req.Branch,
		Status:      Status(req.Status),
		Progress:    req.Progress,
		Duration:    req.Duration,
		Author:      req.Author,
		CommitHash:  req.CommitHash,
		CurrentStep: req.CurrentStep,
		VelaBuildID: req.VelaBuildID,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "status must be running, success, failed, or pending", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create pipeline", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"pipeline": toResponse(run)})
}

func (h *Handler) seedDemo(c *gin.Context) {
	runs, err := h.Svc.SeedDemo(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to seed demo pipelines", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"created": len(runs)})
}

type analyzeRequest struct {
	Logs           string `json:"logs"`
	Error          string `json:"error"`
	PipelineConfig string `json:"pipeline_config"`
}

func (h *Handler) analyze(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "pipeline id is required", nil)
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Logs) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "logs is required", nil)
		return
	}
	if strings.TrimSpace(req.Error) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "error is required", nil)
		return
	}

	rec, err := h.Svc.FailureRecordFor(c.Request.Context(), id, req.Logs, req.Error, req.PipelineConfig)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "pipeline not found", nil)
		case errors.Is(err, ErrNotFailed):
			respond.Error(c, http.StatusConflict, "not_failed", "pipeline run has not failed", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load pipeline", nil)
		}
		return
	}

	c.Set("pipelineId", id)
	h.runAnalysis(c, rec)
}

// analyzeLatest runs an enhanced analysis against the most recently updated
// failed run, without the caller needing its ID.
func (h *Handler) analyzeLatest(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Logs) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "logs is required", nil)
		return
	}
	if strings.TrimSpace(req.Error) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "error is required", nil)
		return
	}

	rec, err := h.Svc.LatestFailureRecord(c.Request.Context(), req.Logs, req.Error, req.PipelineConfig)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no failed pipeline runs", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load pipeline", nil)
		return
	}

	h.runAnalysis(c, rec)
}

func (h *Handler) runAnalysis(c *gin.Context, rec analysis.FailureRecord) {
	result := h.Analyzer.AnalyzeEnhanced(c.Request.Context(), rec)
	c.Set("aiProvider", result.Provider)

	docURLs := result.ReferencedDocs
	if docURLs == nil {
		docURLs = []string{}
	}
	respond.OK(c, gin.H{
		"analysis":   result.Analysis,
		"sections":   result.Sections,
		"velaDocs":   docURLs,
		"aiProvider": result.Provider,
		"timestamp":  result.Timestamp.Format(time.RFC3339),
	})
}

func toResponse(run Pipeline) pipelineResponse {
	return pipelineResponse{
		ID:          run.ID,
		RepoName:    run.RepoName,
		Branch:      run.Branch,
		Status:      string(run.Status),
		Progress:    run.Progress,
		Duration:    run.Duration,
		Author:      run.Author,
		CommitHash:  run.CommitHash,
		CurrentStep: run.CurrentStep,
		VelaBuildID: run.VelaBuildID,
		CreatedAt:   run.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   run.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
