package configopt

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vela-dashboard-backend/internal/llm"
	"vela-dashboard-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the config optimizer service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches config optimizer routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/config/analyze", h.analyze)
}

type analyzeConfigRequest struct {
	Config       string `json:"config"`
	AnalysisType string `json:"analysisType"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Config == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "config is required", nil)
		return
	}
	if req.AnalysisType == "" {
		req.AnalysisType = TypeAnalyze
	}

	result, err := h.Svc.Run(c.Request.Context(), req.Config, req.AnalysisType)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidYAML):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrUnknownType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "analysisType must be analyze or optimize", nil)
		case errors.Is(err, llm.ErrNotConfigured):
			respond.Error(c, http.StatusBadGateway, "provider_unconfigured", "no analysis provider configured", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "provider_error", "configuration analysis failed", nil)
		}
		return
	}

	respond.OK(c, gin.H{"result": result})
}
