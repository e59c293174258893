package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lingua/cmsinit/internal/orchestrator"
)

// orchestratorService is the subset of *orchestrator.Orchestrator used by the
// HTTP handlers.
type orchestratorService interface {
	RunBootstrap(ctx context.Context) (*orchestrator.BootstrapResult, error)
	RunDeepHealth(ctx context.Context) map[string]orchestrator.ProbeResult
	IsReady() bool
	IsBootstrapInProgress() bool
	LastResult() (*orchestrator.BootstrapResult, bool)
}

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	orchestrator     orchestratorService
	bootstrapTimeout time.Duration
}

// Bootstrap handles POST /api/v1/bootstrap.
//
//	@Summary		Start a bootstrap run
//	@Description	Ensures the Translation content type exists and is published. The run continues in the background; poll GET /api/v1/bootstrap for the result.
//	@Tags			bootstrap
//	@Produce		json
//	@Success		202	{object}	map[string]string
//	@Failure		409	{object}	map[string]string
//	@Router			/api/v1/bootstrap [post]
func (h *Handler) Bootstrap(c *gin.Context) {
	if h.orchestrator.IsBootstrapInProgress() {
		c.JSON(http.StatusConflict, gin.H{"status": "in-progress"})
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.bootstrapTimeout) //nolint:contextcheck
		defer cancel()
		//nolint:errcheck
		h.orchestrator.RunBootstrap(ctx)
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// GetBootstrap handles GET /api/v1/bootstrap.
//
//	@Summary	Last bootstrap result
//	@Tags		bootstrap
//	@Produce	json
//	@Success	200	{object}	orchestrator.BootstrapResult
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/bootstrap [get]
func (h *Handler) GetBootstrap(c *gin.Context) {
	result, ok := h.orchestrator.LastResult()
	if !ok {
		status := "not-run"
		if h.orchestrator.IsBootstrapInProgress() {
			status = "in-progress"
		}
		c.JSON(http.StatusNotFound, gin.H{"status": status})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Health handles GET /health. It always returns 200.
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"mode":   "shallow",
	})
}

// DeepHealth handles GET /health/deep and returns 200 only when every
// dependency probe is OK.
//
//	@Summary	Dependency health
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	503	{object}	map[string]any
//	@Router		/health/deep [get]
func (h *Handler) DeepHealth(c *gin.Context) {
	probes := h.orchestrator.RunDeepHealth(c.Request.Context())

	allOK := true
	for _, p := range probes {
		if !p.OK {
			allOK = false
			break
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !allOK {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"dependencies": probes,
	})
}

// Ready handles GET /ready. It returns 200 only after a successful bootstrap.
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]bool
//	@Failure	503	{object}	map[string]bool
//	@Router		/ready [get]
func (h *Handler) Ready(c *gin.Context) {
	if h.orchestrator.IsReady() {
		c.JSON(http.StatusOK, gin.H{"ready": true})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
}
