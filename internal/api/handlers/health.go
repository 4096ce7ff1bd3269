package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/pipeline"
	"github.com/gin-gonic/gin"
)

// StatusHandler serves the driver's published state
type StatusHandler struct {
	board *pipeline.StatusBoard
}

func NewStatusHandler(board *pipeline.StatusBoard) *StatusHandler {
	return &StatusHandler{board: board}
}

// HealthCheck returns the health status of the bridge
func (h *StatusHandler) HealthCheck(c *gin.Context) {
	status := h.board.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"artifact": gin.H{
			"path":     status.Artifact,
			"readable": status.LastOutcome != pipeline.OutcomeSourceUnavailable,
		},
		"retry_queued": status.RetryQueued,
	})
}

// GetStatus returns the latest pipeline snapshot
func (h *StatusHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.board.Snapshot())
}
