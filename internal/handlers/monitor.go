package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/internal/monitor"
	"github.com/riverwatchhq/riverwatch/pkg/response"
)

// MonitorRunner executes a monitoring sweep on demand.
type MonitorRunner interface {
	RunOnce(ctx context.Context, input monitor.RunInput) (*monitor.RunSummary, error)
}

// MonitorHandler exposes HTTP endpoints for triggering and inspecting
// monitoring sweeps.
type MonitorHandler struct {
	runner MonitorRunner
	state  *monitor.RunStateStore
}

// NewMonitorHandler constructs a monitor handler. The state store is optional.
func NewMonitorHandler(runner MonitorRunner, state *monitor.RunStateStore) (*MonitorHandler, error) {
	if runner == nil {
		return nil, fmt.Errorf("monitor handler: runner is required")
	}
	return &MonitorHandler{runner: runner, state: state}, nil
}

type triggerRunPayload struct {
	UserID string `json:"user_id"`
}

// TriggerRun executes a sweep immediately and returns its summary. The body
// is optional; a user_id narrows the sweep to that user.
func (h *MonitorHandler) TriggerRun(c *gin.Context) {
	var payload triggerRunPayload
	if c.Request != nil && c.Request.ContentLength != 0 {
		if !bindAndValidate(c, &payload) {
			return
		}
	}

	summary, err := h.runner.RunOnce(requestContext(c), monitor.RunInput{
		Trigger: monitor.TriggerManual,
		UserID:  strings.TrimSpace(payload.UserID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

// Status reports when the last sweep ran and how it ended.
func (h *MonitorHandler) Status(c *gin.Context) {
	if h.state == nil {
		response.Success(c, http.StatusOK, gin.H{"status": "unknown"})
		return
	}

	at, status, err := h.state.LastRun(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if at.IsZero() {
		response.Success(c, http.StatusOK, gin.H{"status": "pending"})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"last_run_at": at, "status": status})
}
