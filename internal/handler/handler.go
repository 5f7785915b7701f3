package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"purchase-order-relay-go/internal/metrics"
	"purchase-order-relay-go/internal/model"
	"purchase-order-relay-go/internal/scheduler"
	"purchase-order-relay-go/internal/store"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	repo      *store.Repository
	scheduler *scheduler.Scheduler
	metrics   *metrics.Metrics
}

// NewHandlers creates new HTTP handlers. repo may be nil when no audit
// database is configured.
func NewHandlers(repo *store.Repository, sched *scheduler.Scheduler, m *metrics.Metrics) *Handlers {
	return &Handlers{
		repo:      repo,
		scheduler: sched,
		metrics:   m,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/healthz", h.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})))

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/logs", h.GetLogs)

		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once", h.RunOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		AuditLog:  "disabled",
		Details:   make(map[string]string),
	}

	if h.repo != nil {
		response.AuditLog = "ok"
		if _, err := h.repo.List(1, 0); err != nil {
			response.Status = "error"
			response.AuditLog = "error"
			logrus.Errorf("Audit log health check failed: %v", err)
		}
	}

	if h.scheduler.IsRunning() {
		response.Details["scheduler"] = "running"
		response.Details["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
		response.Details["last_run"] = h.scheduler.GetLastRun().Format(time.RFC3339)
	} else {
		response.Details["scheduler"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetLogs returns notification attempts, newest first
func (h *Handlers) GetLogs(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "audit_log_disabled",
			Message: "No audit database is configured",
			Code:    http.StatusNotFound,
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, err := h.repo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch notification logs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]NotificationLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toLogResponse(entry))
	}

	c.JSON(http.StatusOK, responses)
}

// StartScheduler starts the periodic sync
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "scheduler_error",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopScheduler stops the periodic sync
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scheduler_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// RunOnce triggers a single sync run
func (h *Handlers) RunOnce(c *gin.Context) {
	if err := h.scheduler.RunOnce(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "sync_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// GetSchedulerStatus returns the scheduler state
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := SchedulerStatusResponse{
		Running: h.scheduler.IsRunning(),
	}
	if status.Running {
		status.NextRun = h.scheduler.GetNextRun().Format(time.RFC3339)
		status.LastRun = h.scheduler.GetLastRun().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, status)
}

func toLogResponse(entry model.NotificationLog) NotificationLogResponse {
	return NotificationLogResponse{
		ID:        entry.ID,
		PageID:    entry.PageID,
		Title:     entry.Title,
		Status:    entry.Status,
		ErrorMsg:  entry.ErrorMsg,
		CreatedAt: entry.CreatedAt,
	}
}
