package handler

import "time"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	AuditLog  string            `json:"audit_log"`
	Details   map[string]string `json:"details,omitempty"`
}

// NotificationLogResponse represents one audit log entry
type NotificationLogResponse struct {
	ID        uint      `json:"id"`
	PageID    string    `json:"page_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	ErrorMsg  string    `json:"error_msg,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SchedulerStatusResponse represents the scheduler state
type SchedulerStatusResponse struct {
	Running bool   `json:"running"`
	NextRun string `json:"next_run,omitempty"`
	LastRun string `json:"last_run,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
