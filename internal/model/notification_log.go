package model

import (
	"time"

	"gorm.io/gorm"
)

// Notification attempt outcomes recorded in the audit log.
const (
	NotificationStatusSent           = "sent"
	NotificationStatusDeliveryFailed = "delivery_failed"
	NotificationStatusLatchFailed    = "latch_failed"
)

// NotificationLog is an audit row for one notification attempt. It is
// never consulted for eligibility; the remote notified checkbox is the
// sole idempotency latch.
type NotificationLog struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	PageID    string         `json:"page_id" gorm:"type:varchar(255);not null;index"`
	Title     string         `json:"title" gorm:"type:varchar(255)"`
	Status    string         `json:"status" gorm:"type:varchar(50);not null"`
	ErrorMsg  string         `json:"error_msg" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for NotificationLog
func (NotificationLog) TableName() string {
	return "notification_logs"
}
