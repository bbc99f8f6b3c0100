package models

import "time"

// Notification event types.
const (
	NotifyTaskCreated  = "task_created"
	NotifyTaskAssigned = "task_assigned"
	NotifyTaskResolved = "task_resolved"
)

// Notification is a persisted in-app notification. Realtime delivery rides on
// Redis separately and is best-effort only.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RecipientID uint       `gorm:"not null;index" json:"recipient_id"`
	Type        string     `gorm:"type:varchar(30);not null" json:"type"`
	TaskID      uint       `gorm:"not null;index" json:"task_id"`
	Message     string     `gorm:"type:varchar(255);not null" json:"message"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
