package models

import "time"

// Task categories. The category fixes the session time budget and the base
// reward used by the wallet recompute.
const (
	CategorySmall  = "small"
	CategoryMedium = "medium"
	CategoryLarge  = "large"
)

// Task statuses. The core flow only exercises open -> assigned -> resolved;
// closed and needs_info exist for moderation tooling and are valid terminal-ish
// states.
const (
	TaskStatusOpen      = "open"
	TaskStatusAssigned  = "assigned"
	TaskStatusResolved  = "resolved"
	TaskStatusClosed    = "closed"
	TaskStatusNeedsInfo = "needs_info"
)

type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Category    string    `gorm:"type:varchar(10);not null;index" json:"category"`
	Subject     string    `gorm:"type:varchar(100);index" json:"subject"`
	Description string    `gorm:"type:text" json:"description"`
	AskerID     uint      `gorm:"not null;index" json:"asker_id"`
	SolverID    *uint     `gorm:"index" json:"solver_id"`
	Status      string    `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Rating      *int      `json:"rating,omitempty"`
	IsSolved    bool      `gorm:"not null;default:false" json:"is_solved"`
	Relevance   *string   `gorm:"type:varchar(20)" json:"relevance,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// ValidCategory reports whether c is one of the three task categories.
func ValidCategory(c string) bool {
	return c == CategorySmall || c == CategoryMedium || c == CategoryLarge
}

// BaseReward returns the base coin reward for a category (40/60/100).
func BaseReward(category string) float64 {
	switch category {
	case CategorySmall:
		return 40
	case CategoryMedium:
		return 60
	case CategoryLarge:
		return 100
	}
	return 0
}

// SessionMinutes returns the advisory session duration for a category
// (20/30/60). The room service receives it as a hint only.
func SessionMinutes(category string) int {
	switch category {
	case CategorySmall:
		return 20
	case CategoryMedium:
		return 30
	case CategoryLarge:
		return 60
	}
	return 30
}
