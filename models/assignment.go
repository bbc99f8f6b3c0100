package models

import "time"

// Assignment resolution statuses.
const (
	ResolutionPending          = "pending"
	ResolutionSessionScheduled = "session_scheduled"
	ResolutionSessionCompleted = "session_completed"
)

// Assignment is the join record between a task and the solver who accepted
// it. Exactly one exists per task once the task is assigned (unique index on
// task_id). session_completed is reached logically once no matter how many
// completion requests arrive.
type Assignment struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	TaskID            uint       `gorm:"not null;uniqueIndex" json:"task_id"`
	SolverID          uint       `gorm:"not null;index" json:"solver_id"`
	ResolutionStatus  string     `gorm:"type:varchar(30);not null;default:'pending'" json:"resolution_status"`
	RoomName          string     `gorm:"type:varchar(100)" json:"room_name"`
	AssignedAt        time.Time  `json:"assigned_at"`
	ResolvedAt        *time.Time `json:"resolved_at"`
	FeedbackRating    *int       `json:"feedback_rating"`
	FeedbackComment   *string    `gorm:"type:text" json:"feedback_comment"`
	ReciprocalRating  *int       `json:"reciprocal_rating"`
	ReciprocalComment *string    `gorm:"type:text" json:"reciprocal_comment"`
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"-"`
}

func (Assignment) TableName() string {
	return "assignments"
}
