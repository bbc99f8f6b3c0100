package services

import (
	"log"
	"strings"
	"time"

	"edufoyer/models"

	"gorm.io/gorm"
)

// CreateTask runs the quota check and writes the task with status open.
// Notification fan-out, the relevance check and the task-pack decrement are
// the caller's responsibility, after this returns.
func CreateTask(db *gorm.DB, policy QuotaPolicy, askerID uint, category, subject, description string) (*models.Task, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !models.ValidCategory(category) {
		return nil, ValidationErr("category must be one of small, medium, large")
	}
	if strings.TrimSpace(description) == "" {
		return nil, ValidationErr("description is required")
	}

	q := CheckQuota(db, policy, askerID, category, time.Now())
	if !q.Allowed {
		return nil, QuotaExceededErr(q.Reason).
			WithDetail("category", category).
			WithDetail("counts", q.Counts)
	}

	task := models.Task{
		Category:    category,
		Subject:     strings.TrimSpace(subject),
		Description: description,
		AskerID:     askerID,
		Status:      models.TaskStatusOpen,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask loads a task visible to the given actor: its asker or its assigned
// solver.
func GetTask(db *gorm.DB, taskID, actorID uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundErr("task not found")
		}
		return nil, err
	}
	if task.AskerID != actorID && (task.SolverID == nil || *task.SolverID != actorID) {
		return nil, ForbiddenErr("not a participant of this task")
	}
	return &task, nil
}

// ListTasksForAsker returns the asker's tasks, newest first.
func ListTasksForAsker(db *gorm.DB, askerID uint, limit, offset int) ([]models.Task, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var tasks []models.Task
	err := db.Where("asker_id = ?", askerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&tasks).Error
	return tasks, err
}

// DecrementTaskPack opportunistically takes one task off the asker's bulk
// pack. Runs in the background after a successful create; any failure is
// logged and dropped, never surfaced.
func DecrementTaskPack(db *gorm.DB, askerID uint) {
	res := db.Model(&models.TaskPack{}).
		Where("asker_id = ? AND remaining > 0", askerID).
		Update("remaining", gorm.Expr("remaining - 1"))
	if res.Error != nil {
		log.Printf("[taskpack] decrement failed for asker %d: %v", askerID, res.Error)
	}
}
