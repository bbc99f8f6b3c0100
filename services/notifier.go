package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"edufoyer/models"

	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Recipients are fanned out in batches of this size; a batch settles fully
// before the next one starts.
const notifyBatchSize = 10

// Event is one notification fan-out: a persisted in-app notification per
// recipient plus a best-effort realtime broadcast.
type Event struct {
	Type       string `json:"type"`
	TaskID     uint   `json:"task_id"`
	Subject    string `json:"subject,omitempty"`
	Message    string `json:"message"`
	Recipients []uint `json:"-"`
}

// TopicForSubject is the realtime channel solvers watching a subject consume.
func TopicForSubject(subject string) string {
	return "task:subject:" + strings.ToLower(strings.TrimSpace(subject))
}

// TopicForUser is the realtime channel for one user's direct events.
func TopicForUser(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Notify delivers ev to every recipient. Callers run it in a goroutine after
// the primary state transition commits; nothing here ever reaches the
// request's response. A single recipient's failure is logged and the batch
// carries on. rdb may be nil, which skips the realtime channel entirely.
func Notify(ctx context.Context, db *gorm.DB, rdb *redis.Client, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[notifier] marshal %s event for task %d: %v", ev.Type, ev.TaskID, err)
		return
	}

	for start := 0; start < len(ev.Recipients); start += notifyBatchSize {
		end := start + notifyBatchSize
		if end > len(ev.Recipients) {
			end = len(ev.Recipients)
		}
		var wg sync.WaitGroup
		for _, rid := range ev.Recipients[start:end] {
			wg.Add(1)
			go func(rid uint) {
				defer wg.Done()
				deliverOne(ctx, db, rdb, ev, payload, rid)
			}(rid)
		}
		wg.Wait()
	}

	// Subject topic broadcast: best effort, no persistence, no retry.
	if rdb != nil && ev.Subject != "" {
		if err := rdb.Publish(ctx, TopicForSubject(ev.Subject), payload).Err(); err != nil {
			log.Printf("[notifier] publish %s: %v", TopicForSubject(ev.Subject), err)
		}
	}
}

func deliverOne(ctx context.Context, db *gorm.DB, rdb *redis.Client, ev Event, payload []byte, recipientID uint) {
	n := models.Notification{
		RecipientID: recipientID,
		Type:        ev.Type,
		TaskID:      ev.TaskID,
		Message:     ev.Message,
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("[notifier] persist %s for user %d: %v", ev.Type, recipientID, err)
	}
	if rdb != nil {
		if err := rdb.Publish(ctx, TopicForUser(recipientID), payload).Err(); err != nil {
			log.Printf("[notifier] publish %s: %v", TopicForUser(recipientID), err)
		}
	}
}

// EligibleSolverIDs lists solvers who may accept the task: speciality match on
// the subject, or everyone when the task has no subject.
func EligibleSolverIDs(db *gorm.DB, task *models.Task) ([]uint, error) {
	var solvers []models.Solver
	if err := db.Find(&solvers).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(solvers))
	for i := range solvers {
		if task.Subject == "" || solvers[i].HasSpeciality(task.Subject) {
			ids = append(ids, solvers[i].ID)
		}
	}
	return ids, nil
}
