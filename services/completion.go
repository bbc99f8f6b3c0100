package services

import (
	"math"
	"time"

	"edufoyer/models"
	"edufoyer/utils"

	"gorm.io/gorm"
)

// CompletionResult reports what a completion call did. FirstCompletion is
// false for repeat calls: a task feeds the solver's stats and rewards exactly
// once no matter how many completion-triggering requests arrive.
type CompletionResult struct {
	Task            *models.Task
	Assignment      *models.Assignment
	FirstCompletion bool
}

// CompleteByAsker resolves the task on behalf of its asker, recording the
// asker's feedback for the solver.
func CompleteByAsker(db *gorm.DB, taskID, askerID uint, rating *int, comment string) (*CompletionResult, error) {
	task, err := loadTaskForCompletion(db, taskID)
	if err != nil {
		return nil, err
	}
	if task.AskerID != askerID {
		return nil, ForbiddenErr("only the asker of this task can complete it")
	}
	return complete(db, task, rating, comment, true)
}

// CompleteByWorker resolves the task on behalf of the assigned solver,
// recording the solver's reciprocal feedback for the asker.
func CompleteByWorker(db *gorm.DB, taskID, solverID uint, rating *int, comment string) (*CompletionResult, error) {
	task, err := loadTaskForCompletion(db, taskID)
	if err != nil {
		return nil, err
	}
	if *task.SolverID != solverID {
		return nil, ForbiddenErr("only the assigned solver can complete this task")
	}
	return complete(db, task, rating, comment, false)
}

func loadTaskForCompletion(db *gorm.DB, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFoundErr("task not found")
		}
		return nil, err
	}
	if task.SolverID == nil {
		return nil, ConflictErr("task has no assigned solver yet")
	}
	return &task, nil
}

func complete(db *gorm.DB, task *models.Task, rating *int, comment string, byAsker bool) (*CompletionResult, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ValidationErr("rating must be between 1 and 5")
	}
	solverID := *task.SolverID
	now := time.Now()

	var assignment models.Assignment
	var first bool
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).Where("task_id = ?", task.ID).First(&assignment).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			// An assignment can be missing when the task was matched outside
			// the normal accept flow; recreate it rather than fail.
			assignment = models.Assignment{
				TaskID:           task.ID,
				SolverID:         solverID,
				ResolutionStatus: models.ResolutionPending,
				AssignedAt:       now,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		// Read before write: this flag alone decides whether stats and
		// rewards move.
		wasAlreadyCompleted := assignment.ResolutionStatus == models.ResolutionSessionCompleted

		assignment.ResolutionStatus = models.ResolutionSessionCompleted
		if assignment.ResolvedAt == nil {
			assignment.ResolvedAt = &now
		}
		if byAsker {
			if rating != nil {
				assignment.FeedbackRating = rating
			}
			if comment != "" {
				assignment.FeedbackComment = &comment
			}
		} else {
			if rating != nil {
				assignment.ReciprocalRating = rating
			}
			if comment != "" {
				assignment.ReciprocalComment = &comment
			}
		}
		if err := tx.Save(&assignment).Error; err != nil {
			return err
		}

		taskUpdates := map[string]interface{}{
			"status":    models.TaskStatusResolved,
			"is_solved": true,
		}
		if task.Rating == nil && rating != nil {
			taskUpdates["rating"] = *rating
			task.Rating = rating
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(taskUpdates).Error; err != nil {
			return err
		}
		task.Status = models.TaskStatusResolved
		task.IsSolved = true

		if wasAlreadyCompleted {
			return nil
		}
		first = true
		if err := tx.Model(&models.Solver{}).Where("id = ?", solverID).
			Update("completed_count", gorm.Expr("completed_count + 1")).Error; err != nil {
			return err
		}
		return RecomputeRewards(tx, solverID)
	})
	if err != nil {
		return nil, err
	}
	return &CompletionResult{Task: task, Assignment: &assignment, FirstCompletion: first}, nil
}

type rewardRow struct {
	TaskID   uint
	Category string
	Rating   int
}

// RecomputeRewards rebuilds the solver's entire ledger from rating history.
// Every prior payout is revised whenever a new rating moves the average; the
// wallet balance is overwritten unconditionally. The wallet row is locked for
// the duration, which serializes concurrent recomputes per solver.
func RecomputeRewards(tx *gorm.DB, solverID uint) error {
	var wallet models.Wallet
	err := lockForUpdate(tx).Where("solver_id = ?", solverID).First(&wallet).Error
	if err == gorm.ErrRecordNotFound {
		wallet = models.Wallet{SolverID: solverID}
		if err := tx.Create(&wallet).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var rows []rewardRow
	if err := tx.Table("assignments").
		Select("assignments.task_id, tasks.category, assignments.feedback_rating AS rating").
		Joins("JOIN tasks ON tasks.id = assignments.task_id").
		Where("assignments.solver_id = ? AND assignments.resolution_status = ? AND assignments.feedback_rating IS NOT NULL",
			solverID, models.ResolutionSessionCompleted).
		Order("assignments.task_id ASC").
		Scan(&rows).Error; err != nil {
		return err
	}

	if err := tx.Where("wallet_id = ?", wallet.ID).Delete(&models.WalletEntry{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return tx.Model(&wallet).Updates(map[string]interface{}{
			"balance":      0,
			"total_earned": 0,
		}).Error
	}

	var sum float64
	for _, r := range rows {
		sum += float64(r.Rating)
	}
	avg := utils.RoundFloat(sum/float64(len(rows)), 1)

	entries := make([]models.WalletEntry, 0, len(rows))
	var total int64
	for _, r := range rows {
		coins := CoinsFor(r.Category, avg)
		total += coins
		entries = append(entries, models.WalletEntry{
			WalletID:  wallet.ID,
			TaskID:    r.TaskID,
			Category:  r.Category,
			Coins:     coins,
			Rating:    r.Rating,
			AvgRating: avg,
		})
	}
	if err := tx.Create(&entries).Error; err != nil {
		return err
	}
	return tx.Model(&wallet).Updates(map[string]interface{}{
		"balance":      total,
		"total_earned": total,
	}).Error
}

// CoinsFor applies the reward formula: the category base docked by a fifth of
// the base per rating point below 5, using the rolling average rounded to one
// decimal. Rounded half away from zero.
func CoinsFor(category string, avgRating float64) int64 {
	base := models.BaseReward(category)
	return int64(math.Round(base - (base/5)*(5-avgRating)))
}
