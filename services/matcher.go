package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"edufoyer/models"

	"gorm.io/gorm"
)

// RoomWaitLimit bounds how long an accept call waits on session provisioning.
// Expiry is not treated as failure: the room may already exist from a previous
// attempt, so the accept proceeds.
const RoomWaitLimit = 10 * time.Second

// RoomProvisioner creates a session room. Implementations must be idempotent
// under retries: a duplicate create reports created=false, not an error.
type RoomProvisioner interface {
	CreateRoom(ctx context.Context, name string, maxParticipants, durationMinutes int) (created bool, err error)
}

// RoomName returns the session-room handle for a task.
func RoomName(taskID uint) string {
	return fmt.Sprintf("task-%d", taskID)
}

// Accept matches a solver to an open task. The open->assigned transition is a
// conditional update on the stored status, which is the sole guard against
// double assignment: if the update matches no row the caller lost the race.
func Accept(db *gorm.DB, rooms RoomProvisioner, taskID, solverID uint) (*models.Task, *models.Assignment, error) {
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, NotFoundErr("task not found")
		}
		return nil, nil, err
	}
	var solver models.Solver
	if err := db.First(&solver, solverID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, NotFoundErr("solver not found")
		}
		return nil, nil, err
	}

	if task.Status != models.TaskStatusOpen {
		return nil, nil, acceptConflict(&task, solverID)
	}
	// Tasks without a subject are open to every solver.
	if task.Subject != "" && !solver.HasSpeciality(task.Subject) {
		return nil, nil, ConflictErr("solver has no matching speciality for this subject").
			WithDetail("subject", task.Subject)
	}

	// Provision before the status flip: the room API is idempotent, so a lost
	// race after this point leaves nothing behind but a reusable room.
	if err := provisionRoom(rooms, &task); err != nil {
		return nil, nil, err
	}

	var assignment models.Assignment
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", task.ID, models.TaskStatusOpen).
			Updates(map[string]interface{}{
				"status":    models.TaskStatusAssigned,
				"solver_id": solverID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race between our read and the update. Re-read so the
			// conflict message can distinguish a benign retry.
			if err := tx.First(&task, task.ID).Error; err != nil {
				return err
			}
			return acceptConflict(&task, solverID)
		}
		assignment = models.Assignment{
			TaskID:           task.ID,
			SolverID:         solverID,
			ResolutionStatus: models.ResolutionSessionScheduled,
			RoomName:         RoomName(task.ID),
			AssignedAt:       time.Now(),
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, nil, err
	}

	task.Status = models.TaskStatusAssigned
	task.SolverID = &solverID
	return &task, &assignment, nil
}

func acceptConflict(task *models.Task, solverID uint) *Error {
	if task.SolverID != nil && *task.SolverID == solverID {
		return ConflictErr("already accepted by you")
	}
	return ConflictErr("already assigned to another solver")
}

// provisionRoom creates the session room under the bounded wait. Deadline
// expiry and duplicate-create are tolerated; everything else is fatal to the
// accept call.
func provisionRoom(rooms RoomProvisioner, task *models.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), RoomWaitLimit)
	defer cancel()
	_, err := rooms.CreateRoom(ctx, RoomName(task.ID), 2, models.SessionMinutes(task.Category))
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return nil
	}
	return DependencyErr("session provisioning failed: " + err.Error())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
