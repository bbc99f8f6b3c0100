package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"edufoyer/models"
)

func TestAcceptAssignsOpenTask(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "Math", "physics")
	task := mkTask(t, db, 1, models.CategoryMedium, "math")

	rooms := &fakeRooms{}
	got, assignment, err := Accept(db, rooms, task.ID, 10)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != models.TaskStatusAssigned || got.SolverID == nil || *got.SolverID != 10 {
		t.Fatalf("unexpected task state: %+v", got)
	}
	if assignment.ResolutionStatus != models.ResolutionSessionScheduled {
		t.Fatalf("expected session_scheduled, got %s", assignment.ResolutionStatus)
	}
	if assignment.RoomName != RoomName(task.ID) {
		t.Fatalf("expected room %s, got %s", RoomName(task.ID), assignment.RoomName)
	}
	if len(rooms.names) != 1 || rooms.names[0] != RoomName(task.ID) {
		t.Fatalf("expected one room provisioned, got %v", rooms.names)
	}

	var stored models.Task
	if err := db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if stored.Status != models.TaskStatusAssigned {
		t.Fatalf("stored status = %s", stored.Status)
	}
}

func TestAcceptConflictMessages(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "math")
	mkSolver(t, db, 11, "math")
	task := mkTask(t, db, 1, models.CategorySmall, "math")

	if _, _, err := Accept(db, &fakeRooms{}, task.ID, 10); err != nil {
		t.Fatalf("winner accept: %v", err)
	}

	// A rival's attempt is a genuine race loss.
	_, _, err := Accept(db, &fakeRooms{}, task.ID, 11)
	if err == nil || err.Error() != "already assigned to another solver" {
		t.Fatalf("expected rival conflict, got %v", err)
	}
	if kindOf(t, err) != KindConflict {
		t.Fatalf("expected conflict kind, got %v", err)
	}

	// The winner retrying is benign and told so.
	_, _, err = Accept(db, &fakeRooms{}, task.ID, 10)
	if err == nil || err.Error() != "already accepted by you" {
		t.Fatalf("expected retry conflict, got %v", err)
	}
}

func TestAcceptEligibility(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "physics")
	task := mkTask(t, db, 1, models.CategorySmall, "math")

	_, _, err := Accept(db, &fakeRooms{}, task.ID, 10)
	if err == nil || kindOf(t, err) != KindConflict {
		t.Fatalf("expected eligibility conflict, got %v", err)
	}

	// Case-insensitive match passes.
	db2 := newTestDB(t)
	mkSolver(t, db2, 10, "MATH")
	task2 := mkTask(t, db2, 1, models.CategorySmall, "Math")
	if _, _, err := Accept(db2, &fakeRooms{}, task2.ID, 10); err != nil {
		t.Fatalf("case-insensitive accept: %v", err)
	}
}

func TestAcceptSubjectlessTaskOpenToAnySolver(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "chemistry")
	task := mkTask(t, db, 1, models.CategorySmall, "")

	if _, _, err := Accept(db, &fakeRooms{}, task.ID, 10); err != nil {
		t.Fatalf("subject-less accept should skip eligibility, got %v", err)
	}
}

func TestAcceptNotFound(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "math")
	if _, _, err := Accept(db, &fakeRooms{}, 999, 10); err == nil || kindOf(t, err) != KindNotFound {
		t.Fatalf("expected not found for task, got %v", err)
	}
	task := mkTask(t, db, 1, models.CategorySmall, "math")
	if _, _, err := Accept(db, &fakeRooms{}, task.ID, 999); err == nil || kindOf(t, err) != KindNotFound {
		t.Fatalf("expected not found for solver, got %v", err)
	}
}

func TestAcceptRoomHardFailureAborts(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "math")
	task := mkTask(t, db, 1, models.CategorySmall, "math")

	_, _, err := Accept(db, &fakeRooms{err: errors.New("room service exploded")}, task.ID, 10)
	if err == nil || kindOf(t, err) != KindDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	// Nothing committed: the task is still open and acceptable.
	var stored models.Task
	if err := db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if stored.Status != models.TaskStatusOpen {
		t.Fatalf("task should remain open, got %s", stored.Status)
	}
	var n int64
	db.Model(&models.Assignment{}).Where("task_id = ?", task.ID).Count(&n)
	if n != 0 {
		t.Fatalf("expected no assignment rows, got %d", n)
	}
}

func TestAcceptRoomTimeoutTolerated(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "math")
	task := mkTask(t, db, 1, models.CategorySmall, "math")

	got, _, err := Accept(db, &fakeRooms{err: context.DeadlineExceeded}, task.ID, 10)
	if err != nil {
		t.Fatalf("timeout must not fail the accept: %v", err)
	}
	if got.Status != models.TaskStatusAssigned {
		t.Fatalf("expected assigned, got %s", got.Status)
	}
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	mkSolver(t, db, 10, "math")
	mkSolver(t, db, 11, "math")
	task := mkTask(t, db, 1, models.CategoryLarge, "math")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, solverID := range []uint{10, 11} {
		wg.Add(1)
		go func(i int, solverID uint) {
			defer wg.Done()
			_, _, errs[i] = Accept(db, &fakeRooms{}, task.ID, solverID)
		}(i, solverID)
	}
	wg.Wait()

	var winners, losers int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case err.Error() == "already assigned to another solver":
			losers++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("expected exactly one winner and one loser, got %d/%d", winners, losers)
	}

	var stored models.Task
	if err := db.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if stored.SolverID == nil {
		t.Fatal("task has no solver after concurrent accepts")
	}
	var n int64
	db.Model(&models.Assignment{}).Where("task_id = ?", task.ID).Count(&n)
	if n != 1 {
		t.Fatalf("expected exactly one assignment, got %d", n)
	}
}
