package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"edufoyer/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory store. A single connection keeps
// concurrent test traffic serialized the way the production row locks would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Task{},
		&models.Solver{},
		&models.Assignment{},
		&models.Wallet{},
		&models.WalletEntry{},
		&models.Notification{},
		&models.TaskPack{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func mkSolver(t *testing.T, db *gorm.DB, id uint, specs ...string) *models.Solver {
	t.Helper()
	s := models.Solver{
		ID:           id,
		Name:         fmt.Sprintf("solver-%d", id),
		Specialities: models.NormalizeSpecialities(specs),
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create solver: %v", err)
	}
	return &s
}

func mkTask(t *testing.T, db *gorm.DB, askerID uint, category, subject string) *models.Task {
	t.Helper()
	task := models.Task{
		Category:    category,
		Subject:     subject,
		Description: "test task",
		AskerID:     askerID,
		Status:      models.TaskStatusOpen,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	return &task
}

// fakeRooms satisfies RoomProvisioner with a scripted outcome.
type fakeRooms struct {
	err   error
	names []string
}

func (f *fakeRooms) CreateRoom(ctx context.Context, name string, maxParticipants, durationMinutes int) (bool, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

func kindOf(t *testing.T, err error) string {
	t.Helper()
	se, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *services.Error, got %T: %v", err, err)
	}
	return se.Kind
}
