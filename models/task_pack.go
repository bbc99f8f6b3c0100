package models

import "time"

// TaskPack tracks an asker's purchased bulk-task balance. Checkout happens in
// another system; this core only decrements Remaining opportunistically after
// a successful create, and a failed decrement never fails the create.
type TaskPack struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AskerID   uint      `gorm:"not null;index" json:"asker_id"`
	Remaining int64     `gorm:"not null;default:0" json:"remaining"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (TaskPack) TableName() string {
	return "task_packs"
}
