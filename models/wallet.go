package models

import "time"

// Wallet holds a solver's coin balance. The ledger is a derived view: the
// reward engine replaces it wholesale on every recompute, so at all times
// Balance == TotalEarned == sum of the entries.
type Wallet struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SolverID    uint      `gorm:"not null;uniqueIndex" json:"solver_id"`
	Balance     int64     `gorm:"not null;default:0" json:"balance"`
	TotalEarned int64     `gorm:"not null;default:0" json:"total_earned"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// WalletEntry is one ledger row: the coins granted for a completed task,
// together with the rating and the average rating in effect when the row was
// computed.
type WalletEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	WalletID  uint      `gorm:"not null;index" json:"-"`
	TaskID    uint      `gorm:"not null;index" json:"task_id"`
	Category  string    `gorm:"type:varchar(10);not null" json:"category"`
	Coins     int64     `gorm:"not null" json:"coins"`
	Rating    int       `gorm:"not null" json:"rating"`
	AvgRating float64   `gorm:"not null" json:"avg_rating"`
	CreatedAt time.Time `json:"created_at"`
}

func (WalletEntry) TableName() string {
	return "wallet_entries"
}
