package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"edufoyer/models"

	"gorm.io/gorm"
)

// Per-day creation limits. The total cap is checked before any per-category
// cap, so the 6th task of a day is always rejected with the total-limit
// reason.
const DailyTotalLimit = 5

var CategoryDailyLimits = map[string]int64{
	models.CategorySmall:  2,
	models.CategoryMedium: 2,
	models.CategoryLarge:  1,
}

// FailureMode controls what a quota check does when the count lookup itself
// fails.
type FailureMode int

const (
	FailOpen FailureMode = iota // allow the request, log the failure
	FailClosed
)

// QuotaPolicy makes the lookup-failure trade-off explicit instead of burying
// it in error handling. The default fails open: availability over strict
// enforcement.
type QuotaPolicy struct {
	OnLookupFailure FailureMode
}

var DefaultQuotaPolicy = QuotaPolicy{OnLookupFailure: FailOpen}

// QuotaCounts is the per-category tally for one asker and one calendar day.
// Derived fresh on every check, never stored.
type QuotaCounts struct {
	Small  int64 `json:"small"`
	Medium int64 `json:"medium"`
	Large  int64 `json:"large"`
	Total  int64 `json:"total"`
}

func (c QuotaCounts) forCategory(category string) int64 {
	switch category {
	case models.CategorySmall:
		return c.Small
	case models.CategoryMedium:
		return c.Medium
	case models.CategoryLarge:
		return c.Large
	}
	return 0
}

type QuotaResult struct {
	Allowed bool        `json:"allowed"`
	Reason  string      `json:"reason,omitempty"`
	Counts  QuotaCounts `json:"counts"`
}

// quotaLocation returns the zone used for the asker's assumed local day.
func quotaLocation() *time.Location {
	if tz := os.Getenv("QUOTA_TZ"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}

// DayWindow returns [midnight, midnight+24h) around now in the quota zone.
func DayWindow(now time.Time) (time.Time, time.Time) {
	loc := quotaLocation()
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour)
}

// CountQuota tallies the asker's tasks created inside the day window of now.
func CountQuota(db *gorm.DB, askerID uint, now time.Time) (QuotaCounts, error) {
	start, end := DayWindow(now)
	var tasks []models.Task
	if err := db.Select("category").
		Where("asker_id = ? AND created_at >= ? AND created_at < ?", askerID, start, end).
		Find(&tasks).Error; err != nil {
		return QuotaCounts{}, err
	}
	var counts QuotaCounts
	for _, t := range tasks {
		switch t.Category {
		case models.CategorySmall:
			counts.Small++
		case models.CategoryMedium:
			counts.Medium++
		case models.CategoryLarge:
			counts.Large++
		}
		counts.Total++
	}
	return counts, nil
}

// CheckQuota decides whether the asker may create one more task of the given
// category today. Lookup failures follow the policy; the fail-open default is
// deliberate and logged.
func CheckQuota(db *gorm.DB, policy QuotaPolicy, askerID uint, category string, now time.Time) QuotaResult {
	counts, err := CountQuota(db, askerID, now)
	if err != nil {
		log.Printf("[quota] lookup failed for asker %d: %v", askerID, err)
		if policy.OnLookupFailure == FailOpen {
			return QuotaResult{Allowed: true}
		}
		return QuotaResult{Allowed: false, Reason: "quota check unavailable"}
	}
	if counts.Total >= DailyTotalLimit {
		return QuotaResult{
			Allowed: false,
			Reason:  fmt.Sprintf("daily limit of %d tasks reached", DailyTotalLimit),
			Counts:  counts,
		}
	}
	if limit := CategoryDailyLimits[category]; counts.forCategory(category) >= limit {
		return QuotaResult{
			Allowed: false,
			Reason:  fmt.Sprintf("daily limit of %d %s tasks reached", limit, category),
			Counts:  counts,
		}
	}
	return QuotaResult{Allowed: true, Counts: counts}
}
