package services

import (
	"strings"
	"testing"
	"time"

	"edufoyer/models"
)

func TestQuotaAllowsFreshDay(t *testing.T) {
	db := newTestDB(t)
	res := CheckQuota(db, DefaultQuotaPolicy, 1, models.CategorySmall, time.Now())
	if !res.Allowed {
		t.Fatalf("expected allowed on empty day, got reason %q", res.Reason)
	}
	if res.Counts.Total != 0 {
		t.Fatalf("expected zero counts, got %+v", res.Counts)
	}
}

func TestQuotaCategoryLimit(t *testing.T) {
	db := newTestDB(t)
	mkTask(t, db, 1, models.CategorySmall, "math")
	mkTask(t, db, 1, models.CategorySmall, "math")

	res := CheckQuota(db, DefaultQuotaPolicy, 1, models.CategorySmall, time.Now())
	if res.Allowed {
		t.Fatal("expected small category to be exhausted")
	}
	if !strings.Contains(res.Reason, "small") {
		t.Fatalf("expected category reason, got %q", res.Reason)
	}

	// Other categories still open.
	if res := CheckQuota(db, DefaultQuotaPolicy, 1, models.CategoryMedium, time.Now()); !res.Allowed {
		t.Fatalf("medium should still be allowed, got %q", res.Reason)
	}

	// A single large task exhausts its limit of 1.
	mkTask(t, db, 1, models.CategoryLarge, "math")
	if res := CheckQuota(db, DefaultQuotaPolicy, 1, models.CategoryLarge, time.Now()); res.Allowed {
		t.Fatal("expected large category to be exhausted after one task")
	}
}

func TestQuotaTotalLimitWinsOverCategory(t *testing.T) {
	db := newTestDB(t)
	// Five smalls put the asker at the daily total even though the medium
	// category is untouched; the total-limit reason must win.
	for i := 0; i < 5; i++ {
		mkTask(t, db, 1, models.CategorySmall, "math")
	}
	res := CheckQuota(db, DefaultQuotaPolicy, 1, models.CategoryMedium, time.Now())
	if res.Allowed {
		t.Fatal("expected total limit to reject")
	}
	if !strings.Contains(res.Reason, "5 tasks") {
		t.Fatalf("expected total-limit reason, got %q", res.Reason)
	}
	if res.Counts.Total != 5 {
		t.Fatalf("expected total 5, got %+v", res.Counts)
	}
}

func TestQuotaIgnoresOtherAskersAndDays(t *testing.T) {
	db := newTestDB(t)
	mkTask(t, db, 2, models.CategoryLarge, "math")

	old := mkTask(t, db, 1, models.CategoryLarge, "math")
	twoDaysAgo := time.Now().Add(-48 * time.Hour)
	if err := db.Model(&models.Task{}).Where("id = ?", old.ID).
		Update("created_at", twoDaysAgo).Error; err != nil {
		t.Fatalf("backdate task: %v", err)
	}

	res := CheckQuota(db, DefaultQuotaPolicy, 1, models.CategoryLarge, time.Now())
	if !res.Allowed {
		t.Fatalf("expected allowed, got %q", res.Reason)
	}
	if res.Counts.Total != 0 {
		t.Fatalf("expected zero counts for asker 1 today, got %+v", res.Counts)
	}
}

func TestQuotaLookupFailurePolicy(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrator().DropTable(&models.Task{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	open := CheckQuota(db, QuotaPolicy{OnLookupFailure: FailOpen}, 1, models.CategorySmall, time.Now())
	if !open.Allowed {
		t.Fatal("fail-open policy must allow when the lookup fails")
	}
	closed := CheckQuota(db, QuotaPolicy{OnLookupFailure: FailClosed}, 1, models.CategorySmall, time.Now())
	if closed.Allowed {
		t.Fatal("fail-closed policy must deny when the lookup fails")
	}
}

func TestCreateTaskEnforcesQuota(t *testing.T) {
	db := newTestDB(t)
	categories := []string{
		models.CategorySmall, models.CategorySmall,
		models.CategoryMedium, models.CategoryMedium,
		models.CategoryLarge,
	}
	for i, c := range categories {
		if _, err := CreateTask(db, DefaultQuotaPolicy, 1, c, "math", "help me"); err != nil {
			t.Fatalf("create %d (%s): %v", i+1, c, err)
		}
	}
	_, err := CreateTask(db, DefaultQuotaPolicy, 1, models.CategorySmall, "math", "help me")
	if err == nil {
		t.Fatal("expected the 6th create to fail")
	}
	if kindOf(t, err) != KindQuotaExceeded {
		t.Fatalf("expected quota_exceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "5 tasks") {
		t.Fatalf("expected total-limit message, got %q", err.Error())
	}
}

func TestCreateTaskValidation(t *testing.T) {
	db := newTestDB(t)
	if _, err := CreateTask(db, DefaultQuotaPolicy, 1, "huge", "math", "help"); err == nil || kindOf(t, err) != KindValidation {
		t.Fatalf("expected validation error for bad category, got %v", err)
	}
	if _, err := CreateTask(db, DefaultQuotaPolicy, 1, models.CategorySmall, "math", "  "); err == nil || kindOf(t, err) != KindValidation {
		t.Fatalf("expected validation error for empty description, got %v", err)
	}
}
