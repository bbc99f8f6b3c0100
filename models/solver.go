package models

import (
	"strings"
	"time"
)

// Solver is a worker who can be matched to tasks by speciality. Created once
// at onboarding; only completion events mutate it afterwards.
type Solver struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Specialities   string    `gorm:"type:varchar(500);not null" json:"specialities"`
	CompletedCount int64     `gorm:"not null;default:0" json:"completed_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

func (Solver) TableName() string {
	return "solvers"
}

// NormalizeSpecialities lower-cases, trims and comma-joins a speciality list
// for storage.
func NormalizeSpecialities(specs []string) string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ",")
}

// SpecialityList returns the stored specialities as a slice.
func (s *Solver) SpecialityList() []string {
	if s.Specialities == "" {
		return nil
	}
	return strings.Split(s.Specialities, ",")
}

// HasSpeciality reports whether the solver carries a speciality equal to
// subject, case-insensitively.
func (s *Solver) HasSpeciality(subject string) bool {
	want := strings.ToLower(strings.TrimSpace(subject))
	for _, sp := range s.SpecialityList() {
		if sp == want {
			return true
		}
	}
	return false
}
