package development

import (
	"time"

	"growtrack/internal/models"
)

// Status is the classification of a milestone relative to a child's age
type Status string

const (
	StatusDelayed  Status = "delayed"
	StatusPending  Status = "pending"
	StatusEarly    Status = "early"
	StatusOnTime   Status = "on_time"
	StatusAchieved Status = "achieved"
)

// AllStatuses lists every status in display order
var AllStatuses = []Status{StatusDelayed, StatusPending, StatusEarly, StatusOnTime, StatusAchieved}

// ValidateExpectedAge checks that an expected-age window is well formed
func ValidateExpectedAge(r models.AgeRange) error {
	if r.Min < 0 || r.Max < 0 {
		return &ValidationError{Field: "expectedAge", Message: "expected age cannot be negative"}
	}
	if r.Min > r.Max {
		return &ValidationError{Field: "expectedAge", Message: "expected age min must not exceed max"}
	}
	return nil
}

// Classify returns the status of m for a child who is ageInMonths old.
// Achieved milestones are never reported as delayed.
func Classify(m models.Milestone, ageInMonths int) (Status, error) {
	if err := ValidateExpectedAge(m.ExpectedAge); err != nil {
		return "", err
	}

	if m.AchievedDate != nil {
		switch {
		case ageInMonths < m.ExpectedAge.Min:
			return StatusEarly, nil
		case ageInMonths <= m.ExpectedAge.Max:
			return StatusOnTime, nil
		default:
			return StatusAchieved, nil
		}
	}

	if ageInMonths > m.ExpectedAge.Max {
		return StatusDelayed, nil
	}
	return StatusPending, nil
}

// ClassifyAtAchievement classifies an achieved milestone using the child's
// age on the achievement date instead of today. Unachieved milestones fall
// back to Classify with the age at now.
func ClassifyAtAchievement(m models.Milestone, birth, now time.Time) (Status, error) {
	at := now
	if m.AchievedDate != nil {
		if dateOnly(*m.AchievedDate).After(dateOnly(now)) {
			return "", &InputError{Field: "achievedDate", Message: "achievement date is in the future"}
		}
		if dateOnly(*m.AchievedDate).Before(dateOnly(birth)) {
			return "", &InputError{Field: "achievedDate", Message: "achievement date is before birth"}
		}
		at = *m.AchievedDate
	}

	age, err := AgeInMonths(birth, at)
	if err != nil {
		return "", err
	}
	return Classify(m, age)
}

// IsDelayed reports whether m is unachieved past its window
func IsDelayed(m models.Milestone, ageInMonths int) bool {
	status, err := Classify(m, ageInMonths)
	return err == nil && status == StatusDelayed
}

// IsOnTime reports whether m was achieved inside its window
func IsOnTime(m models.Milestone, ageInMonths int) bool {
	status, err := Classify(m, ageInMonths)
	return err == nil && status == StatusOnTime
}

// IsEarly reports whether m was achieved before its window opened
func IsEarly(m models.Milestone, ageInMonths int) bool {
	status, err := Classify(m, ageInMonths)
	return err == nil && status == StatusEarly
}
