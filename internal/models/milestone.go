package models

import "time"

// MilestoneCategory groups milestones by developmental area
type MilestoneCategory string

const (
	CategoryMotor     MilestoneCategory = "motor"
	CategoryCognitive MilestoneCategory = "cognitive"
	CategoryLanguage  MilestoneCategory = "language"
	CategorySocial    MilestoneCategory = "social"
	CategoryEmotional MilestoneCategory = "emotional"
)

// AgeRange is an inclusive window of ages in months
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether months falls inside the window
func (r AgeRange) Contains(months int) bool {
	return months >= r.Min && months <= r.Max
}

// Milestone represents a developmental milestone tracked for one child.
// A nil AchievedDate means the milestone has not been reached yet.
type Milestone struct {
	ID           int64             `json:"id"`
	ChildID      int64             `json:"childId"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Category     MilestoneCategory `json:"category"`
	ExpectedAge  AgeRange          `json:"expectedAge"`
	AchievedDate *time.Time        `json:"achievedDate,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Resources    []string          `json:"resources,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// IsAchieved checks if the milestone has an achievement date
func (m *Milestone) IsAchieved() bool {
	return m.AchievedDate != nil
}
