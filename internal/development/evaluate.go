package development

import (
	"time"

	"growtrack/internal/models"
)

// Evaluation is a milestone with its computed statuses. It marshals as the
// milestone's own fields plus status and achievementStatus.
type Evaluation struct {
	models.Milestone
	Status            Status `json:"status"`
	AchievementStatus Status `json:"achievementStatus"`
}

// Summary counts milestones per status for one child
type Summary struct {
	AgeInMonths int            `json:"ageInMonths"`
	Total       int            `json:"total"`
	Counts      map[Status]int `json:"counts"`
}

// Evaluate classifies every milestone of child at now. The child's age is
// computed once so all milestones are judged against the same value.
// A milestone whose achievement date cannot be classified, such as one
// before birth, gets its current status as achievement status.
func Evaluate(child models.Child, milestones []models.Milestone, now time.Time) ([]Evaluation, Summary, error) {
	age, err := AgeInMonths(child.BirthDate, now)
	if err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{AgeInMonths: age, Counts: make(map[Status]int, len(AllStatuses))}
	for _, s := range AllStatuses {
		summary.Counts[s] = 0
	}

	evaluations := make([]Evaluation, 0, len(milestones))
	for _, m := range milestones {
		status, err := Classify(m, age)
		if err != nil {
			return nil, Summary{}, err
		}
		achievementStatus, err := ClassifyAtAchievement(m, child.BirthDate, now)
		if err != nil {
			achievementStatus = status
		}

		evaluations = append(evaluations, Evaluation{
			Milestone:         m,
			Status:            status,
			AchievementStatus: achievementStatus,
		})
		summary.Counts[status]++
		summary.Total++
	}

	return evaluations, summary, nil
}
