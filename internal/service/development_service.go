package service

import (
	"fmt"
	"strings"
	"time"

	"growtrack/internal/development"
	"growtrack/internal/metrics"
	"growtrack/internal/models"
	"growtrack/internal/repository"
)

// MilestoneInput holds the fields of a new milestone
type MilestoneInput struct {
	Title        string
	Description  string
	Category     models.MilestoneCategory
	ExpectedAge  models.AgeRange
	AchievedDate *time.Time
	Notes        string
	Resources    []string
}

// MilestoneUpdate holds the fields to change; nil fields are kept.
// ClearAchieved marks the milestone as not achieved again.
type MilestoneUpdate struct {
	Title         *string
	Description   *string
	Category      *models.MilestoneCategory
	ExpectedAge   *models.AgeRange
	AchievedDate  *time.Time
	ClearAchieved bool
	Notes         *string
	Resources     []string
}

// DevelopmentService tracks milestones and classifies them against a child's age
type DevelopmentService struct {
	children      *ChildService
	milestoneRepo *repository.MilestoneRepository
	clock         Clock
	metrics       *metrics.Metrics
}

// NewDevelopmentService creates a new development service
func NewDevelopmentService(children *ChildService, milestoneRepo *repository.MilestoneRepository, clock Clock, m *metrics.Metrics) *DevelopmentService {
	return &DevelopmentService{
		children:      children,
		milestoneRepo: milestoneRepo,
		clock:         clock,
		metrics:       m,
	}
}

// evaluate classifies milestones with dates read in the clock's zone. The
// returned evaluations carry the milestones as stored.
func (s *DevelopmentService) evaluate(child *models.Child, milestones []models.Milestone) ([]development.Evaluation, development.Summary, error) {
	localChild := *child
	localChild.BirthDate = s.clock.Local(child.BirthDate)

	local := make([]models.Milestone, len(milestones))
	for i, m := range milestones {
		local[i] = m
		if m.AchievedDate != nil {
			d := s.clock.Local(*m.AchievedDate)
			local[i].AchievedDate = &d
		}
	}

	evaluations, summary, err := development.Evaluate(localChild, local, s.clock.Today())
	if err != nil {
		return nil, development.Summary{}, err
	}
	for i := range evaluations {
		evaluations[i].Milestone = milestones[i]
	}
	return evaluations, summary, nil
}

// checkMilestone validates a milestone against its child before it is saved
func (s *DevelopmentService) checkMilestone(child *models.Child, m models.Milestone) error {
	if strings.TrimSpace(m.Title) == "" {
		return &development.ValidationError{Field: "title", Message: "title is required"}
	}
	if err := development.ValidateExpectedAge(m.ExpectedAge); err != nil {
		return err
	}
	if m.AchievedDate != nil {
		d := s.clock.Local(*m.AchievedDate)
		m.AchievedDate = &d
	}
	_, err := development.ClassifyAtAchievement(m, s.clock.Local(child.BirthDate), s.clock.Today())
	return err
}

func (s *DevelopmentService) get(child *models.Child, milestoneID int64) (*models.Milestone, error) {
	m, err := s.milestoneRepo.GetMilestoneByID(milestoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	if m == nil || m.ChildID != child.ID {
		return nil, ErrMilestoneNotFound
	}
	return m, nil
}

func (s *DevelopmentService) evaluateOne(child *models.Child, m *models.Milestone) (*development.Evaluation, error) {
	evaluations, _, err := s.evaluate(child, []models.Milestone{*m})
	if err != nil {
		return nil, err
	}
	return &evaluations[0], nil
}

// saved evaluates a milestone that was just written and counts its status
func (s *DevelopmentService) saved(child *models.Child, m *models.Milestone) (*development.Evaluation, error) {
	ev, err := s.evaluateOne(child, m)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveMilestoneStatus(string(ev.Status))
	return ev, nil
}

// List returns a child's milestones with their statuses
func (s *DevelopmentService) List(userID, childID int64) ([]development.Evaluation, error) {
	child, err := s.children.Get(userID, childID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.GetMilestonesByChild(child.ID)
	if err != nil {
		return nil, err
	}
	evaluations, _, err := s.evaluate(child, milestones)
	return evaluations, err
}

// Summary counts a child's milestones per status
func (s *DevelopmentService) Summary(userID, childID int64) (*development.Summary, error) {
	child, err := s.children.Get(userID, childID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.GetMilestonesByChild(child.ID)
	if err != nil {
		return nil, err
	}
	_, summary, err := s.evaluate(child, milestones)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Get returns one milestone with its statuses
func (s *DevelopmentService) Get(userID, childID, milestoneID int64) (*development.Evaluation, error) {
	child, err := s.children.Get(userID, childID)
	if err != nil {
		return nil, err
	}
	m, err := s.get(child, milestoneID)
	if err != nil {
		return nil, err
	}
	return s.evaluateOne(child, m)
}

// Create adds a milestone to a child
func (s *DevelopmentService) Create(userID, childID int64, input MilestoneInput) (*development.Evaluation, error) {
	child, err := s.children.Get(userID, childID)
	if err != nil {
		return nil, err
	}

	m := &models.Milestone{
		ChildID:     child.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		ExpectedAge: input.ExpectedAge,
		Notes:       input.Notes,
		Resources:   input.Resources,
	}
	if input.AchievedDate != nil {
		d := StoredDate(*input.AchievedDate)
		m.AchievedDate = &d
	}
	if err := s.checkMilestone(child, *m); err != nil {
		return nil, err
	}

	if err := s.milestoneRepo.CreateMilestone(m); err != nil {
		return nil, err
	}
	return s.saved(child, m)
}

// Update changes a milestone
func (s *DevelopmentService) Update(userID, childID, milestoneID int64, update MilestoneUpdate) (*development.Evaluation, error) {
	child, err := s.children.Get(userID, childID)
	if err != nil {
		return nil, err
	}
	m, err := s.get(child, milestoneID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		m.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		m.Description = *update.Description
	}
	if update.Category != nil {
		m.Category = *update.Category
	}
	if update.ExpectedAge != nil {
		m.ExpectedAge = *update.ExpectedAge
	}
	if update.ClearAchieved {
		m.AchievedDate = nil
	} else if update.AchievedDate != nil {
		d := StoredDate(*update.AchievedDate)
		m.AchievedDate = &d
	}
	if update.Notes != nil {
		m.Notes = *update.Notes
	}
	if update.Resources != nil {
		m.Resources = update.Resources
	}

	if err := s.checkMilestone(child, *m); err != nil {
		return nil, err
	}
	if err := s.milestoneRepo.UpdateMilestone(m); err != nil {
		return nil, err
	}
	return s.saved(child, m)
}

// Achieve marks a milestone as reached on date, or today when date is nil
func (s *DevelopmentService) Achieve(userID, childID, milestoneID int64, date *time.Time, notes string) (*development.Evaluation, error) {
	achieved := StoredDate(s.clock.Today())
	if date != nil {
		achieved = StoredDate(*date)
	}

	update := MilestoneUpdate{AchievedDate: &achieved}
	if notes != "" {
		update.Notes = &notes
	}
	return s.Update(userID, childID, milestoneID, update)
}

// Delete removes a milestone
func (s *DevelopmentService) Delete(userID, childID, milestoneID int64) error {
	child, err := s.children.Get(userID, childID)
	if err != nil {
		return err
	}
	if _, err := s.get(child, milestoneID); err != nil {
		return err
	}
	return s.milestoneRepo.DeleteMilestone(milestoneID)
}
