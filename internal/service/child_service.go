package service

import (
	"fmt"
	"strings"
	"time"

	"growtrack/internal/development"
	"growtrack/internal/models"
	"growtrack/internal/repository"
)

// ChildInput holds the fields of a new child profile
type ChildInput struct {
	Name      string
	BirthDate time.Time
	Gender    models.Gender
	Notes     string
}

// ChildUpdate holds the fields to change; nil fields are kept
type ChildUpdate struct {
	Name      *string
	BirthDate *time.Time
	Gender    *models.Gender
	Notes     *string
}

// ChildAge is a child's age at a given moment
type ChildAge struct {
	AgeInMonths int    `json:"ageInMonths"`
	Years       int    `json:"years"`
	Months      int    `json:"months"`
	Formatted   string `json:"formatted"`
}

// ChildService handles child profile business logic
type ChildService struct {
	childRepo *repository.ChildRepository
	clock     Clock
}

// NewChildService creates a new child service
func NewChildService(childRepo *repository.ChildRepository, clock Clock) *ChildService {
	return &ChildService{childRepo: childRepo, clock: clock}
}

// checkBirthDate rejects birth dates after today
func (s *ChildService) checkBirthDate(birth time.Time) error {
	_, err := development.AgeInMonths(s.clock.Local(birth), s.clock.Today())
	return err
}

// checkBirthBeforeAchievements rejects a birth date after any of the child's achievement dates
func (s *ChildService) checkBirthBeforeAchievements(childID int64, birth time.Time) error {
	earliest, err := s.childRepo.GetEarliestAchievedDate(childID)
	if err != nil {
		return err
	}
	if earliest != nil && StoredDate(birth).After(StoredDate(*earliest)) {
		return &development.InputError{Field: "birthDate", Message: "birth date is after an achieved milestone"}
	}
	return nil
}

// Create adds a child profile for a parent
func (s *ChildService) Create(userID int64, input ChildInput) (*models.Child, error) {
	if err := s.checkBirthDate(input.BirthDate); err != nil {
		return nil, err
	}

	child := &models.Child{
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		BirthDate: StoredDate(input.BirthDate),
		Gender:    input.Gender,
		Notes:     input.Notes,
	}
	if err := s.childRepo.CreateChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// Get returns a child owned by userID. Children of other parents are reported as not found.
func (s *ChildService) Get(userID, childID int64) (*models.Child, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || child.UserID != userID {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// List returns a parent's children
func (s *ChildService) List(userID int64) ([]models.Child, error) {
	children, err := s.childRepo.GetChildrenByUser(userID)
	if err != nil {
		return nil, err
	}
	if children == nil {
		children = []models.Child{}
	}
	return children, nil
}

// Update changes a child's profile
func (s *ChildService) Update(userID, childID int64, update ChildUpdate) (*models.Child, error) {
	child, err := s.Get(userID, childID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		child.Name = strings.TrimSpace(*update.Name)
	}
	if update.BirthDate != nil {
		if err := s.checkBirthDate(*update.BirthDate); err != nil {
			return nil, err
		}
		if err := s.checkBirthBeforeAchievements(child.ID, *update.BirthDate); err != nil {
			return nil, err
		}
		child.BirthDate = StoredDate(*update.BirthDate)
	}
	if update.Gender != nil {
		child.Gender = *update.Gender
	}
	if update.Notes != nil {
		child.Notes = *update.Notes
	}

	if err := s.childRepo.UpdateChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

// Delete removes a child and its milestones
func (s *ChildService) Delete(userID, childID int64) error {
	if _, err := s.Get(userID, childID); err != nil {
		return err
	}
	return s.childRepo.DeleteChild(childID)
}

// Age returns a child's age at now, or at the current time when now is zero
func (s *ChildService) Age(userID, childID int64, now time.Time) (*ChildAge, error) {
	child, err := s.Get(userID, childID)
	if err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = s.clock.Today()
	}

	age, err := development.AgeAt(s.clock.Local(child.BirthDate), now.In(s.clock.Location))
	if err != nil {
		return nil, err
	}
	return &ChildAge{
		AgeInMonths: age.Years*12 + age.Months,
		Years:       age.Years,
		Months:      age.Months,
		Formatted:   age.String(),
	}, nil
}
