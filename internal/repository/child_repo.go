package repository

import (
	"database/sql"
	"fmt"
	"time"

	"growtrack/internal/database"
	"growtrack/internal/models"
)

const childColumns = "id, user_id, name, birth_date, gender, notes, created_at, updated_at"

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

func scanChild(row rowScanner) (*models.Child, error) {
	child := &models.Child{}
	err := row.Scan(
		&child.ID,
		&child.UserID,
		&child.Name,
		&child.BirthDate,
		&child.Gender,
		&child.Notes,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return child, nil
}

// CreateChild inserts a child profile and fills in its ID
func (r *ChildRepository) CreateChild(child *models.Child) error {
	query := `
		INSERT INTO children (user_id, name, birth_date, gender, notes)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, child.UserID, child.Name, child.BirthDate, child.Gender, child.Notes)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}

	now := time.Now()
	child.ID = id
	child.CreatedAt = now
	child.UpdatedAt = now
	return nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(id int64) (*models.Child, error) {
	child, err := scanChild(r.db.QueryRow("SELECT "+childColumns+" FROM children WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetChildrenByUser retrieves all children of a parent, oldest first
func (r *ChildRepository) GetChildrenByUser(userID int64) ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE user_id = ? ORDER BY birth_date, id"
	return r.list(query, userID)
}

// GetAllChildren retrieves every child profile
func (r *ChildRepository) GetAllChildren() ([]models.Child, error) {
	return r.list("SELECT " + childColumns + " FROM children ORDER BY id")
}

func (r *ChildRepository) list(query string, args ...interface{}) ([]models.Child, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}
	return children, rows.Err()
}

// GetEarliestAchievedDate returns the first achievement date among a child's
// milestones, or nil when none is achieved
func (r *ChildRepository) GetEarliestAchievedDate(childID int64) (*time.Time, error) {
	query := `
		SELECT achieved_date FROM milestones
		WHERE child_id = ? AND achieved_date IS NOT NULL
		ORDER BY achieved_date
		LIMIT 1
	`
	var achieved sql.NullTime
	err := r.db.QueryRow(query, childID).Scan(&achieved)
	if err == sql.ErrNoRows || (err == nil && !achieved.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get earliest achievement: %w", err)
	}
	return &achieved.Time, nil
}

// UpdateChild saves a child's editable fields
func (r *ChildRepository) UpdateChild(child *models.Child) error {
	query := `
		UPDATE children
		SET name = ?, birth_date = ?, gender = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, child.Name, child.BirthDate, child.Gender, child.Notes, child.ID); err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	child.UpdatedAt = time.Now()
	return nil
}

// DeleteChild deletes a child and its milestones
func (r *ChildRepository) DeleteChild(id int64) error {
	if _, err := r.db.Exec("DELETE FROM children WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}
