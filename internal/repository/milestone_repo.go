package repository

import (
	"database/sql"
	"fmt"
	"time"

	"growtrack/internal/database"
	"growtrack/internal/models"
)

const milestoneColumns = `id, child_id, title, description, category, expected_age_min, expected_age_max,
	achieved_date, notes, created_at, updated_at`

// MilestoneRepository handles database operations for milestones and their resource links
type MilestoneRepository struct {
	db *database.DB
}

// NewMilestoneRepository creates a new milestone repository
func NewMilestoneRepository(db *database.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func scanMilestone(row rowScanner) (*models.Milestone, error) {
	m := &models.Milestone{}
	var achieved sql.NullTime
	err := row.Scan(
		&m.ID,
		&m.ChildID,
		&m.Title,
		&m.Description,
		&m.Category,
		&m.ExpectedAge.Min,
		&m.ExpectedAge.Max,
		&achieved,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if achieved.Valid {
		t := achieved.Time
		m.AchievedDate = &t
	}
	return m, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// CreateMilestone inserts a milestone with its resources and fills in its ID
func (r *MilestoneRepository) CreateMilestone(m *models.Milestone) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		query := `
			INSERT INTO milestones (child_id, title, description, category, expected_age_min, expected_age_max, achieved_date, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		id, err := tx.ExecReturningID(query, m.ChildID, m.Title, m.Description, m.Category,
			m.ExpectedAge.Min, m.ExpectedAge.Max, nullTime(m.AchievedDate), m.Notes)
		if err != nil {
			return fmt.Errorf("failed to create milestone: %w", err)
		}

		if err := insertResources(tx, id, m.Resources); err != nil {
			return err
		}

		now := time.Now()
		m.ID = id
		m.CreatedAt = now
		m.UpdatedAt = now
		return nil
	})
}

func insertResources(tx *database.Tx, milestoneID int64, resources []string) error {
	for i, url := range resources {
		query := "INSERT INTO milestone_resources (milestone_id, position, url) VALUES (?, ?, ?)"
		if _, err := tx.Exec(query, milestoneID, i, url); err != nil {
			return fmt.Errorf("failed to add milestone resource: %w", err)
		}
	}
	return nil
}

// GetMilestoneByID retrieves a milestone with its resources
func (r *MilestoneRepository) GetMilestoneByID(id int64) (*models.Milestone, error) {
	m, err := scanMilestone(r.db.QueryRow("SELECT "+milestoneColumns+" FROM milestones WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}

	rows, err := r.db.Query("SELECT url FROM milestone_resources WHERE milestone_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestone resources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan milestone resource: %w", err)
		}
		m.Resources = append(m.Resources, url)
	}
	return m, rows.Err()
}

// GetMilestonesByChild retrieves a child's milestones ordered by expected age
func (r *MilestoneRepository) GetMilestonesByChild(childID int64) ([]models.Milestone, error) {
	query := "SELECT " + milestoneColumns + " FROM milestones WHERE child_id = ? ORDER BY expected_age_min, expected_age_max, id"
	milestones, err := r.list(query, childID)
	if err != nil {
		return nil, err
	}

	resourceQuery := `
		SELECT r.milestone_id, r.url
		FROM milestone_resources r
		JOIN milestones m ON m.id = r.milestone_id
		WHERE m.child_id = ?
		ORDER BY r.milestone_id, r.position
	`
	if err := r.attachResources(milestones, resourceQuery, childID); err != nil {
		return nil, err
	}
	return milestones, nil
}

// GetAllMilestones retrieves every milestone with resources
func (r *MilestoneRepository) GetAllMilestones() ([]models.Milestone, error) {
	milestones, err := r.list("SELECT " + milestoneColumns + " FROM milestones ORDER BY id")
	if err != nil {
		return nil, err
	}
	if err := r.attachResources(milestones, "SELECT milestone_id, url FROM milestone_resources ORDER BY milestone_id, position"); err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *MilestoneRepository) list(query string, args ...interface{}) ([]models.Milestone, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

func (r *MilestoneRepository) attachResources(milestones []models.Milestone, query string, args ...interface{}) error {
	if len(milestones) == 0 {
		return nil
	}

	index := make(map[int64]int, len(milestones))
	for i := range milestones {
		index[milestones[i].ID] = i
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query milestone resources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var milestoneID int64
		var url string
		if err := rows.Scan(&milestoneID, &url); err != nil {
			return fmt.Errorf("failed to scan milestone resource: %w", err)
		}
		if i, ok := index[milestoneID]; ok {
			milestones[i].Resources = append(milestones[i].Resources, url)
		}
	}
	return rows.Err()
}

// UpdateMilestone saves a milestone's fields and replaces its resources
func (r *MilestoneRepository) UpdateMilestone(m *models.Milestone) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		query := `
			UPDATE milestones
			SET title = ?, description = ?, category = ?, expected_age_min = ?, expected_age_max = ?,
				achieved_date = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
		_, err := tx.Exec(query, m.Title, m.Description, m.Category, m.ExpectedAge.Min, m.ExpectedAge.Max,
			nullTime(m.AchievedDate), m.Notes, m.ID)
		if err != nil {
			return fmt.Errorf("failed to update milestone: %w", err)
		}

		if _, err := tx.Exec("DELETE FROM milestone_resources WHERE milestone_id = ?", m.ID); err != nil {
			return fmt.Errorf("failed to clear milestone resources: %w", err)
		}
		if err := insertResources(tx, m.ID, m.Resources); err != nil {
			return err
		}

		m.UpdatedAt = time.Now()
		return nil
	})
}

// DeleteMilestone deletes a milestone
func (r *MilestoneRepository) DeleteMilestone(id int64) error {
	if _, err := r.db.Exec("DELETE FROM milestones WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}
	return nil
}
