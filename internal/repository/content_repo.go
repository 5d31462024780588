package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"growtrack/internal/database"
	"growtrack/internal/models"
)

const contentColumns = `c.id, c.title, c.slug, c.summary, c.body, c.category, c.age_min, c.age_max, c.tags, c.views, c.published_at,
	(SELECT COUNT(*) FROM content_likes l WHERE l.content_id = c.id),
	(SELECT COUNT(*) FROM content_likes l WHERE l.content_id = c.id AND l.user_id = ?)`

// ContentRepository handles database operations for the content library
type ContentRepository struct {
	db *database.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *database.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func scanContent(row rowScanner) (*models.Content, error) {
	c := &models.Content{}
	var tags string
	var likedByMe int
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Slug,
		&c.Summary,
		&c.Body,
		&c.Category,
		&c.AgeRange.Min,
		&c.AgeRange.Max,
		&tags,
		&c.Views,
		&c.PublishedAt,
		&c.Likes,
		&likedByMe,
	)
	if err != nil {
		return nil, err
	}
	c.Tags = splitTags(tags)
	c.LikedByMe = likedByMe > 0
	return c, nil
}

func splitTags(tags string) []string {
	out := []string{}
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// CreateContent inserts a library item and fills in its ID
func (r *ContentRepository) CreateContent(c *models.Content) error {
	query := `
		INSERT INTO content (title, slug, summary, body, category, age_min, age_max, tags, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, c.Title, c.Slug, c.Summary, c.Body, c.Category,
		c.AgeRange.Min, c.AgeRange.Max, strings.Join(c.Tags, ","), c.PublishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	c.ID = id
	return nil
}

// CountContent returns the number of library items
func (r *ContentRepository) CountContent() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM content").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count content: %w", err)
	}
	return count, nil
}

func contentWhere(filter models.ContentFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.Category != "" {
		clauses = append(clauses, "c.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		clauses = append(clauses, "(LOWER(c.title) LIKE ? OR LOWER(c.summary) LIKE ? OR LOWER(c.tags) LIKE ?)")
		args = append(args, like, like, like)
	}
	if filter.AgeInMonths != nil {
		clauses = append(clauses, "c.age_min <= ? AND c.age_max >= ?")
		args = append(args, *filter.AgeInMonths, *filter.AgeInMonths)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListContent returns one page of library items matching filter and the total match count.
// userID marks items the user liked; pass 0 for anonymous requests.
func (r *ContentRepository) ListContent(filter models.ContentFilter, userID int64) ([]models.Content, int, error) {
	where, args := contentWhere(filter)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM content c"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count content: %w", err)
	}

	query := "SELECT " + contentColumns + " FROM content c" + where + " ORDER BY c.published_at DESC, c.id DESC LIMIT ? OFFSET ?"
	queryArgs := append([]interface{}{userID}, args...)
	queryArgs = append(queryArgs, filter.Limit, (filter.Page-1)*filter.Limit)

	items, err := r.list(query, queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetRecommended returns items whose age window contains ageInMonths, most liked first
func (r *ContentRepository) GetRecommended(ageInMonths, limit int, userID int64) ([]models.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content c
		WHERE c.age_min <= ? AND c.age_max >= ?
		ORDER BY (SELECT COUNT(*) FROM content_likes l WHERE l.content_id = c.id) DESC, c.views DESC, c.id
		LIMIT ?
	`
	return r.list(query, userID, ageInMonths, ageInMonths, limit)
}

func (r *ContentRepository) list(query string, args ...interface{}) ([]models.Content, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	items := []models.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// GetContentByID retrieves a library item
func (r *ContentRepository) GetContentByID(id, userID int64) (*models.Content, error) {
	c, err := scanContent(r.db.QueryRow("SELECT "+contentColumns+" FROM content c WHERE c.id = ?", userID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return c, nil
}

// IncrementViews bumps the view counter of an item
func (r *ContentRepository) IncrementViews(id int64) error {
	if _, err := r.db.Exec("UPDATE content SET views = views + 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// ToggleLike likes or unlikes an item for a user and returns the new state and like count
func (r *ContentRepository) ToggleLike(contentID, userID int64) (bool, int, error) {
	return toggleLike(r.db, "content_likes", "content_id", contentID, userID)
}

// toggleLike flips a (target, user) row in a like table inside one transaction
func toggleLike(db *database.DB, table, column string, targetID, userID int64) (bool, int, error) {
	var liked bool
	var count int

	err := db.WithTx(func(tx *database.Tx) error {
		result, err := tx.Exec("DELETE FROM "+table+" WHERE "+column+" = ? AND user_id = ?", targetID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove like: %w", err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read like result: %w", err)
		}

		if removed == 0 {
			if _, err := tx.Exec("INSERT INTO "+table+" ("+column+", user_id) VALUES (?, ?)", targetID, userID); err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
			liked = true
		}

		if err := tx.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE "+column+" = ?", targetID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}
