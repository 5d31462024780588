package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"growtrack/internal/database"
	"growtrack/internal/models"
)

const (
	topicColumns = `t.id, t.author_id, u.name, t.title, t.body, t.category, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM topic_likes l WHERE l.topic_id = t.id),
	(SELECT COUNT(*) FROM comments c WHERE c.topic_id = t.id)`
	commentColumns = `c.id, c.topic_id, c.parent_id, c.author_id, u.name, c.body, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id),
	(SELECT COUNT(*) FROM comment_flags f WHERE f.comment_id = c.id)`
)

// CommunityRepository handles database operations for forum topics and comments
type CommunityRepository struct {
	db *database.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *database.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

func scanTopic(row rowScanner) (*models.Topic, error) {
	t := &models.Topic{}
	err := row.Scan(&t.ID, &t.AuthorID, &t.AuthorName, &t.Title, &t.Body, &t.Category,
		&t.CreatedAt, &t.UpdatedAt, &t.Likes, &t.CommentCount)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTopic inserts a topic and fills in its ID
func (r *CommunityRepository) CreateTopic(t *models.Topic) error {
	query := "INSERT INTO topics (author_id, title, body, category) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, t.AuthorID, t.Title, t.Body, t.Category)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}

	now := time.Now()
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// GetTopicByID retrieves a topic with its counters
func (r *CommunityRepository) GetTopicByID(id int64) (*models.Topic, error) {
	query := "SELECT " + topicColumns + " FROM topics t JOIN users u ON u.id = t.author_id WHERE t.id = ?"
	t, err := scanTopic(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return t, nil
}

// ListTopics returns one page of topics, newest first, and the total match count
func (r *CommunityRepository) ListTopics(filter models.TopicFilter) ([]models.Topic, int, error) {
	var clauses []string
	var args []interface{}
	if filter.Category != "" {
		clauses = append(clauses, "t.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		clauses = append(clauses, "(LOWER(t.title) LIKE ? OR LOWER(t.body) LIKE ?)")
		args = append(args, like, like)
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM topics t"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count topics: %w", err)
	}

	query := "SELECT " + topicColumns + " FROM topics t JOIN users u ON u.id = t.author_id" + where +
		" ORDER BY t.created_at DESC, t.id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.Query(query, append(args, filter.Limit, (filter.Page-1)*filter.Limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	topics := []models.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	return topics, total, rows.Err()
}

// UpdateTopic saves a topic's editable fields
func (r *CommunityRepository) UpdateTopic(t *models.Topic) error {
	query := "UPDATE topics SET title = ?, body = ?, category = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, t.Title, t.Body, t.Category, t.ID); err != nil {
		return fmt.Errorf("failed to update topic: %w", err)
	}
	t.UpdatedAt = time.Now()
	return nil
}

// DeleteTopic deletes a topic and its comments
func (r *CommunityRepository) DeleteTopic(id int64) error {
	if _, err := r.db.Exec("DELETE FROM topics WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}
	return nil
}

// ToggleTopicLike likes or unlikes a topic and returns the new state and like count
func (r *CommunityRepository) ToggleTopicLike(topicID, userID int64) (bool, int, error) {
	return toggleLike(r.db, "topic_likes", "topic_id", topicID, userID)
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	var parentID sql.NullInt64
	err := row.Scan(&c.ID, &c.TopicID, &parentID, &c.AuthorID, &c.AuthorName, &c.Body,
		&c.CreatedAt, &c.UpdatedAt, &c.Likes, &c.Flags)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		id := parentID.Int64
		c.ParentID = &id
	}
	return c, nil
}

// CreateComment inserts a comment and fills in its ID
func (r *CommunityRepository) CreateComment(c *models.Comment) error {
	query := "INSERT INTO comments (topic_id, parent_id, author_id, body) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, c.TopicID, nullInt64(c.ParentID), c.AuthorID, c.Body)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	now := time.Now()
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetCommentByID retrieves a comment without replies
func (r *CommunityRepository) GetCommentByID(id int64) (*models.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments c JOIN users u ON u.id = c.author_id WHERE c.id = ?"
	c, err := scanComment(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

// GetCommentsByTopic retrieves all comments of a topic in posting order, flat
func (r *CommunityRepository) GetCommentsByTopic(topicID int64) ([]models.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments c JOIN users u ON u.id = c.author_id WHERE c.topic_id = ? ORDER BY c.created_at, c.id"
	rows, err := r.db.Query(query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// UpdateComment saves a comment's body
func (r *CommunityRepository) UpdateComment(c *models.Comment) error {
	if _, err := r.db.Exec("UPDATE comments SET body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", c.Body, c.ID); err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	c.UpdatedAt = time.Now()
	return nil
}

// DeleteComment deletes a comment and its replies
func (r *CommunityRepository) DeleteComment(id int64) error {
	if _, err := r.db.Exec("DELETE FROM comments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// ToggleCommentLike likes or unlikes a comment and returns the new state and like count
func (r *CommunityRepository) ToggleCommentLike(commentID, userID int64) (bool, int, error) {
	return toggleLike(r.db, "comment_likes", "comment_id", commentID, userID)
}

// FlagComment records a user's report on a comment once and returns the flag count
func (r *CommunityRepository) FlagComment(commentID, userID int64) (int, error) {
	query := r.db.Dialect.InsertIgnoreQuery("comment_flags", "comment_id", "user_id")
	if _, err := r.db.Exec(query, commentID, userID); err != nil {
		return 0, fmt.Errorf("failed to flag comment: %w", err)
	}

	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM comment_flags WHERE comment_id = ?", commentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count flags: %w", err)
	}
	return count, nil
}
