package service

import (
	"fmt"
	"strings"

	"growtrack/internal/metrics"
	"growtrack/internal/models"
	"growtrack/internal/repository"
	"growtrack/internal/validation"
)

const (
	maxTitleLength   = 200
	maxBodyLength    = 10000
	defaultTopicType = "geral"
)

// WordFilter finds blocked words in user text
type WordFilter interface {
	FindBlockedWords(text string) ([]string, error)
}

// TopicInput holds the fields of a new or edited topic
type TopicInput struct {
	Title    string
	Body     string
	Category string
}

// CommunityService runs the discussion forum
type CommunityService struct {
	communityRepo *repository.CommunityRepository
	filter        WordFilter
	metrics       *metrics.Metrics
}

// NewCommunityService creates a new community service. filter may be nil to disable moderation.
func NewCommunityService(communityRepo *repository.CommunityRepository, filter WordFilter, m *metrics.Metrics) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		filter:        filter,
		metrics:       m,
	}
}

// checkText enforces length limits and rejects text containing blocked words
func (s *CommunityService) checkText(field, text string, max int) error {
	if text == "" {
		return validation.ValidationError{Field: field, Message: field + " is required"}
	}
	if len([]rune(text)) > max {
		return validation.ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}
	}
	if s.filter == nil {
		return nil
	}

	found, err := s.filter.FindBlockedWords(text)
	if err != nil {
		return err
	}
	if len(found) > 0 {
		s.metrics.IncrementModerationRejections()
		return validation.ValidationError{Field: field, Message: field + " contains inappropriate language"}
	}
	return nil
}

func (s *CommunityService) buildTopic(input TopicInput) (models.Topic, error) {
	t := models.Topic{
		Title:    strings.TrimSpace(input.Title),
		Body:     strings.TrimSpace(input.Body),
		Category: input.Category,
	}
	if t.Category == "" {
		t.Category = defaultTopicType
	}
	if err := s.checkText("title", t.Title, maxTitleLength); err != nil {
		return t, err
	}
	if err := s.checkText("body", t.Body, maxBodyLength); err != nil {
		return t, err
	}
	return t, nil
}

// ListTopics returns one page of topics, newest first
func (s *CommunityService) ListTopics(filter models.TopicFilter) ([]models.Topic, models.Pagination, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)

	topics, total, err := s.communityRepo.ListTopics(filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return topics, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// CreateTopic starts a discussion
func (s *CommunityService) CreateTopic(userID int64, input TopicInput) (*models.Topic, error) {
	t, err := s.buildTopic(input)
	if err != nil {
		return nil, err
	}
	t.AuthorID = userID
	if err := s.communityRepo.CreateTopic(&t); err != nil {
		return nil, err
	}
	return s.GetTopic(t.ID)
}

// GetTopic returns a topic
func (s *CommunityService) GetTopic(topicID int64) (*models.Topic, error) {
	t, err := s.communityRepo.GetTopicByID(topicID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTopicNotFound
	}
	return t, nil
}

func (s *CommunityService) authoredTopic(userID, topicID int64) (*models.Topic, error) {
	t, err := s.GetTopic(topicID)
	if err != nil {
		return nil, err
	}
	if t.AuthorID != userID {
		return nil, ErrNotAuthor
	}
	return t, nil
}

// UpdateTopic edits a topic. Empty fields keep their current value.
func (s *CommunityService) UpdateTopic(userID, topicID int64, input TopicInput) (*models.Topic, error) {
	t, err := s.authoredTopic(userID, topicID)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		input.Title = t.Title
	}
	if input.Body == "" {
		input.Body = t.Body
	}
	if input.Category == "" {
		input.Category = t.Category
	}

	edited, err := s.buildTopic(input)
	if err != nil {
		return nil, err
	}
	t.Title, t.Body, t.Category = edited.Title, edited.Body, edited.Category
	if err := s.communityRepo.UpdateTopic(t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTopic removes a topic with its comments
func (s *CommunityService) DeleteTopic(userID, topicID int64) error {
	if _, err := s.authoredTopic(userID, topicID); err != nil {
		return err
	}
	return s.communityRepo.DeleteTopic(topicID)
}

// ToggleTopicLike likes or unlikes a topic
func (s *CommunityService) ToggleTopicLike(userID, topicID int64) (bool, int, error) {
	if _, err := s.GetTopic(topicID); err != nil {
		return false, 0, err
	}
	return s.communityRepo.ToggleTopicLike(topicID, userID)
}

// Comments returns the comments of a topic with replies nested under their parent
func (s *CommunityService) Comments(topicID int64) ([]models.Comment, error) {
	if _, err := s.GetTopic(topicID); err != nil {
		return nil, err
	}
	flat, err := s.communityRepo.GetCommentsByTopic(topicID)
	if err != nil {
		return nil, err
	}
	return NestComments(flat), nil
}

// NestComments groups replies under their top-level comment, keeping posting order.
// Replies whose parent is missing are dropped.
func NestComments(flat []models.Comment) []models.Comment {
	replies := make(map[int64][]models.Comment)
	for _, c := range flat {
		if c.ParentID != nil {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	out := []models.Comment{}
	for _, c := range flat {
		if c.ParentID != nil {
			continue
		}
		c.Replies = replies[c.ID]
		out = append(out, c)
	}
	return out
}

// CreateComment posts a comment on a topic, or a reply when parentID is set.
// Replies can only target top-level comments of the same topic.
func (s *CommunityService) CreateComment(userID, topicID int64, parentID *int64, body string) (*models.Comment, error) {
	if _, err := s.GetTopic(topicID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.communityRepo.GetCommentByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.TopicID != topicID {
			return nil, ErrCommentNotFound
		}
		if parent.ParentID != nil {
			return nil, ErrReplyTooDeep
		}
	}

	body = strings.TrimSpace(body)
	if err := s.checkText("body", body, maxBodyLength); err != nil {
		return nil, err
	}

	c := &models.Comment{
		TopicID:  topicID,
		ParentID: parentID,
		AuthorID: userID,
		Body:     body,
	}
	if err := s.communityRepo.CreateComment(c); err != nil {
		return nil, err
	}
	return s.GetComment(c.ID)
}

// GetComment returns a comment without replies
func (s *CommunityService) GetComment(commentID int64) (*models.Comment, error) {
	c, err := s.communityRepo.GetCommentByID(commentID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCommentNotFound
	}
	return c, nil
}

func (s *CommunityService) authoredComment(userID, commentID int64) (*models.Comment, error) {
	c, err := s.GetComment(commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		return nil, ErrNotAuthor
	}
	return c, nil
}

// UpdateComment edits a comment's body
func (s *CommunityService) UpdateComment(userID, commentID int64, body string) (*models.Comment, error) {
	c, err := s.authoredComment(userID, commentID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if err := s.checkText("body", body, maxBodyLength); err != nil {
		return nil, err
	}
	c.Body = body
	if err := s.communityRepo.UpdateComment(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment and its replies
func (s *CommunityService) DeleteComment(userID, commentID int64) error {
	if _, err := s.authoredComment(userID, commentID); err != nil {
		return err
	}
	return s.communityRepo.DeleteComment(commentID)
}

// ToggleCommentLike likes or unlikes a comment
func (s *CommunityService) ToggleCommentLike(userID, commentID int64) (bool, int, error) {
	if _, err := s.GetComment(commentID); err != nil {
		return false, 0, err
	}
	return s.communityRepo.ToggleCommentLike(commentID, userID)
}

// FlagComment reports a comment for review and returns its flag count.
// Repeated flags from one user count once.
func (s *CommunityService) FlagComment(userID, commentID int64) (int, error) {
	if _, err := s.GetComment(commentID); err != nil {
		return 0, err
	}
	return s.communityRepo.FlagComment(commentID, userID)
}
