package handlers

import (
	"net/http"
	"strings"

	"growtrack/internal/models"
	"growtrack/internal/service"
)

// CommunityHandler handles forum topics and comments
type CommunityHandler struct {
	communityService *service.CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(communityService *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

type topicRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category" validate:"omitempty,topic_category"`
}

type commentRequest struct {
	Body     string `json:"body"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

type updateCommentRequest struct {
	Body string `json:"body"`
}

// ListTopics returns one page of topics filtered by ?category=&search=&page=&limit=
func (h *CommunityHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	filter := models.TopicFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Search:   r.URL.Query().Get("search"),
	}

	var err error
	if filter.Page, err = queryInt(r, "page", 1); err != nil {
		writeServiceError(w, err, "")
		return
	}
	if filter.Limit, err = queryInt(r, "limit", service.DefaultPageSize); err != nil {
		writeServiceError(w, err, "")
		return
	}

	topics, pagination, err := h.communityService.ListTopics(filter)
	if err != nil {
		writeServiceError(w, err, "Failed to list topics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"topics":     topics,
		"pagination": pagination,
	})
}

// CreateTopic opens a new discussion
func (h *CommunityHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	topic, err := h.communityService.CreateTopic(userID(r), service.TopicInput(req))
	if err != nil {
		writeServiceError(w, err, "Failed to create topic")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"topic": topic})
}

// GetTopic returns one topic
func (h *CommunityHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	topic, err := h.communityService.GetTopic(id)
	if err != nil {
		writeServiceError(w, err, "Failed to get topic")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"topic": topic})
}

// UpdateTopic edits the author's own topic
func (h *CommunityHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req topicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	topic, err := h.communityService.UpdateTopic(userID(r), id, service.TopicInput(req))
	if err != nil {
		writeServiceError(w, err, "Failed to update topic")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"topic": topic})
}

// DeleteTopic removes the author's own topic and its comments
func (h *CommunityHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.communityService.DeleteTopic(userID(r), id); err != nil {
		writeServiceError(w, err, "Failed to delete topic")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTopicLike likes or unlikes a topic
func (h *CommunityHandler) ToggleTopicLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	liked, likes, err := h.communityService.ToggleTopicLike(userID(r), id)
	if err != nil {
		writeServiceError(w, err, "Failed to like topic")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "likes": likes})
}

// ListComments returns a topic's comments with replies nested
func (h *CommunityHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := h.communityService.Comments(id)
	if err != nil {
		writeServiceError(w, err, "Failed to list comments")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// CreateComment posts a comment, or a reply when parentId is set
func (h *CommunityHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := h.communityService.CreateComment(userID(r), id, req.ParentID, req.Body)
	if err != nil {
		writeServiceError(w, err, "Failed to create comment")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"comment": comment})
}

// GetComment returns one comment
func (h *CommunityHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comment, err := h.communityService.GetComment(id)
	if err != nil {
		writeServiceError(w, err, "Failed to get comment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"comment": comment})
}

// UpdateComment edits the author's own comment
func (h *CommunityHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := h.communityService.UpdateComment(userID(r), id, req.Body)
	if err != nil {
		writeServiceError(w, err, "Failed to update comment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"comment": comment})
}

// DeleteComment removes the author's own comment
func (h *CommunityHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.communityService.DeleteComment(userID(r), id); err != nil {
		writeServiceError(w, err, "Failed to delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleCommentLike likes or unlikes a comment
func (h *CommunityHandler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	liked, likes, err := h.communityService.ToggleCommentLike(userID(r), id)
	if err != nil {
		writeServiceError(w, err, "Failed to like comment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "likes": likes})
}

// FlagComment reports a comment for moderation
func (h *CommunityHandler) FlagComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	flags, err := h.communityService.FlagComment(userID(r), id)
	if err != nil {
		writeServiceError(w, err, "Failed to flag comment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"flags": flags})
}
