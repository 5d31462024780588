package models

import "time"

// Topic categories used by the community forum
var TopicCategories = []string{"geral", "duvidas", "dicas", "experiencias", "saude", "educacao"}

// Topic is a community discussion thread
type Topic struct {
	ID           int64     `json:"id"`
	AuthorID     int64     `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Category     string    `json:"category"`
	Likes        int       `json:"likes"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TopicFilter narrows a topic listing
type TopicFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Comment is a reply on a topic. Top-level comments have a nil ParentID;
// replies are nested one level deep under their parent.
type Comment struct {
	ID         int64     `json:"id"`
	TopicID    int64     `json:"topicId"`
	ParentID   *int64    `json:"parentId,omitempty"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	Likes      int       `json:"likes"`
	Flags      int       `json:"flags"`
	Replies    []Comment `json:"replies,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
