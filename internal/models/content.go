package models

import "time"

// Content is an article or guide from the content library
type Content struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Body        string    `json:"body"`
	Category    string    `json:"category"`
	AgeRange    AgeRange  `json:"ageRange"`
	Tags        []string  `json:"tags"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	LikedByMe   bool      `json:"likedByMe"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ContentFilter narrows a content listing. Zero values mean "no filter";
// a nil AgeInMonths disables the age window match.
type ContentFilter struct {
	Category    string
	Search      string
	AgeInMonths *int
	Page        int
	Limit       int
}

// Pagination describes one page of a listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination builds pagination metadata for total items
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
