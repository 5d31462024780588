package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growtrack/internal/models"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Introdução alimentar aos seis meses", "introducao-alimentar-aos-seis-meses"},
		{"  Hello, World!  ", "hello-world"},
		{"Sono   seguro -- bebês", "sono-seguro-bebes"},
		{"0 a 6 meses", "0-a-6-meses"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, 5, 1, 5},
		{2, 500, 2, MaxPageSize},
		{4, 20, 4, 20},
	}
	for _, tt := range tests {
		page, limit := normalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestContentService_SeedAndList(t *testing.T) {
	env := setupEnv(t)

	seeded, err := env.content.SeedDefaultContent()
	require.NoError(t, err)
	assert.Equal(t, len(defaultContent), seeded)

	again, err := env.content.SeedDefaultContent()
	require.NoError(t, err)
	assert.Zero(t, again, "seeding is skipped when content exists")

	items, page, err := env.content.List(models.ContentFilter{}, 0)
	require.NoError(t, err)
	assert.Len(t, items, len(defaultContent))
	assert.Equal(t, models.Pagination{Page: 1, Limit: DefaultPageSize, Total: len(defaultContent), TotalPages: 1}, page)
	assert.Equal(t, "sono-seguro-para-recem-nascidos", items[0].Slug, "newest first")

	threeMonths := 3
	tests := []struct {
		name   string
		filter models.ContentFilter
		want   int
	}{
		{"category", models.ContentFilter{Category: "saude"}, 2},
		{"search", models.ContentFilter{Search: " vacina "}, 1},
		{"age window", models.ContentFilter{AgeInMonths: &threeMonths}, 2},
		{"no match", models.ContentFilter{Category: "saude", Search: "lanche"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, page, err := env.content.List(tt.filter, 0)
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
			assert.Equal(t, tt.want, page.Total)
		})
	}

	t.Run("pagination", func(t *testing.T) {
		items, page, err := env.content.List(models.ContentFilter{Page: 3, Limit: 3}, 0)
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, 3, page.TotalPages)
	})
}

func TestContentService_LikesViewsAndRecommendations(t *testing.T) {
	env := setupEnv(t)
	_, err := env.content.SeedDefaultContent()
	require.NoError(t, err)
	parent := env.user(t, "ana@example.com")
	child := env.child(t, parent.ID, date(2024, time.March, 5))

	books, _, err := env.content.List(models.ContentFilter{Search: "livros"}, parent.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	id := books[0].ID

	liked, count, err := env.content.ToggleLike(id, parent.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	recommended, err := env.content.Recommended(parent.ID, child.ID, 0)
	require.NoError(t, err)
	assert.Len(t, recommended, 6, "every item whose window contains 12 months")
	assert.Equal(t, id, recommended[0].ID, "most liked first")
	assert.True(t, recommended[0].LikedByMe)

	_, err = env.content.Recommended(env.user(t, "bia@example.com").ID, child.ID, 0)
	assert.ErrorIs(t, err, ErrChildNotFound)

	item, err := env.content.Get(id, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Views)
	item, err = env.content.Get(id, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Views)
	assert.False(t, item.LikedByMe)

	liked, count, err = env.content.ToggleLike(id, parent.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, count)

	_, err = env.content.Get(9999, 0)
	assert.ErrorIs(t, err, ErrContentNotFound)
	_, _, err = env.content.ToggleLike(9999, parent.ID)
	assert.ErrorIs(t, err, ErrContentNotFound)
}
