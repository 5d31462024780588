package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growtrack/internal/models"
	"growtrack/internal/repository"
	"growtrack/internal/validation"
)

func setupCommunity(t *testing.T) (*testEnv, *CommunityService) {
	t.Helper()
	env := setupEnv(t)
	_, err := env.db.ImportBlockedWords(strings.NewReader("idiota\nburro\n"))
	require.NoError(t, err)
	return env, NewCommunityService(repository.NewCommunityRepository(env.db), env.db, env.metrics)
}

func int64Ptr(v int64) *int64 { return &v }

func TestNestComments(t *testing.T) {
	flat := []models.Comment{
		{ID: 1, Body: "first"},
		{ID: 2, Body: "second"},
		{ID: 3, ParentID: int64Ptr(1), Body: "reply to first"},
		{ID: 4, ParentID: int64Ptr(2), Body: "reply to second"},
		{ID: 5, ParentID: int64Ptr(1), Body: "another reply to first"},
		{ID: 6, ParentID: int64Ptr(99), Body: "orphan"},
	}

	nested := NestComments(flat)
	require.Len(t, nested, 2)
	assert.Equal(t, int64(1), nested[0].ID)
	require.Len(t, nested[0].Replies, 2)
	assert.Equal(t, int64(3), nested[0].Replies[0].ID)
	assert.Equal(t, int64(5), nested[0].Replies[1].ID)
	require.Len(t, nested[1].Replies, 1)
	assert.Equal(t, int64(4), nested[1].Replies[0].ID)

	assert.Empty(t, NestComments(nil))
}

func TestCommunityService_Topics(t *testing.T) {
	env, svc := setupCommunity(t)
	author := env.user(t, "ana@example.com")
	other := env.user(t, "bia@example.com")

	topic, err := svc.CreateTopic(author.ID, TopicInput{Title: " Sono do bebê ", Body: "Dicas para a noite?"})
	require.NoError(t, err)
	assert.Equal(t, "Sono do bebê", topic.Title)
	assert.Equal(t, "geral", topic.Category)
	assert.Equal(t, author.Name, topic.AuthorName)

	_, err = svc.CreateTopic(author.ID, TopicInput{Title: "Dúvida", Body: "Saúde", Category: "saude"})
	require.NoError(t, err)

	topics, page, err := svc.ListTopics(models.TopicFilter{Category: "saude"})
	require.NoError(t, err)
	assert.Len(t, topics, 1)
	assert.Equal(t, 1, page.Total)

	topics, _, err = svc.ListTopics(models.TopicFilter{Search: "noite"})
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, topic.ID, topics[0].ID)

	_, err = svc.UpdateTopic(other.ID, topic.ID, TopicInput{Title: "Hijack"})
	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.ErrorIs(t, svc.DeleteTopic(other.ID, topic.ID), ErrNotAuthor)

	updated, err := svc.UpdateTopic(author.ID, topic.ID, TopicInput{Body: "Como fazer o bebê dormir a noite toda?"})
	require.NoError(t, err)
	assert.Equal(t, "Sono do bebê", updated.Title)
	assert.Equal(t, "Como fazer o bebê dormir a noite toda?", updated.Body)

	liked, count, err := svc.ToggleTopicLike(other.ID, topic.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.DeleteTopic(author.ID, topic.ID))
	_, err = svc.GetTopic(topic.ID)
	assert.ErrorIs(t, err, ErrTopicNotFound)
}

func TestCommunityService_Moderation(t *testing.T) {
	env, svc := setupCommunity(t)
	author := env.user(t, "ana@example.com")

	tests := []struct {
		name  string
		input TopicInput
		field string
	}{
		{"blocked word in title", TopicInput{Title: "Que IDIOTA", Body: "texto"}, "title"},
		{"blocked word in body", TopicInput{Title: "Pergunta", Body: "isso é burro!"}, "body"},
		{"missing body", TopicInput{Title: "Pergunta"}, "body"},
		{"title too long", TopicInput{Title: strings.Repeat("a", 201), Body: "texto"}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTopic(author.ID, tt.input)
			var ve validation.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.CommentsRejected))

	// Blocked words only match whole words
	_, err := svc.CreateTopic(author.ID, TopicInput{Title: "Burrow animals", Body: "Cute"})
	assert.NoError(t, err)

	t.Run("without a filter nothing is blocked", func(t *testing.T) {
		open := NewCommunityService(repository.NewCommunityRepository(env.db), nil, nil)
		_, err := open.CreateTopic(author.ID, TopicInput{Title: "idiota", Body: "burro"})
		assert.NoError(t, err)
	})
}

func TestCommunityService_Comments(t *testing.T) {
	env, svc := setupCommunity(t)
	author := env.user(t, "ana@example.com")
	other := env.user(t, "bia@example.com")

	topic, err := svc.CreateTopic(author.ID, TopicInput{Title: "Primeiros passos", Body: "Quando começaram?"})
	require.NoError(t, err)
	otherTopic, err := svc.CreateTopic(author.ID, TopicInput{Title: "Outro", Body: "Outro"})
	require.NoError(t, err)

	first, err := svc.CreateComment(other.ID, topic.ID, nil, "Com 11 meses")
	require.NoError(t, err)
	assert.Equal(t, other.Name, first.AuthorName)

	reply, err := svc.CreateComment(author.ID, topic.ID, &first.ID, "Que legal!")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)

	_, err = svc.CreateComment(other.ID, topic.ID, &reply.ID, "Too deep")
	assert.ErrorIs(t, err, ErrReplyTooDeep)
	_, err = svc.CreateComment(other.ID, otherTopic.ID, &first.ID, "Wrong topic")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = svc.CreateComment(other.ID, 9999, nil, "No topic")
	assert.ErrorIs(t, err, ErrTopicNotFound)

	var ve validation.ValidationError
	_, err = svc.CreateComment(other.ID, topic.ID, nil, "seu idiota")
	assert.True(t, errors.As(err, &ve))

	comments, err := svc.Comments(topic.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Len(t, comments[0].Replies, 1)
	assert.Equal(t, reply.ID, comments[0].Replies[0].ID)

	t.Run("only authors edit", func(t *testing.T) {
		_, err := svc.UpdateComment(author.ID, first.ID, "edited")
		assert.ErrorIs(t, err, ErrNotAuthor)

		edited, err := svc.UpdateComment(other.ID, first.ID, " Com 11 meses e meio ")
		require.NoError(t, err)
		assert.Equal(t, "Com 11 meses e meio", edited.Body)
	})

	t.Run("likes and flags", func(t *testing.T) {
		liked, count, err := svc.ToggleCommentLike(author.ID, first.ID)
		require.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, 1, count)

		flags, err := svc.FlagComment(author.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, flags)
		flags, err = svc.FlagComment(author.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, flags, "one flag per user")

		_, err = svc.FlagComment(author.ID, 9999)
		assert.ErrorIs(t, err, ErrCommentNotFound)
	})

	t.Run("deleting a comment removes its replies", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteComment(author.ID, first.ID), ErrNotAuthor)
		require.NoError(t, svc.DeleteComment(other.ID, first.ID))
		_, err := svc.GetComment(reply.ID)
		assert.ErrorIs(t, err, ErrCommentNotFound)
	})
}
