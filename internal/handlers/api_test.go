package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growtrack/internal/database"
	"growtrack/internal/metrics"
	"growtrack/internal/repository"
	"growtrack/internal/security"
	"growtrack/internal/service"
)

type apiEnv struct {
	db      *database.DB
	handler http.Handler
	content *service.ContentService
	auth    *AuthHandler
}

// setupAPI wires the full router against a temporary sqlite database
func setupAPI(t *testing.T, providers map[string]OAuthProvider) *apiEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations"))
	_, err = db.ImportBlockedWords(strings.NewReader("idiota\n"))
	require.NoError(t, err)

	m := metrics.New()
	clock := service.NewClock(time.UTC)
	email, err := service.NewEmailService(context.Background(), "", "", "", "", false, m)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	authService := service.NewAuthService(users, security.NewTokenIssuer("test-secret", time.Hour), email, m)
	children := service.NewChildService(repository.NewChildRepository(db), clock)
	dev := service.NewDevelopmentService(children, repository.NewMilestoneRepository(db), clock, m)
	calendars := service.NewCalendarService(repository.NewCalendarRepository(db), users, children, email, clock)
	content := service.NewContentService(repository.NewContentRepository(db), children, clock)
	community := service.NewCommunityService(repository.NewCommunityRepository(db), db, m)

	auth := NewAuthHandler(authService, providers, "", security.NewStateSigner("test-secret", 10*time.Minute))
	handler := NewRouter(Routes{
		Middleware: NewMiddleware(authService, security.NewRateLimiter(100, time.Minute), m, ""),
		Auth:       auth,
		Children:   NewChildHandler(children, time.UTC),
		Milestones: NewMilestoneHandler(dev, time.UTC),
		Calendars:  NewCalendarHandler(calendars, time.UTC),
		Content:    NewContentHandler(content),
		Community:  NewCommunityHandler(community),
		DB:         db,
		Metrics:    m,
	})
	return &apiEnv{db: db, handler: handler, content: content, auth: auth}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

// register creates an account and returns its token and user ID
func (e *apiEnv) register(t *testing.T, email string) (string, int64) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "supersecret", "name": "Parent " + email,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	decode(t, rec, &result)
	return result.Token, result.User.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type idBody struct {
	ID int64 `json:"id"`
}

func TestAPI_Health(t *testing.T) {
	env := setupAPI(t, nil)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "growtrack_http_requests_total")
}

func TestAPI_Auth(t *testing.T) {
	env := setupAPI(t, nil)
	token, _ := env.register(t, "ana@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "ANA@example.com", "password": "supersecret", "name": "Ana",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid payload", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"email": "not-an-email", "password": "supersecret", "name": "Ana",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email", decodeError(t, rec).Error.Field)
	})

	t.Run("login", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ana@example.com", "password": "supersecret",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "ana@example.com", "password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		decode(t, rec, &body)
		assert.Equal(t, "ana@example.com", body.User.Email)

		assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/me", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/me", "garbage", nil).Code)
	})

	t.Run("update profile and password", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/auth/update-profile", token, map[string]string{"name": "Ana Clara"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ana Clara")

		rec = env.do(t, http.MethodPatch, "/api/auth/update-password", token, map[string]string{
			"currentPassword": "nope-nope", "newPassword": "evenbettersecret",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodPatch, "/api/auth/update-password", token, map[string]string{
			"currentPassword": "supersecret", "newPassword": "evenbettersecret",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unconfigured oauth provider", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/auth/google/start", "", nil).Code)
	})
}

func TestAPI_ChildrenAndMilestones(t *testing.T) {
	env := setupAPI(t, nil)
	token, _ := env.register(t, "ana@example.com")
	other, _ := env.register(t, "bia@example.com")

	today := time.Now().UTC()
	birth := time.Date(today.Year(), today.Month()-14, 1, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
	rec := env.do(t, http.MethodPost, "/api/children", token, map[string]string{
		"name": "Lia", "birthDate": birth, "gender": "female",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Child idBody `json:"child"`
	}
	decode(t, rec, &created)
	childPath := fmt.Sprintf("/api/children/%d", created.Child.ID)

	t.Run("validation and ownership", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/children", token, map[string]string{
			"name": "Leo", "birthDate": birth, "gender": "robot",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "gender", decodeError(t, rec).Error.Field)

		future := time.Now().UTC().AddDate(0, 1, 0).Format(time.DateOnly)
		rec = env.do(t, http.MethodPost, "/api/children", token, map[string]string{
			"name": "Leo", "birthDate": future, "gender": "male",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, childPath, other, nil).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/children/abc", token, nil).Code)
	})

	t.Run("age", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, childPath+"/age", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var age service.ChildAge
		decode(t, rec, &age)
		assert.Equal(t, 14, age.AgeInMonths)
		assert.Equal(t, 1, age.Years)
	})

	var delayedID int64
	t.Run("statuses", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, childPath+"/milestones", token, map[string]interface{}{
			"title": "Sustenta a cabeça", "category": "motor",
			"expectedAge": map[string]int{"min": 0, "max": 6},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var body struct {
			Milestone struct {
				ID     int64  `json:"id"`
				Status string `json:"status"`
			} `json:"milestone"`
		}
		decode(t, rec, &body)
		assert.Equal(t, "delayed", body.Milestone.Status)
		delayedID = body.Milestone.ID

		rec = env.do(t, http.MethodPost, childPath+"/milestones", token, map[string]interface{}{
			"title": "Corre", "category": "motor",
			"expectedAge": map[string]int{"min": 30, "max": 36},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		decode(t, rec, &body)
		assert.Equal(t, "pending", body.Milestone.Status)

		rec = env.do(t, http.MethodPost, childPath+"/milestones", token, map[string]interface{}{
			"title": "Invertido", "category": "motor",
			"expectedAge": map[string]int{"min": 12, "max": 6},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("achieve", func(t *testing.T) {
		path := fmt.Sprintf("%s/milestones/%d/achieve", childPath, delayedID)

		future := time.Now().UTC().AddDate(0, 0, 3).Format(time.DateOnly)
		rec := env.do(t, http.MethodPost, path, token, map[string]string{"achievedDate": future})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "achievedDate", decodeError(t, rec).Error.Field)

		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		env.handler.ServeHTTP(rr, r)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var body struct {
			Milestone struct {
				AchievedDate *time.Time `json:"achievedDate"`
				Status       string     `json:"status"`
			} `json:"milestone"`
		}
		decode(t, rr, &body)
		assert.NotNil(t, body.Milestone.AchievedDate)
		assert.NotEqual(t, "delayed", body.Milestone.Status)
	})

	t.Run("summary and list", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, childPath+"/milestones/summary", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Summary struct {
				Total  int            `json:"total"`
				Counts map[string]int `json:"counts"`
			} `json:"summary"`
		}
		decode(t, rec, &body)
		assert.Equal(t, 2, body.Summary.Total)
		assert.Equal(t, 1, body.Summary.Counts["pending"])

		rec = env.do(t, http.MethodGet, childPath+"/milestones", other, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := fmt.Sprintf("%s/milestones/%d", childPath, delayedID)
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, token, nil).Code)
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, childPath, token, nil).Code)
	})
}

func TestAPI_CalendarsAndEvents(t *testing.T) {
	env := setupAPI(t, nil)
	owner, _ := env.register(t, "ana@example.com")
	sharee, shareeID := env.register(t, "bia@example.com")
	stranger, _ := env.register(t, "caio@example.com")

	rec := env.do(t, http.MethodPost, "/api/calendars", owner, map[string]string{"name": "Família"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Calendar struct {
			ID    int64  `json:"id"`
			Color string `json:"color"`
		} `json:"calendar"`
	}
	decode(t, rec, &created)
	calPath := fmt.Sprintf("/api/calendars/%d", created.Calendar.ID)

	rec = env.do(t, http.MethodPost, calPath+"/events", owner, map[string]interface{}{
		"title": "Natação", "startDate": "2025-06-02T10:00:00Z", "endDate": "2025-06-02T11:00:00Z",
		"recurrence": "weekly",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ev struct {
		Event struct {
			ID    int64  `json:"id"`
			Color string `json:"color"`
		} `json:"event"`
	}
	decode(t, rec, &ev)
	assert.Equal(t, "#4F46E5", ev.Event.Color)
	eventPath := fmt.Sprintf("/api/events/%d", ev.Event.ID)

	t.Run("sharing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, calPath, sharee, nil).Code)

		rec := env.do(t, http.MethodPost, calPath+"/share", owner, map[string]string{
			"email": "bia@example.com", "permission": "view",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, calPath, sharee, nil).Code)
		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, eventPath, sharee, nil).Code)
		rec = env.do(t, http.MethodPost, calPath+"/events", sharee, map[string]interface{}{
			"title": "Festa", "startDate": "2025-06-07T15:00:00Z",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPatch, calPath, sharee, map[string]string{"name": "Minha"}).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, eventPath, stranger, nil).Code)

		rec = env.do(t, http.MethodPost, calPath+"/share", owner, map[string]string{
			"email": "bia@example.com", "permission": "admin",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodPost, calPath+"/share", owner, map[string]string{
			"email": "nobody@example.com", "permission": "edit",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("window", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, calPath+"/events?startDate=2025-06-01&endDate=2025-06-20", owner, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Events []struct {
				StartDate time.Time `json:"startDate"`
			} `json:"events"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Events, 3)
		assert.Equal(t, 16, body.Events[2].StartDate.Day())

		rec = env.do(t, http.MethodGet, calPath+"/events?startDate=2025-06-20&endDate=2025-06-01", owner, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(t, http.MethodGet, calPath+"/events", owner, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("occurrences", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, eventPath+"/occurrences?count=3", owner, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Occurrences []time.Time `json:"occurrences"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Occurrences, 3)
		assert.Equal(t, 7*24*time.Hour, body.Occurrences[1].Sub(body.Occurrences[0]))

		rec = env.do(t, http.MethodGet, eventPath+"/occurrences", owner, nil)
		decode(t, rec, &body)
		assert.Len(t, body.Occurrences, service.DefaultOccurrences)
	})

	t.Run("month", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, calPath+"/month?year=2025&month=6", owner, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var view struct {
			Year  int `json:"year"`
			Month int `json:"month"`
			Days  []struct {
				Day    int               `json:"day"`
				Events []json.RawMessage `json:"events"`
			} `json:"days"`
		}
		decode(t, rec, &view)
		assert.Equal(t, 6, view.Month)
		require.Len(t, view.Days, 42)

		withEvents := 0
		for _, d := range view.Days {
			if len(d.Events) > 0 {
				withEvents++
			}
		}
		// Every Monday in the grid has the swim class
		assert.GreaterOrEqual(t, withEvents, 5)

		rec = env.do(t, http.MethodGet, calPath+"/month?year=2025&month=13", owner, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, calPath+"/events", owner, map[string]interface{}{
			"title": "Volta", "startDate": "2025-06-02T10:00:00Z", "endDate": "2025-06-01T10:00:00Z",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "endDate", decodeError(t, rec).Error.Field)

		rec = env.do(t, http.MethodPost, calPath+"/events", owner, map[string]interface{}{
			"title": "Anual", "startDate": "2025-06-02T10:00:00Z", "recurrence": "yearly",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update keeps omitted fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, eventPath, owner, map[string]string{"title": "Natação infantil"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Event struct {
				Title      string `json:"title"`
				Recurrence string `json:"recurrence"`
			} `json:"event"`
		}
		decode(t, rec, &body)
		assert.Equal(t, "Natação infantil", body.Event.Title)
		assert.Equal(t, "weekly", body.Event.Recurrence)
	})

	t.Run("unshare", func(t *testing.T) {
		path := fmt.Sprintf("%s/share/%d", calPath, shareeID)
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, sharee, nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, calPath, sharee, nil).Code)
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, eventPath, owner, nil).Code)
	})
}

func TestAPI_Content(t *testing.T) {
	env := setupAPI(t, nil)
	_, err := env.content.SeedDefaultContent()
	require.NoError(t, err)
	token, _ := env.register(t, "ana@example.com")

	rec := env.do(t, http.MethodGet, "/api/content?limit=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Content []struct {
			ID        int64 `json:"id"`
			LikedByMe bool  `json:"likedByMe"`
		} `json:"content"`
		Pagination struct {
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	decode(t, rec, &list)
	require.Len(t, list.Content, 3)
	assert.Equal(t, 3, list.Pagination.Limit)
	assert.Greater(t, list.Pagination.Total, 3)

	itemPath := fmt.Sprintf("/api/content/%d", list.Content[0].ID)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, itemPath+"/like", "", nil).Code)

	rec = env.do(t, http.MethodPost, itemPath+"/like", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":true,"likes":1}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, itemPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var item struct {
		Content struct {
			LikedByMe bool `json:"likedByMe"`
			Views     int  `json:"views"`
		} `json:"content"`
	}
	decode(t, rec, &item)
	assert.True(t, item.Content.LikedByMe)
	assert.Equal(t, 1, item.Content.Views)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/content/9999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/content/recommended", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/content?page=x", "", nil).Code)
}

func TestAPI_Community(t *testing.T) {
	env := setupAPI(t, nil)
	author, _ := env.register(t, "ana@example.com")
	reader, _ := env.register(t, "bia@example.com")

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/topics", "", nil).Code)

	rec := env.do(t, http.MethodPost, "/api/topics", author, map[string]string{
		"title": "Introdução alimentar", "body": "Quando começaram?", "category": "duvidas",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Topic idBody `json:"topic"`
	}
	decode(t, rec, &created)
	topicPath := fmt.Sprintf("/api/topics/%d", created.Topic.ID)

	t.Run("moderation and validation", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/topics", author, map[string]string{
			"title": "Que idiota", "body": "texto",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "title", decodeError(t, rec).Error.Field)

		rec = env.do(t, http.MethodPost, "/api/topics", author, map[string]string{
			"title": "Oi", "body": "texto", "category": "política",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("authorship", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, topicPath, reader, map[string]string{"title": "Meu agora"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, topicPath+"/like", reader, nil)
		assert.JSONEq(t, `{"liked":true,"likes":1}`, rec.Body.String())
	})

	t.Run("comments", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, topicPath+"/comments", reader, map[string]string{"body": "Aos seis meses"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var parent struct {
			Comment idBody `json:"comment"`
		}
		decode(t, rec, &parent)

		rec = env.do(t, http.MethodPost, topicPath+"/comments", author, map[string]interface{}{
			"body": "Obrigada!", "parentId": parent.Comment.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var reply struct {
			Comment idBody `json:"comment"`
		}
		decode(t, rec, &reply)

		rec = env.do(t, http.MethodPost, topicPath+"/comments", reader, map[string]interface{}{
			"body": "Mais fundo", "parentId": reply.Comment.ID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodGet, topicPath+"/comments", reader, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var thread struct {
			Comments []struct {
				ID      int64 `json:"id"`
				Replies []struct {
					ID int64 `json:"id"`
				} `json:"replies"`
			} `json:"comments"`
		}
		decode(t, rec, &thread)
		require.Len(t, thread.Comments, 1)
		require.Len(t, thread.Comments[0].Replies, 1)
		assert.Equal(t, reply.Comment.ID, thread.Comments[0].Replies[0].ID)

		commentPath := fmt.Sprintf("/api/comments/%d", parent.Comment.ID)
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, commentPath, author, nil).Code)

		rec = env.do(t, http.MethodPost, commentPath+"/flag", author, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"flags":1}`, rec.Body.String())

		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, commentPath, reader, nil).Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, topicPath, author, nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, topicPath, author, nil).Code)
	})
}
