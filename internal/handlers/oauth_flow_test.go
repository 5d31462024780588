package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeProvider serves a token endpoint and a Google-shaped userinfo endpoint
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id": "google-42", "email": "Carla@Example.com", "name": "Carla",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOAuthFlow(t *testing.T) {
	srv := fakeProvider(t)
	env := setupAPI(t, map[string]OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				Endpoint: oauth2.Endpoint{
					AuthURL:   srv.URL + "/auth",
					TokenURL:  srv.URL + "/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
				Scopes: []string{"email", "profile"},
			},
			UserInfoURL: srv.URL + "/userinfo",
		},
	})

	rec := env.do(t, http.MethodGet, "/api/auth/google/start", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth", location.Path)
	assert.Equal(t, "http://example.com/api/auth/google/callback", location.Query().Get("redirect_uri"))
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	t.Run("rejects forged state", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/google/callback?code=good-code&state=forged", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects bad code", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/google/callback?code=bad&state="+url.QueryEscape(state), "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("signs in and reuses the account", func(t *testing.T) {
		var ids []int64
		for i := 0; i < 2; i++ {
			rec := env.do(t, http.MethodGet, "/api/auth/google/callback?code=good-code&state="+url.QueryEscape(state), "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var result struct {
				Token     string    `json:"token"`
				ExpiresAt time.Time `json:"expiresAt"`
				User      struct {
					ID    int64  `json:"id"`
					Email string `json:"email"`
				} `json:"user"`
			}
			decode(t, rec, &result)
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, "carla@example.com", result.User.Email)
			ids = append(ids, result.User.ID)

			assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/auth/me", result.Token, nil).Code)
		}
		assert.Equal(t, ids[0], ids[1])
	})
}
