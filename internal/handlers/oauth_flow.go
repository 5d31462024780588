package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"growtrack/internal/security"
)

// OAuthProvider defines provider configuration and metadata
type OAuthProvider struct {
	Name        string
	Label       string
	Config      *oauth2.Config
	UserInfoURL string
	AuthParams  map[string]string
}

type oauthUserInfo struct {
	Subject string
	Email   string
	Name    string
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

func (h *AuthHandler) provider(w http.ResponseWriter, r *http.Request) (string, OAuthProvider, bool) {
	key := r.PathValue("provider")
	provider, ok := h.oauthProviders[key]
	if !ok || !provider.configured() {
		respondWithError(w, http.StatusNotFound, "OAuth provider not configured", "", nil)
		return "", OAuthProvider{}, false
	}
	return key, provider, true
}

// StartOAuth redirects to the provider's consent page with a signed state
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	key, provider, ok := h.provider(w, r)
	if !ok {
		return
	}

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, key)

	options := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	for k, v := range provider.AuthParams {
		options = append(options, oauth2.SetAuthURLParam(k, v))
	}

	authURL := config.AuthCodeURL(h.states.NewState(time.Now()), options...)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback exchanges the authorization code and responds with a bearer token
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	key, provider, ok := h.provider(w, r)
	if !ok {
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}
	if !h.states.Verify(r.URL.Query().Get("state"), time.Now()) {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, key)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "OAuth code exchange failed", err)
		return
	}

	info, err := fetchOAuthUser(ctx, provider, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, err.Error(), "", nil)
		return
	}

	result, err := h.authService.OAuthLogin(r.Context(), key, info.Subject, info.Email, info.Name)
	if err != nil {
		writeServiceError(w, err, "Failed to sign in with "+provider.Label)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// fetchOAuthUser reads the id, email and name from a userinfo endpoint
// shaped like Google's
func fetchOAuthUser(ctx context.Context, provider OAuthProvider, token *oauth2.Token) (oauthUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(provider.UserInfoURL)
	if err != nil {
		log.Printf("Failed to fetch %s user info: %v", provider.Label, err)
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info", provider.Label)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oauthUserInfo{}, fmt.Errorf("failed to fetch %s user info", provider.Label)
	}

	var payload struct {
		ID    string `json:"id"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return oauthUserInfo{}, fmt.Errorf("failed to parse %s user info", provider.Label)
	}

	subject := payload.ID
	if subject == "" {
		subject = payload.Sub
	}
	if subject == "" || payload.Email == "" {
		return oauthUserInfo{}, errors.New("provider did not return an account id and email")
	}
	return oauthUserInfo{Subject: subject, Email: payload.Email, Name: payload.Name}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	return fmt.Sprintf("%s/api/auth/%s/callback", security.BaseURL(r, h.oauthRedirectBaseURL), providerKey)
}
