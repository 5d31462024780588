package handlers

import (
	"net/http"

	"growtrack/internal/metrics"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping() error
}

// Routes bundles the handlers served by the API
type Routes struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Children   *ChildHandler
	Milestones *MilestoneHandler
	Calendars  *CalendarHandler
	Content    *ContentHandler
	Community  *CommunityHandler
	DB         Pinger
	Metrics    *metrics.Metrics
}

// NewRouter registers every API route and wraps the mux with the
// cross-cutting middleware
func NewRouter(rt Routes) http.Handler {
	mux := http.NewServeMux()
	mw := rt.Middleware
	auth := mw.RequireAuth

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if rt.DB != nil {
			if err := rt.DB.Ping(); err != nil {
				respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", "Health check failed", err)
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics.Handler())
	}

	// Auth
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(rt.Auth.Login))
	mux.HandleFunc("GET /api/auth/me", auth(rt.Auth.Me))
	mux.HandleFunc("PATCH /api/auth/update-profile", auth(rt.Auth.UpdateProfile))
	mux.HandleFunc("PATCH /api/auth/update-password", mw.RateLimit(auth(rt.Auth.UpdatePassword)))
	mux.HandleFunc("GET /api/auth/{provider}/start", mw.RateLimit(rt.Auth.StartOAuth))
	mux.HandleFunc("GET /api/auth/{provider}/callback", mw.RateLimit(rt.Auth.OAuthCallback))

	// Children
	mux.HandleFunc("GET /api/children", auth(rt.Children.List))
	mux.HandleFunc("POST /api/children", auth(rt.Children.Create))
	mux.HandleFunc("GET /api/children/{id}", auth(rt.Children.Get))
	mux.HandleFunc("PATCH /api/children/{id}", auth(rt.Children.Update))
	mux.HandleFunc("DELETE /api/children/{id}", auth(rt.Children.Delete))
	mux.HandleFunc("GET /api/children/{id}/age", auth(rt.Children.Age))

	// Milestones
	mux.HandleFunc("GET /api/children/{childId}/milestones", auth(rt.Milestones.List))
	mux.HandleFunc("POST /api/children/{childId}/milestones", auth(rt.Milestones.Create))
	mux.HandleFunc("GET /api/children/{childId}/milestones/summary", auth(rt.Milestones.Summary))
	mux.HandleFunc("GET /api/children/{childId}/milestones/{id}", auth(rt.Milestones.Get))
	mux.HandleFunc("PATCH /api/children/{childId}/milestones/{id}", auth(rt.Milestones.Update))
	mux.HandleFunc("DELETE /api/children/{childId}/milestones/{id}", auth(rt.Milestones.Delete))
	mux.HandleFunc("POST /api/children/{childId}/milestones/{id}/achieve", auth(rt.Milestones.Achieve))

	// Content library
	mux.HandleFunc("GET /api/content", mw.OptionalAuth(rt.Content.List))
	mux.HandleFunc("GET /api/content/recommended", auth(rt.Content.Recommended))
	mux.HandleFunc("GET /api/content/{id}", mw.OptionalAuth(rt.Content.Get))
	mux.HandleFunc("POST /api/content/{id}/like", auth(rt.Content.ToggleLike))

	// Calendars
	mux.HandleFunc("GET /api/calendars", auth(rt.Calendars.List))
	mux.HandleFunc("POST /api/calendars", auth(rt.Calendars.Create))
	mux.HandleFunc("GET /api/calendars/{id}", auth(rt.Calendars.Get))
	mux.HandleFunc("PATCH /api/calendars/{id}", auth(rt.Calendars.Update))
	mux.HandleFunc("DELETE /api/calendars/{id}", auth(rt.Calendars.Delete))
	mux.HandleFunc("POST /api/calendars/{id}/share", auth(rt.Calendars.Share))
	mux.HandleFunc("DELETE /api/calendars/{id}/share/{userId}", auth(rt.Calendars.Unshare))

	// Events
	mux.HandleFunc("GET /api/calendars/{calendarId}/events", auth(rt.Calendars.ListEvents))
	mux.HandleFunc("POST /api/calendars/{calendarId}/events", auth(rt.Calendars.CreateEvent))
	mux.HandleFunc("GET /api/calendars/{calendarId}/month", auth(rt.Calendars.Month))
	mux.HandleFunc("GET /api/events/{id}", auth(rt.Calendars.GetEvent))
	mux.HandleFunc("PATCH /api/events/{id}", auth(rt.Calendars.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", auth(rt.Calendars.DeleteEvent))
	mux.HandleFunc("GET /api/events/{id}/occurrences", auth(rt.Calendars.Occurrences))

	// Community
	mux.HandleFunc("GET /api/topics", auth(rt.Community.ListTopics))
	mux.HandleFunc("POST /api/topics", auth(rt.Community.CreateTopic))
	mux.HandleFunc("GET /api/topics/{id}", auth(rt.Community.GetTopic))
	mux.HandleFunc("PATCH /api/topics/{id}", auth(rt.Community.UpdateTopic))
	mux.HandleFunc("DELETE /api/topics/{id}", auth(rt.Community.DeleteTopic))
	mux.HandleFunc("POST /api/topics/{id}/like", auth(rt.Community.ToggleTopicLike))
	mux.HandleFunc("GET /api/topics/{id}/comments", auth(rt.Community.ListComments))
	mux.HandleFunc("POST /api/topics/{id}/comments", auth(rt.Community.CreateComment))
	mux.HandleFunc("GET /api/comments/{id}", auth(rt.Community.GetComment))
	mux.HandleFunc("PATCH /api/comments/{id}", auth(rt.Community.UpdateComment))
	mux.HandleFunc("DELETE /api/comments/{id}", auth(rt.Community.DeleteComment))
	mux.HandleFunc("POST /api/comments/{id}/like", auth(rt.Community.ToggleCommentLike))
	mux.HandleFunc("POST /api/comments/{id}/flag", auth(rt.Community.FlagComment))

	return mw.CORS(Logging(mw.Metrics(mux)))
}
