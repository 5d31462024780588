package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"growtrack/internal/config"
	"growtrack/internal/database"
	"growtrack/internal/handlers"
	"growtrack/internal/metrics"
	"growtrack/internal/repository"
	"growtrack/internal/security"
	"growtrack/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed moderation word list
	if err := db.SeedBlockedWords(cfg.WordListURL); err != nil {
		log.Printf("Warning: Failed to seed moderation word list: %v", err)
	}

	m := metrics.New()
	clock := service.NewClock(loc)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	contentRepo := repository.NewContentRepository(db)
	communityRepo := repository.NewCommunityRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug, m)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens, emailService, m)
	childService := service.NewChildService(childRepo, clock)
	devService := service.NewDevelopmentService(childService, milestoneRepo, clock, m)
	calendarService := service.NewCalendarService(calendarRepo, userRepo, childService, emailService, clock)
	contentService := service.NewContentService(contentRepo, childService, clock)
	communityService := service.NewCommunityService(communityRepo, db, m)

	// Seed default content library
	if cfg.SeedContent {
		if n, err := contentService.SeedDefaultContent(); err != nil {
			log.Printf("Warning: Failed to seed default content: %v", err)
		} else if n > 0 {
			log.Printf("Seeded %d content items", n)
		}
	}

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
			AuthParams: map[string]string{
				"prompt": "select_account",
			},
		},
	}

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	handler := handlers.NewRouter(handlers.Routes{
		Middleware: handlers.NewMiddleware(authService, rateLimiter, m, cfg.CORSOrigin),
		Auth:       handlers.NewAuthHandler(authService, oauthProviders, cfg.OAuthRedirectBaseURL, security.NewStateSigner(cfg.JWTSecret, 10*time.Minute)),
		Children:   handlers.NewChildHandler(childService, loc),
		Milestones: handlers.NewMilestoneHandler(devService, loc),
		Calendars:  handlers.NewCalendarHandler(calendarService, loc),
		Content:    handlers.NewContentHandler(contentService),
		Community:  handlers.NewCommunityHandler(communityService),
		DB:         db,
		Metrics:    m,
	})

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Drop idle rate limiter entries
		return rateLimiter.Run(gctx, 10*time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
