package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"growtrack/internal/metrics"
	"growtrack/internal/models"
	"growtrack/internal/repository"
	"growtrack/internal/security"
	"growtrack/internal/validation"
)

// AuthResult is returned by every successful sign-in
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenIssuer
	email    *EmailService
	metrics  *metrics.Metrics
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, email *EmailService, m *metrics.Metrics) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		email:    email,
		metrics:  m,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Register creates a new account, sends the welcome email and signs the user in
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.metrics.IncrementUsersRegistered("password")

	// Registration succeeds even when the email cannot be sent
	if err := s.email.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
	}

	return s.issue(user)
}

// Login authenticates a user by email and password
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		s.metrics.IncrementAuthFailures()
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to its user
func (s *AuthService) Authenticate(token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.metrics.IncrementAuthFailures()
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		// Account was deleted after the token was issued
		return nil, security.ErrInvalidToken
	}
	return user, nil
}

// GetUser returns a user by ID
func (s *AuthService) GetUser(userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes a user's email and name. Empty values keep the current ones.
func (s *AuthService) UpdateProfile(userID int64, email, name string) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if email = normalizeEmail(email); email != "" && email != user.Email {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, err
		}
		other, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if other != nil {
			return nil, ErrEmailTaken
		}
		user.Email = email
	}
	if name = strings.TrimSpace(name); name != "" {
		if err := validation.ValidateName(name); err != nil {
			return nil, err
		}
		user.Name = name
	}

	if err := s.userRepo.UpdateProfile(user.ID, user.Email, user.Name); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword changes a user's password. Accounts created through an OAuth
// provider have no password and may set one without the current password.
func (s *AuthService) UpdatePassword(userID int64, currentPassword, newPassword string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.HasPassword() && !security.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(user.ID, passwordHash)
}

// OAuthLogin authenticates or creates a user using an OAuth provider
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*AuthResult, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}
	if user != nil {
		return s.issue(user)
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		if existingUser.OAuthProvider != "" {
			return nil, ErrEmailTaken
		}
		if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
			return nil, err
		}
		existingUser.OAuthProvider = provider
		existingUser.OAuthSubject = subject
		return s.issue(existingUser)
	}

	if name = strings.TrimSpace(name); name == "" {
		name = strings.Split(email, "@")[0]
	}
	user, err = s.userRepo.CreateOAuthUser(email, name, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	s.metrics.IncrementUsersRegistered(provider)

	if err := s.email.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
	}
	return s.issue(user)
}
