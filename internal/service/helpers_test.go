package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/require"

	"growtrack/internal/database"
	"growtrack/internal/metrics"
	"growtrack/internal/models"
	"growtrack/internal/repository"
	"growtrack/internal/security"
)

var testZone = time.FixedZone("BRT", -3*60*60)

// testNow is 2025-03-10 09:00 in testZone
var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, testZone)

func fixedClock() Clock {
	return Clock{Location: testZone, Now: func() time.Time { return testNow }}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeSES struct {
	mu   sync.Mutex
	sent []*sesv2.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSES) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, in := range f.sent {
		out = append(out, in.Destination.ToAddresses...)
	}
	return out
}

type testEnv struct {
	db       *database.DB
	metrics  *metrics.Metrics
	ses      *fakeSES
	users    *repository.UserRepository
	auth     *AuthService
	children *ChildService
	dev      *DevelopmentService
	calendar *CalendarService
	content  *ContentService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations"))

	m := metrics.New()
	ses := &fakeSES{}
	email := newEmailService(ses, "noreply@growtrack.test", "GrowTrack", "http://localhost:3000", false, m)
	clock := fixedClock()

	users := repository.NewUserRepository(db)
	children := NewChildService(repository.NewChildRepository(db), clock)
	return &testEnv{
		db:       db,
		metrics:  m,
		ses:      ses,
		users:    users,
		auth:     NewAuthService(users, security.NewTokenIssuer("test-secret", time.Hour), email, m),
		children: children,
		dev:      NewDevelopmentService(children, repository.NewMilestoneRepository(db), clock, m),
		calendar: NewCalendarService(repository.NewCalendarRepository(db), users, children, email, clock),
		content:  NewContentService(repository.NewContentRepository(db), children, clock),
	}
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := e.users.CreateUser(email, "hash", "Parent "+email)
	require.NoError(t, err)
	return user
}

func (e *testEnv) child(t *testing.T, userID int64, birth time.Time) *models.Child {
	t.Helper()
	child, err := e.children.Create(userID, ChildInput{Name: "Lia", BirthDate: birth, Gender: models.GenderFemale})
	require.NoError(t, err)
	return child
}
