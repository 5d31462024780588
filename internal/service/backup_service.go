package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"growtrack/internal/database"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string            `json:"version"`
	ExportedAt   time.Time         `json:"exported_at"`
	DatabaseType string            `json:"database_type"`
	Users        []UserBackup      `json:"users"`
	Children     []ChildBackup     `json:"children"`
	Milestones   []MilestoneBackup `json:"milestones"`
	Calendars    []CalendarBackup  `json:"calendars"`
	Events       []EventBackup     `json:"events"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChildBackup represents a child record for backup
type ChildBackup struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MilestoneBackup represents a milestone with its resource links
type MilestoneBackup struct {
	ID             int64      `json:"id"`
	ChildID        int64      `json:"child_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	ExpectedAgeMin int        `json:"expected_age_min"`
	ExpectedAgeMax int        `json:"expected_age_max"`
	AchievedDate   *time.Time `json:"achieved_date"`
	Notes          string     `json:"notes"`
	Resources      []string   `json:"resources"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CalendarBackup represents a calendar with its shares
type CalendarBackup struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Color       string        `json:"color"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Shares      []ShareBackup `json:"shares"`
}

// ShareBackup represents a calendar share
type ShareBackup struct {
	UserID     int64  `json:"user_id"`
	Permission string `json:"permission"`
}

// EventBackup represents a calendar event for backup
type EventBackup struct {
	ID          int64     `json:"id"`
	CalendarID  int64     `json:"calendar_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	AllDay      bool      `json:"all_day"`
	ChildID     *int64    `json:"child_id"`
	Recurrence  string    `json:"recurrence"`
	Color       string    `json:"color"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// backupTables lists restored tables in dependency order
var backupTables = []string{"users", "children", "milestones", "milestone_resources", "calendars", "calendar_shares", "calendar_events"}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Collect reads every backed-up table into memory
func (s *BackupService) Collect() (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
		Users:        []UserBackup{},
		Children:     []ChildBackup{},
		Milestones:   []MilestoneBackup{},
		Calendars:    []CalendarBackup{},
		Events:       []EventBackup{},
	}

	if err := s.exportUsers(backup); err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportChildren(backup); err != nil {
		return nil, fmt.Errorf("failed to export children: %w", err)
	}
	if err := s.exportMilestones(backup); err != nil {
		return nil, fmt.Errorf("failed to export milestones: %w", err)
	}
	if err := s.exportCalendars(backup); err != nil {
		return nil, fmt.Errorf("failed to export calendars: %w", err)
	}
	if err := s.exportEvents(backup); err != nil {
		return nil, fmt.Errorf("failed to export events: %w", err)
	}
	return backup, nil
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.write(file)
	if err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d users, %d children, %d milestones, %d calendars, %d events",
		len(backup.Users), len(backup.Children), len(backup.Milestones),
		len(backup.Calendars), len(backup.Events))
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	_, err := s.write(w)
	return err
}

func (s *BackupService) write(w io.Writer) (*BackupData, error) {
	backup, err := s.Collect()
	if err != nil {
		return nil, err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores a database from a backup file. With clear set, existing
// rows are removed first.
func (s *BackupService) Import(inputPath string, clear bool) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file, clear)
}

// ImportFromReader restores a database from a backup reader. The restore
// runs in one transaction so a failure leaves the database untouched.
func (s *BackupService) ImportFromReader(reader io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(func(tx *database.Tx) error {
		if clear {
			if err := clearTables(tx); err != nil {
				return fmt.Errorf("failed to clear tables: %w", err)
			}
		}

		// Import in order of dependencies
		if err := importUsers(tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := importChildren(tx, backup.Children); err != nil {
			return fmt.Errorf("failed to import children: %w", err)
		}
		if err := importMilestones(tx, backup.Milestones); err != nil {
			return fmt.Errorf("failed to import milestones: %w", err)
		}
		if err := importCalendars(tx, backup.Calendars); err != nil {
			return fmt.Errorf("failed to import calendars: %w", err)
		}
		if err := importEvents(tx, backup.Events); err != nil {
			return fmt.Errorf("failed to import events: %w", err)
		}
		return resetSequences(tx)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func clearTables(tx *database.Tx) error {
	for i := len(backupTables) - 1; i >= 0; i-- {
		if _, err := tx.Exec("DELETE FROM " + backupTables[i]); err != nil {
			return err
		}
	}
	return nil
}

func resetSequences(tx *database.Tx) error {
	for _, table := range []string{"users", "children", "milestones", "milestone_resources", "calendars", "calendar_events"} {
		query := tx.GetDialect().ResetSequenceQuery(table)
		if query == "" {
			continue
		}
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportChildren(backup *BackupData) error {
	query := "SELECT id, user_id, name, birth_date, gender, notes, created_at, updated_at FROM children ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChildBackup
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.BirthDate, &c.Gender, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		backup.Children = append(backup.Children, c)
	}
	return rows.Err()
}

func (s *BackupService) exportMilestones(backup *BackupData) error {
	resources, err := s.milestoneResources()
	if err != nil {
		return err
	}

	query := "SELECT id, child_id, title, description, category, expected_age_min, expected_age_max, achieved_date, notes, created_at, updated_at FROM milestones ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MilestoneBackup
		var achieved sql.NullTime
		if err := rows.Scan(&m.ID, &m.ChildID, &m.Title, &m.Description, &m.Category, &m.ExpectedAgeMin, &m.ExpectedAgeMax, &achieved, &m.Notes, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return err
		}
		if achieved.Valid {
			m.AchievedDate = &achieved.Time
		}
		m.Resources = resources[m.ID]
		if m.Resources == nil {
			m.Resources = []string{}
		}
		backup.Milestones = append(backup.Milestones, m)
	}
	return rows.Err()
}

func (s *BackupService) milestoneResources() (map[int64][]string, error) {
	rows, err := s.db.Query("SELECT milestone_id, url FROM milestone_resources ORDER BY milestone_id, position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var url string
		if err := rows.Scan(&id, &url); err != nil {
			return nil, err
		}
		resources[id] = append(resources[id], url)
	}
	return resources, rows.Err()
}

func (s *BackupService) exportCalendars(backup *BackupData) error {
	shares := make(map[int64][]ShareBackup)
	shareRows, err := s.db.Query("SELECT calendar_id, user_id, permission FROM calendar_shares ORDER BY calendar_id, user_id")
	if err != nil {
		return err
	}
	for shareRows.Next() {
		var calendarID int64
		var share ShareBackup
		if err := shareRows.Scan(&calendarID, &share.UserID, &share.Permission); err != nil {
			shareRows.Close()
			return err
		}
		shares[calendarID] = append(shares[calendarID], share)
	}
	shareRows.Close()
	if err := shareRows.Err(); err != nil {
		return err
	}

	rows, err := s.db.Query("SELECT id, owner_id, name, description, color, created_at, updated_at FROM calendars ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CalendarBackup
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		c.Shares = shares[c.ID]
		if c.Shares == nil {
			c.Shares = []ShareBackup{}
		}
		backup.Calendars = append(backup.Calendars, c)
	}
	return rows.Err()
}

func (s *BackupService) exportEvents(backup *BackupData) error {
	query := "SELECT id, calendar_id, title, description, start_date, end_date, all_day, child_id, recurrence, color, created_by, created_at, updated_at FROM calendar_events ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e EventBackup
		var childID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.CalendarID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.AllDay, &childID, &e.Recurrence, &e.Color, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		if childID.Valid {
			e.ChildID = &childID.Int64
		}
		backup.Events = append(backup.Events, e)
	}
	return rows.Err()
}

func importUsers(tx *database.Tx, users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	query := "INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	for _, u := range users {
		if _, err := tx.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, u.OAuthProvider, u.OAuthSubject, u.CreatedAt, u.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importChildren(tx *database.Tx, children []ChildBackup) error {
	log.Printf("Importing %d children...", len(children))
	query := "INSERT INTO children (id, user_id, name, birth_date, gender, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	for _, c := range children {
		if _, err := tx.Exec(query, c.ID, c.UserID, c.Name, StoredDate(c.BirthDate), c.Gender, c.Notes, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import child %d: %w", c.ID, err)
		}
	}
	return nil
}

func importMilestones(tx *database.Tx, milestones []MilestoneBackup) error {
	log.Printf("Importing %d milestones...", len(milestones))
	query := "INSERT INTO milestones (id, child_id, title, description, category, expected_age_min, expected_age_max, achieved_date, notes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	for _, m := range milestones {
		var achieved interface{}
		if m.AchievedDate != nil {
			achieved = StoredDate(*m.AchievedDate)
		}
		if _, err := tx.Exec(query, m.ID, m.ChildID, m.Title, m.Description, m.Category, m.ExpectedAgeMin, m.ExpectedAgeMax, achieved, m.Notes, m.CreatedAt, m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import milestone %d: %w", m.ID, err)
		}

		for i, url := range m.Resources {
			if _, err := tx.Exec("INSERT INTO milestone_resources (milestone_id, position, url) VALUES (?, ?, ?)", m.ID, i, url); err != nil {
				return fmt.Errorf("failed to import resource for milestone %d: %w", m.ID, err)
			}
		}
	}
	return nil
}

func importCalendars(tx *database.Tx, calendars []CalendarBackup) error {
	log.Printf("Importing %d calendars...", len(calendars))
	query := "INSERT INTO calendars (id, owner_id, name, description, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	for _, c := range calendars {
		if _, err := tx.Exec(query, c.ID, c.OwnerID, c.Name, c.Description, c.Color, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import calendar %d: %w", c.ID, err)
		}

		for _, share := range c.Shares {
			shareQuery := "INSERT INTO calendar_shares (calendar_id, user_id, permission) VALUES (?, ?, ?)"
			if _, err := tx.Exec(shareQuery, c.ID, share.UserID, share.Permission); err != nil {
				return fmt.Errorf("failed to import share of calendar %d with user %d: %w", c.ID, share.UserID, err)
			}
		}
	}
	return nil
}

func importEvents(tx *database.Tx, events []EventBackup) error {
	log.Printf("Importing %d events...", len(events))
	query := "INSERT INTO calendar_events (id, calendar_id, title, description, start_date, end_date, all_day, child_id, recurrence, color, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	for _, e := range events {
		var childID interface{}
		if e.ChildID != nil {
			childID = *e.ChildID
		}
		if _, err := tx.Exec(query, e.ID, e.CalendarID, e.Title, e.Description, e.StartDate.UTC(), e.EndDate.UTC(), e.AllDay, childID, e.Recurrence, e.Color, e.CreatedBy, e.CreatedAt, e.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import event %d: %w", e.ID, err)
		}
	}
	return nil
}
