package repository

import (
	"database/sql"
	"fmt"
	"time"

	"growtrack/internal/database"
	"growtrack/internal/models"
)

const (
	calendarColumns = "c.id, c.owner_id, c.name, c.description, c.color, c.created_at, c.updated_at"
	eventColumns    = `id, calendar_id, title, description, start_date, end_date, all_day, child_id,
	recurrence, color, created_by, created_at, updated_at`
)

// CalendarRepository handles database operations for calendars, shares and events
type CalendarRepository struct {
	db *database.DB
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db *database.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func scanCalendar(row rowScanner) (*models.Calendar, error) {
	c := &models.Calendar{}
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCalendar inserts a calendar and fills in its ID
func (r *CalendarRepository) CreateCalendar(c *models.Calendar) error {
	query := "INSERT INTO calendars (owner_id, name, description, color) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, c.OwnerID, c.Name, c.Description, c.Color)
	if err != nil {
		return fmt.Errorf("failed to create calendar: %w", err)
	}

	now := time.Now()
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetCalendarByID retrieves a calendar without its shares
func (r *CalendarRepository) GetCalendarByID(id int64) (*models.Calendar, error) {
	c, err := scanCalendar(r.db.QueryRow("SELECT "+calendarColumns+" FROM calendars c WHERE c.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}
	return c, nil
}

// GetCalendarsForUser retrieves calendars the user owns or has been shared
func (r *CalendarRepository) GetCalendarsForUser(userID int64) ([]models.Calendar, error) {
	query := `
		SELECT ` + calendarColumns + `
		FROM calendars c
		WHERE c.owner_id = ?
		   OR c.id IN (SELECT calendar_id FROM calendar_shares WHERE user_id = ?)
		ORDER BY c.name, c.id
	`
	return r.listCalendars(query, userID, userID)
}

// GetAllCalendars retrieves every calendar
func (r *CalendarRepository) GetAllCalendars() ([]models.Calendar, error) {
	return r.listCalendars("SELECT " + calendarColumns + " FROM calendars c ORDER BY c.id")
}

func (r *CalendarRepository) listCalendars(query string, args ...interface{}) ([]models.Calendar, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer rows.Close()

	var calendars []models.Calendar
	for rows.Next() {
		c, err := scanCalendar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calendar: %w", err)
		}
		calendars = append(calendars, *c)
	}
	return calendars, rows.Err()
}

// UpdateCalendar saves a calendar's editable fields
func (r *CalendarRepository) UpdateCalendar(c *models.Calendar) error {
	query := `
		UPDATE calendars
		SET name = ?, description = ?, color = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, c.Name, c.Description, c.Color, c.ID); err != nil {
		return fmt.Errorf("failed to update calendar: %w", err)
	}
	c.UpdatedAt = time.Now()
	return nil
}

// DeleteCalendar deletes a calendar with its shares and events
func (r *CalendarRepository) DeleteCalendar(id int64) error {
	if _, err := r.db.Exec("DELETE FROM calendars WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	return nil
}

// GetShares lists the users a calendar is shared with
func (r *CalendarRepository) GetShares(calendarID int64) ([]models.CalendarShare, error) {
	query := `
		SELECT s.calendar_id, s.user_id, u.email, u.name, s.permission, s.created_at
		FROM calendar_shares s
		JOIN users u ON u.id = s.user_id
		WHERE s.calendar_id = ?
		ORDER BY u.name, u.id
	`
	rows, err := r.db.Query(query, calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar shares: %w", err)
	}
	defer rows.Close()

	shares := []models.CalendarShare{}
	for rows.Next() {
		var s models.CalendarShare
		if err := rows.Scan(&s.CalendarID, &s.UserID, &s.Email, &s.Name, &s.Permission, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calendar share: %w", err)
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

// GetSharePermission returns the permission granted to a user, or "" when not shared
func (r *CalendarRepository) GetSharePermission(calendarID, userID int64) (models.SharePermission, error) {
	var permission models.SharePermission
	err := r.db.QueryRow("SELECT permission FROM calendar_shares WHERE calendar_id = ? AND user_id = ?", calendarID, userID).Scan(&permission)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get calendar share: %w", err)
	}
	return permission, nil
}

// SaveShare grants or updates a user's access to a calendar
func (r *CalendarRepository) SaveShare(calendarID, userID int64, permission models.SharePermission) error {
	return r.db.WithTx(func(tx *database.Tx) error {
		result, err := tx.Exec("UPDATE calendar_shares SET permission = ? WHERE calendar_id = ? AND user_id = ?", permission, calendarID, userID)
		if err != nil {
			return fmt.Errorf("failed to update calendar share: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			return nil
		}

		query := "INSERT INTO calendar_shares (calendar_id, user_id, permission) VALUES (?, ?, ?)"
		if _, err := tx.Exec(query, calendarID, userID, permission); err != nil {
			return fmt.Errorf("failed to share calendar: %w", err)
		}
		return nil
	})
}

// DeleteShare revokes a user's access to a calendar and reports whether a share existed
func (r *CalendarRepository) DeleteShare(calendarID, userID int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM calendar_shares WHERE calendar_id = ? AND user_id = ?", calendarID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unshare calendar: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read unshare result: %w", err)
	}
	return n > 0, nil
}

func scanEvent(row rowScanner) (*models.CalendarEvent, error) {
	e := &models.CalendarEvent{}
	var childID sql.NullInt64
	err := row.Scan(
		&e.ID,
		&e.CalendarID,
		&e.Title,
		&e.Description,
		&e.StartDate,
		&e.EndDate,
		&e.AllDay,
		&childID,
		&e.Recurrence,
		&e.Color,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if childID.Valid {
		id := childID.Int64
		e.ChildID = &id
	}
	e.StartDate = e.StartDate.UTC()
	e.EndDate = e.EndDate.UTC()
	return e, nil
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// CreateEvent inserts an event and fills in its ID. Times are stored in UTC.
func (r *CalendarRepository) CreateEvent(e *models.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (calendar_id, title, description, start_date, end_date, all_day, child_id, recurrence, color, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, e.CalendarID, e.Title, e.Description, e.StartDate.UTC(), e.EndDate.UTC(),
		e.AllDay, nullInt64(e.ChildID), e.Recurrence, e.Color, e.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	now := time.Now()
	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// GetEventByID retrieves an event
func (r *CalendarRepository) GetEventByID(id int64) (*models.CalendarEvent, error) {
	e, err := scanEvent(r.db.QueryRow("SELECT "+eventColumns+" FROM calendar_events WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// GetEventsInWindow retrieves the events of a calendar that overlap [from, to].
// Recurring events that started before to are always included so callers
// can expand them into the window.
func (r *CalendarRepository) GetEventsInWindow(calendarID int64, from, to time.Time) ([]models.CalendarEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE calendar_id = ?
		  AND start_date <= ?
		  AND (end_date >= ? OR recurrence <> 'none')
		ORDER BY start_date, id
	`
	return r.listEvents(query, calendarID, to.UTC(), from.UTC())
}

// GetEventsByCalendar retrieves every event of a calendar
func (r *CalendarRepository) GetEventsByCalendar(calendarID int64) ([]models.CalendarEvent, error) {
	return r.listEvents("SELECT "+eventColumns+" FROM calendar_events WHERE calendar_id = ? ORDER BY start_date, id", calendarID)
}

func (r *CalendarRepository) listEvents(query string, args ...interface{}) ([]models.CalendarEvent, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// UpdateEvent saves an event's editable fields
func (r *CalendarRepository) UpdateEvent(e *models.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = ?, description = ?, start_date = ?, end_date = ?, all_day = ?, child_id = ?,
			recurrence = ?, color = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, e.Title, e.Description, e.StartDate.UTC(), e.EndDate.UTC(), e.AllDay,
		nullInt64(e.ChildID), e.Recurrence, e.Color, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	e.UpdatedAt = time.Now()
	return nil
}

// DeleteEvent deletes an event
func (r *CalendarRepository) DeleteEvent(id int64) error {
	if _, err := r.db.Exec("DELETE FROM calendar_events WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
