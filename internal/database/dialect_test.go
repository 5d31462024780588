package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"growtrack/internal/config"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		assert.Equal(t, "sqlite3", dialect.DriverName())
	})

	t.Run("DSN adds pragmas", func(t *testing.T) {
		assert.Equal(t, "./app.db?_foreign_keys=on&_busy_timeout=5000", dialect.DSN(DialectConfig{Path: "./app.db"}))
		assert.Equal(t, "file:x.db?mode=ro", dialect.DSN(DialectConfig{Path: "file:x.db?mode=ro"}))
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		assert.True(t, dialect.SupportsLastInsertId())
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT * FROM children WHERE id = ? AND user_id = ?"
		assert.Equal(t, query, dialect.RewriteQuery(query))
	})

	t.Run("InsertIgnoreQuery", func(t *testing.T) {
		assert.Equal(t, "INSERT OR IGNORE INTO content_likes (content_id, user_id) VALUES (?, ?)",
			dialect.InsertIgnoreQuery("content_likes", "content_id", "user_id"))
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		assert.Equal(t, "sqlite", dialect.MigrationsSubdir())
	})

	t.Run("ResetSequenceQuery", func(t *testing.T) {
		assert.Empty(t, dialect.ResetSequenceQuery("children"))
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		assert.Equal(t, "postgres", dialect.DriverName())
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		assert.False(t, dialect.SupportsLastInsertId())
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		got := dialect.RewriteQuery("SELECT * FROM calendar_events WHERE calendar_id = ? AND start_date <= ? AND end_date >= ?")
		assert.Equal(t, "SELECT * FROM calendar_events WHERE calendar_id = $1 AND start_date <= $2 AND end_date >= $3", got)
	})

	t.Run("InsertIgnoreQuery", func(t *testing.T) {
		assert.Equal(t, "INSERT INTO topic_likes (topic_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			dialect.InsertIgnoreQuery("topic_likes", "topic_id", "user_id"))
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		assert.Equal(t, "postgres", dialect.MigrationsSubdir())
	})

	t.Run("ResetSequenceQuery", func(t *testing.T) {
		assert.Equal(t, "SELECT setval(pg_get_serial_sequence('children', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM children",
			dialect.ResetSequenceQuery("children"))
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		assert.Equal(t, "mysql", dialect.DriverName())
	})

	t.Run("DSN enables parseTime", func(t *testing.T) {
		assert.Equal(t, "user:pw@tcp(db:3306)/app?parseTime=true", dialect.DSN(DialectConfig{URL: "user:pw@tcp(db:3306)/app"}))
		assert.Equal(t, "user:pw@tcp(db:3306)/app?charset=utf8mb4&parseTime=true", dialect.DSN(DialectConfig{URL: "user:pw@tcp(db:3306)/app?charset=utf8mb4"}))
		assert.Equal(t, "u@/app?parseTime=false", dialect.DSN(DialectConfig{URL: "u@/app?parseTime=false"}))
	})

	t.Run("InsertIgnoreQuery", func(t *testing.T) {
		assert.Equal(t, "INSERT IGNORE INTO blocked_words (word) VALUES (?)", dialect.InsertIgnoreQuery("blocked_words", "word"))
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		assert.Equal(t, "mysql", dialect.MigrationsSubdir())
	})
}

func TestDialectForConfig(t *testing.T) {
	tests := []struct {
		dbType  string
		want    string
		wantErr bool
	}{
		{dbType: "", want: "sqlite3"},
		{dbType: "sqlite", want: "sqlite3"},
		{dbType: "PostgreSQL", want: "postgres"},
		{dbType: "mysql", want: "mysql"},
		{dbType: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			dialect, _, err := dialectFor(&config.Config{DatabaseType: tt.dbType})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, dialect.DriverName())
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := `
-- first table
CREATE TABLE a (id INTEGER);

CREATE TABLE b (
    id INTEGER -- trailing note kept
);
   ;
`
	got := SplitStatements(content)
	assert.Equal(t, []string{
		"CREATE TABLE a (id INTEGER)",
		"CREATE TABLE b (\n    id INTEGER -- trailing note kept\n)",
	}, got)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, tokenize("Hello, WORLD! hello 42"))
	assert.Empty(t, tokenize("  ... "))
}
