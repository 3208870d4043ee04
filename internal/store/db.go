package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// EnsureSchema creates the tables on startup. The two unique constraints are
// the source of correctness for duplicate registration and duplicate
// attendance; application-level pre-checks only shortcut the common case.
func (d *DB) EnsureSchema(ctx context.Context) error {
	// one statement per Exec; pgx's extended protocol rejects batches
	statements := []string{
		`CREATE TABLE IF NOT EXISTS students (
			id             TEXT PRIMARY KEY,
			student_number TEXT NOT NULL,
			name           TEXT NOT NULL,
			password_hash  TEXT NOT NULL,
			day            TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uix_student_day UNIQUE (student_number, day)
		)`,
		`CREATE TABLE IF NOT EXISTS attendance_marks (
			id         TEXT PRIMARY KEY,
			student_id TEXT NOT NULL REFERENCES students(id),
			day        TEXT NOT NULL,
			period     TEXT NOT NULL,
			date       DATE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT uix_mark_once UNIQUE (student_id, day, period, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_students_number ON students(student_number)`,
		`CREATE INDEX IF NOT EXISTS idx_marks_student ON attendance_marks(student_id)`,
	}
	for _, stmt := range statements {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
