package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/student"
)

// PGLedger persists attendance marks in Postgres.
type PGLedger struct {
	db *sql.DB
}

// NewPGLedger creates a ledger over an open connection pool.
func NewPGLedger(db *sql.DB) *PGLedger {
	return &PGLedger{db: db}
}

// HasMark reports whether a mark exists for the tuple.
func (l *PGLedger) HasMark(ctx context.Context, studentID string, day student.Weekday, period Period, date time.Time) (bool, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_marks
			WHERE student_id = $1 AND day = $2 AND period = $3 AND date = $4
		)
	`, studentID, day, period, DateOf(date)).Scan(&exists)
	return exists, err
}

// RecordMark inserts a mark. ON CONFLICT DO NOTHING makes the uniqueness
// constraint the arbiter under concurrent requests: zero rows affected
// means another writer got there first.
func (l *PGLedger) RecordMark(ctx context.Context, m Mark) (Mark, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Date = DateOf(m.Date)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO attendance_marks (id, student_id, day, period, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uix_mark_once DO NOTHING
	`, m.ID, m.StudentID, m.Day, m.Period, m.Date, m.CreatedAt)
	if err != nil {
		return Mark{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Mark{}, err
	}
	if affected == 0 {
		return Mark{}, ErrAlreadyMarked
	}
	return m, nil
}

// ListByStudent returns a student account's marks, newest first.
func (l *PGLedger) ListByStudent(ctx context.Context, studentID string) ([]Mark, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, student_id, day, period, date, created_at
		FROM attendance_marks
		WHERE student_id = $1
		ORDER BY date DESC, created_at DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []Mark
	for rows.Next() {
		var m Mark
		if err := rows.Scan(&m.ID, &m.StudentID, &m.Day, &m.Period, &m.Date, &m.CreatedAt); err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}

var _ Ledger = (*PGLedger)(nil)
