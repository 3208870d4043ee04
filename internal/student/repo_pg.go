package student

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepository persists accounts in Postgres.
type PGRepository struct {
	db *sql.DB
}

// NewPGRepository creates a repo over an open connection pool.
func NewPGRepository(db *sql.DB) *PGRepository {
	return &PGRepository{db: db}
}

// CreateBatch inserts all accounts in one transaction. The uix_student_day
// constraint rejects the losing writer of a concurrent duplicate
// registration; the whole batch rolls back.
func (r *PGRepository) CreateBatch(ctx context.Context, accounts []Account) ([]Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range accounts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO students (id, student_number, name, password_hash, day, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID, a.Number, a.Name, a.PasswordHash, a.Day, a.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, &DuplicateEnrollmentError{Number: a.Number, Day: a.Day}
			}
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindByNumber returns every account for a student number.
func (r *PGRepository) FindByNumber(ctx context.Context, number string) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_number, name, password_hash, day, created_at
		FROM students
		WHERE student_number = $1
		ORDER BY created_at, day
	`, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Number, &a.Name, &a.PasswordHash, &a.Day, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// FindByNumberAndDay returns the account for the pair, or nil when absent.
func (r *PGRepository) FindByNumberAndDay(ctx context.Context, number string, day Weekday) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, student_number, name, password_hash, day, created_at
		FROM students
		WHERE student_number = $1 AND day = $2
	`, number, day)
	var a Account
	if err := row.Scan(&a.ID, &a.Number, &a.Name, &a.PasswordHash, &a.Day, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
