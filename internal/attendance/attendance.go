package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rollcall/internal/student"
)

// ErrAlreadyMarked means a mark for the same (account, day, period, date)
// tuple already exists. The caller's goal is already satisfied, so handlers
// report it as informational rather than a failure.
var ErrAlreadyMarked = errors.New("attendance already marked")

// Period is a fixed class session slot within a day.
type Period string

const (
	PeriodFirst  Period = "first"
	PeriodSecond Period = "second"
)

// ParsePeriodCode maps the numeric period code used on the wire ("1", "2")
// to the closed period set.
func ParsePeriodCode(code string) (Period, error) {
	switch code {
	case "1":
		return PeriodFirst, nil
	case "2":
		return PeriodSecond, nil
	}
	return "", fmt.Errorf("invalid period code %q", code)
}

// Mark is one completed-attendance record. At most one exists per
// (student account, day, period, date).
type Mark struct {
	ID        string          `json:"id"`
	StudentID string          `json:"student_id"`
	Day       student.Weekday `json:"day"`
	Period    Period          `json:"period"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ledger is the append-only attendance store. Implementations must enforce
// the tuple uniqueness constraint themselves so that the losing writer of a
// concurrent duplicate surfaces ErrAlreadyMarked instead of a second row.
type Ledger interface {
	// HasMark reports whether a mark exists for the tuple. Used as an early
	// exit only; RecordMark is the source of correctness.
	HasMark(ctx context.Context, studentID string, day student.Weekday, period Period, date time.Time) (bool, error)
	// RecordMark inserts a mark, failing with ErrAlreadyMarked on conflict.
	RecordMark(ctx context.Context, m Mark) (Mark, error)
	// ListByStudent returns a student account's marks, newest first.
	ListByStudent(ctx context.Context, studentID string) ([]Mark, error)
}
