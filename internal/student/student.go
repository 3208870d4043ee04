package student

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownIdentifier means no account exists for the student number.
	ErrUnknownIdentifier = errors.New("unknown student number")
	// ErrInvalidCredentials means the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Weekday is one of the five class days. Weekend days are not valid
// enrollment values.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
)

// Weekdays lists every valid enrollment day in class order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// ParseWeekday validates a raw day value against the closed set.
func ParseWeekday(raw string) (Weekday, error) {
	switch Weekday(raw) {
	case Monday, Tuesday, Wednesday, Thursday, Friday:
		return Weekday(raw), nil
	}
	return "", fmt.Errorf("invalid weekday %q", raw)
}

// ParseWeekdays validates a batch of raw day values, rejecting duplicates
// within the batch itself.
func ParseWeekdays(raw []string) ([]Weekday, error) {
	if len(raw) == 0 {
		return nil, errors.New("at least one day required")
	}
	seen := make(map[Weekday]bool, len(raw))
	days := make([]Weekday, 0, len(raw))
	for _, r := range raw {
		d, err := ParseWeekday(r)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			return nil, fmt.Errorf("duplicate day %q in request", r)
		}
		seen[d] = true
		days = append(days, d)
	}
	return days, nil
}

// Account is one (student number, enrolled day) credential record. A student
// enrolled on several days owns several accounts sharing one password hash.
type Account struct {
	ID           string    `json:"id"`
	Number       string    `json:"student_number"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Day          Weekday   `json:"day"`
	CreatedAt    time.Time `json:"created_at"`
}

// DuplicateEnrollmentError reports the (number, day) pair that blocked a
// registration batch.
type DuplicateEnrollmentError struct {
	Number string
	Day    Weekday
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("student %s is already enrolled on %s", e.Number, e.Day)
}

// Repository persists accounts. Implementations must enforce the
// (student number, day) uniqueness constraint themselves; callers treat any
// pre-check as an early exit only.
type Repository interface {
	// CreateBatch inserts every account or none of them. A conflicting
	// (number, day) pair fails the whole batch with DuplicateEnrollmentError.
	CreateBatch(ctx context.Context, accounts []Account) ([]Account, error)
	// FindByNumber returns every account for a student number, enrollment
	// order first. Empty result is not an error.
	FindByNumber(ctx context.Context, number string) ([]Account, error)
	// FindByNumberAndDay returns the account for the pair, or nil.
	FindByNumberAndDay(ctx context.Context, number string, day Weekday) (*Account, error)
}
