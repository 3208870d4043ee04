package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rollcall/internal/metrics"
	"rollcall/internal/student"
)

// Outcome is the terminal state of one attendance workflow run.
type Outcome int

const (
	OutcomeRecorded Outcome = iota
	OutcomeAlreadyMarked
	OutcomeUnauthenticated
	OutcomeInvalidPeriod
	OutcomeNotEnrolled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRecorded:
		return "recorded"
	case OutcomeAlreadyMarked:
		return "already_marked"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeInvalidPeriod:
		return "invalid_period"
	case OutcomeNotEnrolled:
		return "not_enrolled"
	}
	return "unknown"
}

// Result is what a workflow run hands back to the HTTP layer. Mark is set
// only when Outcome is OutcomeRecorded.
type Result struct {
	Outcome Outcome
	Mark    Mark
}

// Service runs the mark-attendance workflow: identify, validate the period,
// confirm enrollment, then append to the ledger unless a mark already
// exists. Only storage failures come back as errors; every user-facing
// outcome is a Result.
type Service struct {
	students student.Repository
	ledger   Ledger
	now      func() time.Time
}

// NewService creates a workflow service.
func NewService(students student.Repository, ledger Ledger) *Service {
	return &Service{students: students, ledger: ledger, now: time.Now}
}

// Mark runs the workflow for one request. identifier is empty when the
// session proof was missing or invalid; the date is always the server's
// current date, never client-supplied.
func (s *Service) Mark(ctx context.Context, identifier, dayRaw, periodCode string) (Result, error) {
	res, err := s.mark(ctx, identifier, dayRaw, periodCode)
	if err == nil {
		metrics.AttendanceOutcomes.WithLabelValues(res.Outcome.String()).Inc()
	}
	return res, err
}

func (s *Service) mark(ctx context.Context, identifier, dayRaw, periodCode string) (Result, error) {
	if identifier == "" {
		return Result{Outcome: OutcomeUnauthenticated}, nil
	}

	period, err := ParsePeriodCode(periodCode)
	if err != nil {
		return Result{Outcome: OutcomeInvalidPeriod}, nil
	}

	day, err := student.ParseWeekday(dayRaw)
	if err != nil {
		// A day outside the closed set can never match an enrollment.
		return Result{Outcome: OutcomeNotEnrolled}, nil
	}

	account, err := s.students.FindByNumberAndDay(ctx, identifier, day)
	if err != nil {
		return Result{}, fmt.Errorf("enrollment lookup: %w", err)
	}
	if account == nil {
		return Result{Outcome: OutcomeNotEnrolled}, nil
	}

	today := DateOf(s.now())

	marked, err := s.ledger.HasMark(ctx, account.ID, day, period, today)
	if err != nil {
		return Result{}, fmt.Errorf("mark lookup: %w", err)
	}
	if marked {
		return Result{Outcome: OutcomeAlreadyMarked}, nil
	}

	mark, err := s.ledger.RecordMark(ctx, Mark{
		StudentID: account.ID,
		Day:       day,
		Period:    period,
		Date:      today,
	})
	if err != nil {
		// The ledger's constraint decides races the HasMark check missed.
		if errors.Is(err, ErrAlreadyMarked) {
			return Result{Outcome: OutcomeAlreadyMarked}, nil
		}
		return Result{}, fmt.Errorf("record mark: %w", err)
	}
	return Result{Outcome: OutcomeRecorded, Mark: mark}, nil
}

// History returns every mark across a student's enrolled-day accounts,
// newest first per account.
func (s *Service) History(ctx context.Context, identifier string) ([]Mark, error) {
	accounts, err := s.students.FindByNumber(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	var marks []Mark
	for _, a := range accounts {
		ms, err := s.ledger.ListByStudent(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("mark lookup: %w", err)
		}
		marks = append(marks, ms...)
	}
	return marks, nil
}
