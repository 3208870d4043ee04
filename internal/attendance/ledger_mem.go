package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/student"
)

// MemLedger is a mutex-guarded in-memory ledger enforcing the same tuple
// uniqueness as the Postgres schema.
type MemLedger struct {
	mu        sync.RWMutex
	byTuple   map[string]Mark
	byStudent map[string][]string // studentID -> tuple keys
}

// NewMemLedger creates an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{
		byTuple:   make(map[string]Mark),
		byStudent: make(map[string][]string),
	}
}

func tupleKey(studentID string, day student.Weekday, period Period, date time.Time) string {
	return studentID + "|" + string(day) + "|" + string(period) + "|" + DateOf(date).Format(time.DateOnly)
}

// HasMark reports whether a mark exists for the tuple.
func (l *MemLedger) HasMark(_ context.Context, studentID string, day student.Weekday, period Period, date time.Time) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byTuple[tupleKey(studentID, day, period, date)]
	return ok, nil
}

// RecordMark inserts a mark, failing with ErrAlreadyMarked on conflict.
func (l *MemLedger) RecordMark(_ context.Context, m Mark) (Mark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := tupleKey(m.StudentID, m.Day, m.Period, m.Date)
	if _, exists := l.byTuple[key]; exists {
		return Mark{}, ErrAlreadyMarked
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Date = DateOf(m.Date)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	l.byTuple[key] = m
	l.byStudent[m.StudentID] = append(l.byStudent[m.StudentID], key)
	return m, nil
}

// ListByStudent returns a student account's marks, newest first.
func (l *MemLedger) ListByStudent(_ context.Context, studentID string) ([]Mark, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := l.byStudent[studentID]
	marks := make([]Mark, 0, len(keys))
	for _, key := range keys {
		marks = append(marks, l.byTuple[key])
	}
	sort.Slice(marks, func(i, j int) bool {
		if !marks[i].Date.Equal(marks[j].Date) {
			return marks[i].Date.After(marks[j].Date)
		}
		return marks[i].CreatedAt.After(marks[j].CreatedAt)
	})
	return marks, nil
}

var _ Ledger = (*MemLedger)(nil)
