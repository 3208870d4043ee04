package student

import (
	"context"
	"sync"
)

// MemRepository is a mutex-guarded in-memory account store. It enforces the
// same (number, day) uniqueness as the Postgres schema, which makes it both
// the dev backend and the test substrate.
type MemRepository struct {
	mu       sync.RWMutex
	byPair   map[string]*Account // key: number + "|" + day
	byNumber map[string][]string // number -> pair keys in insert order
}

// NewMemRepository creates an empty in-memory store.
func NewMemRepository() *MemRepository {
	return &MemRepository{
		byPair:   make(map[string]*Account),
		byNumber: make(map[string][]string),
	}
}

func pairKey(number string, day Weekday) string {
	return number + "|" + string(day)
}

// CreateBatch inserts all accounts or none of them.
func (r *MemRepository) CreateBatch(_ context.Context, accounts []Account) ([]Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range accounts {
		if _, exists := r.byPair[pairKey(a.Number, a.Day)]; exists {
			return nil, &DuplicateEnrollmentError{Number: a.Number, Day: a.Day}
		}
	}
	for i := range accounts {
		a := accounts[i]
		key := pairKey(a.Number, a.Day)
		r.byPair[key] = &a
		r.byNumber[a.Number] = append(r.byNumber[a.Number], key)
	}
	return accounts, nil
}

// FindByNumber returns every account for a student number.
func (r *MemRepository) FindByNumber(_ context.Context, number string) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.byNumber[number]
	accounts := make([]Account, 0, len(keys))
	for _, key := range keys {
		accounts = append(accounts, *r.byPair[key])
	}
	return accounts, nil
}

// FindByNumberAndDay returns the account for the pair, or nil.
func (r *MemRepository) FindByNumberAndDay(_ context.Context, number string, day Weekday) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byPair[pairKey(number, day)]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}
