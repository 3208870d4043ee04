package student

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service implements registration and login on top of a Repository.
type Service struct {
	repo       Repository
	bcryptCost int
}

// NewService creates a service. cost is the bcrypt cost factor; values
// outside bcrypt's range fall back to the library default.
func NewService(repo Repository, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, bcryptCost: cost}
}

// Register creates one account per requested day, all sharing a single
// password hash. The batch is all-or-nothing: if any (number, day) pair is
// already enrolled the call fails with DuplicateEnrollmentError and writes
// nothing.
func (s *Service) Register(ctx context.Context, number, name, password string, days []Weekday) ([]Account, error) {
	if number == "" || name == "" {
		return nil, errors.New("student number and name required")
	}
	if password == "" {
		return nil, errors.New("password required")
	}
	if len(days) == 0 {
		return nil, errors.New("at least one day required")
	}

	// Early exit on known conflicts. The repository's uniqueness constraint
	// still backs this up under concurrent registration.
	for _, day := range days {
		existing, err := s.repo.FindByNumberAndDay(ctx, number, day)
		if err != nil {
			return nil, fmt.Errorf("enrollment lookup: %w", err)
		}
		if existing != nil {
			return nil, &DuplicateEnrollmentError{Number: number, Day: day}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	accounts := make([]Account, 0, len(days))
	for _, day := range days {
		accounts = append(accounts, Account{
			ID:           uuid.NewString(),
			Number:       number,
			Name:         name,
			PasswordHash: string(hash),
			Day:          day,
			CreatedAt:    now,
		})
	}
	return s.repo.CreateBatch(ctx, accounts)
}

// Authenticate verifies a password against the accounts for a student
// number. All accounts from one registration share a hash, so the first row
// is enough.
func (s *Service) Authenticate(ctx context.Context, number, password string) (Account, error) {
	accounts, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return Account{}, fmt.Errorf("account lookup: %w", err)
	}
	if len(accounts) == 0 {
		return Account{}, ErrUnknownIdentifier
	}
	if err := bcrypt.CompareHashAndPassword([]byte(accounts[0].PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return accounts[0], nil
}
