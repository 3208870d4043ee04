package attendance

import (
	"context"
	"testing"

	"rollcall/internal/student"
)

// End-to-end pass over the whole flow: register, log in, mark, re-mark,
// then try a day without an enrollment.
func TestRegisterLoginMarkScenario(t *testing.T) {
	ctx := context.Background()
	repo := student.NewMemRepository()
	ledger := NewMemLedger()
	students := student.NewService(repo, 4)
	workflow := NewService(repo, ledger)

	accounts, err := students.Register(ctx, "2024001", "Kim", "Secret123!", []student.Weekday{student.Monday, student.Wednesday})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 account rows, got %d", len(accounts))
	}

	account, err := students.Authenticate(ctx, "2024001", "Secret123!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	res, err := workflow.Mark(ctx, account.Number, "mon", "1")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if res.Outcome != OutcomeRecorded {
		t.Fatalf("first mark outcome = %s, want recorded", res.Outcome)
	}

	res, err = workflow.Mark(ctx, account.Number, "mon", "1")
	if err != nil {
		t.Fatalf("repeat mark: %v", err)
	}
	if res.Outcome != OutcomeAlreadyMarked {
		t.Fatalf("repeat mark outcome = %s, want already_marked", res.Outcome)
	}

	res, err = workflow.Mark(ctx, account.Number, "tue", "1")
	if err != nil {
		t.Fatalf("tuesday mark: %v", err)
	}
	if res.Outcome != OutcomeNotEnrolled {
		t.Fatalf("tuesday mark outcome = %s, want not_enrolled", res.Outcome)
	}
}
