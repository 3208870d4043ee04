package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"rollcall/internal/student"
)

func setup(t *testing.T) (*Service, *MemLedger, *student.MemRepository) {
	t.Helper()
	repo := student.NewMemRepository()
	ledger := NewMemLedger()
	return NewService(repo, ledger), ledger, repo
}

func enroll(t *testing.T, repo *student.MemRepository, number, name string, days ...student.Weekday) []student.Account {
	t.Helper()
	accounts := make([]student.Account, 0, len(days))
	for i, d := range days {
		accounts = append(accounts, student.Account{
			ID:           number + "-" + string(d),
			Number:       number,
			Name:         name,
			PasswordHash: "x",
			Day:          d,
			CreatedAt:    time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		})
	}
	created, err := repo.CreateBatch(context.Background(), accounts)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	return created
}

func TestMarkTwiceYieldsRecordedThenAlreadyMarked(t *testing.T) {
	svc, ledger, repo := setup(t)
	ctx := context.Background()
	enroll(t, repo, "2024001", "Kim", student.Monday)

	first, err := svc.Mark(ctx, "2024001", "mon", "1")
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if first.Outcome != OutcomeRecorded {
		t.Fatalf("first outcome = %s, want recorded", first.Outcome)
	}
	if first.Mark.ID == "" {
		t.Error("recorded mark missing id")
	}

	second, err := svc.Mark(ctx, "2024001", "mon", "1")
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if second.Outcome != OutcomeAlreadyMarked {
		t.Fatalf("second outcome = %s, want already_marked", second.Outcome)
	}

	marks, err := ledger.ListByStudent(ctx, "2024001-mon")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(marks) != 1 {
		t.Errorf("ledger has %d marks, want exactly 1", len(marks))
	}
}

func TestMarkOutcomes(t *testing.T) {
	svc, _, repo := setup(t)
	ctx := context.Background()
	enroll(t, repo, "2024001", "Kim", student.Monday, student.Wednesday)

	cases := []struct {
		name       string
		identifier string
		day        string
		period     string
		want       Outcome
	}{
		{"no session", "", "mon", "1", OutcomeUnauthenticated},
		{"bad period", "2024001", "mon", "3", OutcomeInvalidPeriod},
		{"bad period code", "2024001", "mon", "first", OutcomeInvalidPeriod},
		{"not enrolled that day", "2024001", "tue", "1", OutcomeNotEnrolled},
		{"day outside closed set", "2024001", "sun", "1", OutcomeNotEnrolled},
		{"unknown student", "9999999", "mon", "1", OutcomeNotEnrolled},
		{"enrolled", "2024001", "wed", "2", OutcomeRecorded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Mark(ctx, tc.identifier, tc.day, tc.period)
			if err != nil {
				t.Fatalf("mark: %v", err)
			}
			if res.Outcome != tc.want {
				t.Errorf("outcome = %s, want %s", res.Outcome, tc.want)
			}
		})
	}
}

func TestInvalidPeriodCheckedBeforeLedger(t *testing.T) {
	repo := student.NewMemRepository()
	svc := NewService(repo, failingLedger{})
	enroll(t, repo, "2024001", "Kim", student.Monday)

	// A failing ledger proves the workflow exits before any store access.
	res, err := svc.Mark(context.Background(), "2024001", "mon", "9")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if res.Outcome != OutcomeInvalidPeriod {
		t.Errorf("outcome = %s, want invalid_period", res.Outcome)
	}
}

func TestMarkUsesServerDate(t *testing.T) {
	svc, _, repo := setup(t)
	enroll(t, repo, "2024001", "Kim", student.Monday)

	fixed := time.Date(2026, time.March, 2, 23, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	res, err := svc.Mark(context.Background(), "2024001", "mon", "1")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	want := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !res.Mark.Date.Equal(want) {
		t.Errorf("mark date = %v, want %v", res.Mark.Date, want)
	}
}

func TestSamePeriodDifferentDateRecordsAgain(t *testing.T) {
	svc, _, repo := setup(t)
	ctx := context.Background()
	enroll(t, repo, "2024001", "Kim", student.Monday)

	day := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	if res, _ := svc.Mark(ctx, "2024001", "mon", "1"); res.Outcome != OutcomeRecorded {
		t.Fatalf("week 1 outcome = %s", res.Outcome)
	}

	svc.now = func() time.Time { return day.AddDate(0, 0, 7) }
	if res, _ := svc.Mark(ctx, "2024001", "mon", "1"); res.Outcome != OutcomeRecorded {
		t.Errorf("week 2 outcome = %s, want recorded", res.Outcome)
	}
}

func TestLedgerRejectsConcurrentDuplicate(t *testing.T) {
	ledger := NewMemLedger()
	ctx := context.Background()
	m := Mark{StudentID: "a1", Day: student.Monday, Period: PeriodFirst, Date: time.Now()}

	if _, err := ledger.RecordMark(ctx, m); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := ledger.RecordMark(ctx, m); !errors.Is(err, ErrAlreadyMarked) {
		t.Errorf("second record: got %v, want ErrAlreadyMarked", err)
	}
}

func TestHistoryCoversAllEnrolledDays(t *testing.T) {
	svc, _, repo := setup(t)
	ctx := context.Background()
	enroll(t, repo, "2024001", "Kim", student.Monday, student.Wednesday)

	if res, _ := svc.Mark(ctx, "2024001", "mon", "1"); res.Outcome != OutcomeRecorded {
		t.Fatal("mon mark not recorded")
	}
	if res, _ := svc.Mark(ctx, "2024001", "wed", "2"); res.Outcome != OutcomeRecorded {
		t.Fatal("wed mark not recorded")
	}

	marks, err := svc.History(ctx, "2024001")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(marks) != 2 {
		t.Errorf("history has %d marks, want 2", len(marks))
	}
}

func TestParsePeriodCode(t *testing.T) {
	cases := []struct {
		code    string
		want    Period
		wantErr bool
	}{
		{"1", PeriodFirst, false},
		{"2", PeriodSecond, false},
		{"0", "", true},
		{"3", "", true},
		{"", "", true},
		{"first", "", true},
	}
	for _, tc := range cases {
		got, err := ParsePeriodCode(tc.code)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePeriodCode(%q): expected error", tc.code)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePeriodCode(%q): %v", tc.code, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePeriodCode(%q) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

// failingLedger errors on any access; used to prove early exits.
type failingLedger struct{}

func (failingLedger) HasMark(context.Context, string, student.Weekday, Period, time.Time) (bool, error) {
	return false, errors.New("ledger touched")
}

func (failingLedger) RecordMark(context.Context, Mark) (Mark, error) {
	return Mark{}, errors.New("ledger touched")
}

func (failingLedger) ListByStudent(context.Context, string) ([]Mark, error) {
	return nil, errors.New("ledger touched")
}
