package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/cyclesense/internal/models"
)

func cycleFixture(lastPeriod *time.Time) (*CycleService, *userStoreStub, *cycleStoreStub) {
	users := newUserStoreStub(models.User{ID: 1, LastPeriodDate: lastPeriod, AverageCycleLength: 28})
	cycles := newCycleStoreStub()
	return NewCycleService(cycles, users, 12, time.UTC), users, cycles
}

func TestCycleCreateMovesLastPeriodForward(t *testing.T) {
	t.Parallel()

	lastPeriod := day(2024, time.February, 1)
	service, users, _ := cycleFixture(&lastPeriod)

	entry, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-03-01"}, day(2024, time.March, 5))
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if !entry.Ongoing() {
		t.Fatalf("expected cycle without end date to be ongoing")
	}

	user, _ := users.FindByID(context.Background(), 1)
	if user.LastPeriodDate == nil || !user.LastPeriodDate.Equal(day(2024, time.March, 1)) {
		t.Fatalf("expected last period to move to 2024-03-01, got %v", user.LastPeriodDate)
	}
}

func TestCycleCreateKeepsNewerLastPeriod(t *testing.T) {
	t.Parallel()

	lastPeriod := day(2024, time.March, 1)
	service, users, _ := cycleFixture(&lastPeriod)

	if _, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-01-15", EndDate: "2024-01-19"}, day(2024, time.March, 5)); err != nil {
		t.Fatalf("expected backfilled cycle to be accepted, got %v", err)
	}

	user, _ := users.FindByID(context.Background(), 1)
	if !user.LastPeriodDate.Equal(day(2024, time.March, 1)) {
		t.Fatalf("expected last period to stay 2024-03-01, got %v", user.LastPeriodDate)
	}
}

func TestCycleCreateSetsMissingLastPeriod(t *testing.T) {
	t.Parallel()

	service, users, _ := cycleFixture(nil)

	if _, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-03-01"}, day(2024, time.March, 5)); err != nil {
		t.Fatalf("create: %v", err)
	}
	user, _ := users.FindByID(context.Background(), 1)
	if user.LastPeriodDate == nil {
		t.Fatalf("expected last period to be set")
	}
}

func TestCycleCreateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input CycleInput
		want  error
	}{
		{name: "missing start", input: CycleInput{}, want: ErrInvalidInput},
		{name: "malformed start", input: CycleInput{StartDate: "2024-13-01"}, want: ErrInvalidInput},
		{name: "malformed end", input: CycleInput{StartDate: "2024-03-01", EndDate: "soon"}, want: ErrInvalidInput},
		{name: "future start", input: CycleInput{StartDate: "2024-03-06"}, want: ErrDateInFuture},
		{name: "end before start", input: CycleInput{StartDate: "2024-03-01", EndDate: "2024-02-28"}, want: ErrCycleEndBeforeStart},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service, _, _ := cycleFixture(nil)
			_, err := service.Create(context.Background(), 1, tt.input, day(2024, time.March, 5))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCycleCreateRejectsDuplicateStart(t *testing.T) {
	t.Parallel()

	service, _, _ := cycleFixture(nil)
	now := day(2024, time.March, 5)
	if _, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-03-01"}, now); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-03-01"}, now); !errors.Is(err, ErrCycleExists) {
		t.Fatalf("expected ErrCycleExists, got %v", err)
	}
}

func TestCycleEndAndDelete(t *testing.T) {
	t.Parallel()

	service, _, _ := cycleFixture(nil)
	entry, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-03-01"}, day(2024, time.March, 5))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.End(context.Background(), 1, entry.ID, "2024-02-27"); !errors.Is(err, ErrCycleEndBeforeStart) {
		t.Fatalf("expected ErrCycleEndBeforeStart, got %v", err)
	}
	ended, err := service.End(context.Background(), 1, entry.ID, "2024-03-05")
	if err != nil {
		t.Fatalf("expected end to succeed, got %v", err)
	}
	if ended.Ongoing() || !ended.EndDate.Equal(day(2024, time.March, 5)) {
		t.Fatalf("expected end date 2024-03-05, got %v", ended.EndDate)
	}

	if _, err := service.End(context.Background(), 2, entry.ID, "2024-03-05"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's cycle, got %v", err)
	}
	if err := service.Delete(context.Background(), 1, entry.ID); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if err := service.Delete(context.Background(), 1, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCycleListClampsLimit(t *testing.T) {
	t.Parallel()

	service, _, _ := cycleFixture(nil)
	start := day(2023, time.January, 1)
	for index := 0; index < 15; index++ {
		input := CycleInput{StartDate: start.AddDate(0, 0, 28*index).Format("2006-01-02")}
		if _, err := service.Create(context.Background(), 1, input, day(2024, time.March, 5)); err != nil {
			t.Fatalf("create cycle %d: %v", index, err)
		}
	}

	listed, err := service.List(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 12 {
		t.Fatalf("expected 12 cycles, got %d", len(listed))
	}
	if !listed[0].StartDate.After(listed[1].StartDate) {
		t.Fatalf("expected most recent first")
	}
}

func TestCycleEndRejectsAlreadyEndedCycle(t *testing.T) {
	t.Parallel()

	service, _, _ := cycleFixture(nil)
	entry, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-03-01", EndDate: "2024-03-05"}, day(2024, time.March, 10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.End(context.Background(), 1, entry.ID, "2024-03-06"); !errors.Is(err, ErrCycleAlreadyEnded) {
		t.Fatalf("expected ErrCycleAlreadyEnded, got %v", err)
	}
}

func TestCycleDeleteNewestResyncsLastPeriod(t *testing.T) {
	t.Parallel()

	service, users, _ := cycleFixture(nil)
	now := day(2024, time.March, 10)
	if _, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-02-01"}, now); err != nil {
		t.Fatalf("create older cycle: %v", err)
	}
	newest, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-03-01"}, now)
	if err != nil {
		t.Fatalf("create newest cycle: %v", err)
	}

	if err := service.Delete(context.Background(), 1, newest.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	user, _ := users.FindByID(context.Background(), 1)
	if user.LastPeriodDate == nil || !user.LastPeriodDate.Equal(day(2024, time.February, 1)) {
		t.Fatalf("expected last period to fall back to 2024-02-01, got %v", user.LastPeriodDate)
	}
}

func TestCycleDeleteKeepsUnrelatedLastPeriod(t *testing.T) {
	t.Parallel()

	manual := day(2024, time.March, 8)
	service, users, _ := cycleFixture(&manual)
	now := day(2024, time.March, 10)
	older, err := service.Create(context.Background(), 1, CycleInput{StartDate: "2024-02-01"}, now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.Delete(context.Background(), 1, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	user, _ := users.FindByID(context.Background(), 1)
	if !user.LastPeriodDate.Equal(manual) {
		t.Fatalf("expected last period to stay 2024-03-08, got %v", user.LastPeriodDate)
	}
}
