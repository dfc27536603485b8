package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/cyclesense/internal/models"
	"go.uber.org/goleak"
)

func reminderUser(id uint, lastPeriod time.Time, chatID string) models.User {
	return models.User{
		ID:                 id,
		LastPeriodDate:     &lastPeriod,
		AverageCycleLength: 28,
		RemindersEnabled:   true,
		ReminderDaysBefore: 3,
		TelegramChatID:     chatID,
	}
}

func fixedClock(value time.Time) func() time.Time {
	return func() time.Time { return value }
}

func TestReminderRunOnceSendsPeriodReminder(t *testing.T) {
	t.Parallel()

	// Next period 2024-01-29, three days after 2024-01-26.
	users := newUserStoreStub(reminderUser(1, day(2024, time.January, 1), "42"))
	notifier := &notifierStub{}
	service := NewReminderService(users, notifier, ReminderOptions{Clock: fixedClock(time.Date(2024, time.January, 26, 9, 0, 0, 0, time.UTC))})

	if sent := service.RunOnce(context.Background()); sent != 1 {
		t.Fatalf("expected 1 reminder, got %d", sent)
	}
	messages := notifier.messages()
	if messages[0].chatID != "42" || !strings.Contains(messages[0].message, "in 3 days on Jan 29") {
		t.Fatalf("expected period reminder to chat 42, got %#v", messages[0])
	}
}

func TestReminderRunOnceSendsFertileWindowReminder(t *testing.T) {
	t.Parallel()

	// Ovulation 2024-01-15, fertile window 2024-01-10 through 2024-01-16.
	users := newUserStoreStub(reminderUser(1, day(2024, time.January, 1), "42"))
	notifier := &notifierStub{}
	service := NewReminderService(users, notifier, ReminderOptions{Clock: fixedClock(day(2024, time.January, 10))})

	if sent := service.RunOnce(context.Background()); sent != 1 {
		t.Fatalf("expected 1 reminder, got %d", sent)
	}
	if message := notifier.messages()[0].message; !strings.Contains(message, "fertile window starts today (Jan 10)") {
		t.Fatalf("expected fertile window reminder, got %q", message)
	}
}

func TestReminderRunOnceDeduplicatesWithinADay(t *testing.T) {
	t.Parallel()

	users := newUserStoreStub(reminderUser(1, day(2024, time.January, 1), "42"))
	notifier := &notifierStub{}
	service := NewReminderService(users, notifier, ReminderOptions{Clock: fixedClock(day(2024, time.January, 26))})

	service.RunOnce(context.Background())
	if sent := service.RunOnce(context.Background()); sent != 0 {
		t.Fatalf("expected duplicate run to send nothing, got %d", sent)
	}
	if len(notifier.messages()) != 1 {
		t.Fatalf("expected exactly one delivered message, got %d", len(notifier.messages()))
	}
}

func TestReminderRunOnceRetriesAfterDeliveryFailure(t *testing.T) {
	t.Parallel()

	users := newUserStoreStub(reminderUser(1, day(2024, time.January, 1), "42"))
	notifier := &notifierStub{err: errors.New("telegram down")}
	service := NewReminderService(users, notifier, ReminderOptions{Clock: fixedClock(day(2024, time.January, 26))})

	if sent := service.RunOnce(context.Background()); sent != 0 {
		t.Fatalf("expected failed delivery to count zero, got %d", sent)
	}

	notifier.mu.Lock()
	notifier.err = nil
	notifier.mu.Unlock()
	if sent := service.RunOnce(context.Background()); sent != 1 {
		t.Fatalf("expected retry on next pass, got %d", sent)
	}
}

func TestReminderRunOnceChatFallback(t *testing.T) {
	t.Parallel()

	users := newUserStoreStub(
		reminderUser(1, day(2024, time.January, 1), ""),
		reminderUser(2, day(2024, time.January, 1), ""),
	)
	notifier := &notifierStub{}

	withoutDefault := NewReminderService(users, notifier, ReminderOptions{Clock: fixedClock(day(2024, time.January, 26))})
	if sent := withoutDefault.RunOnce(context.Background()); sent != 0 {
		t.Fatalf("expected no reminders without any chat id, got %d", sent)
	}

	withDefault := NewReminderService(users, notifier, ReminderOptions{
		DefaultChatID: "7",
		Clock:         fixedClock(day(2024, time.January, 26)),
	})
	if sent := withDefault.RunOnce(context.Background()); sent != 2 {
		t.Fatalf("expected 2 reminders through default chat, got %d", sent)
	}
	for _, message := range notifier.messages() {
		if message.chatID != "7" {
			t.Fatalf("expected default chat 7, got %q", message.chatID)
		}
	}
}

func TestReminderRunOnceSkipsOtherDays(t *testing.T) {
	t.Parallel()

	users := newUserStoreStub(reminderUser(1, day(2024, time.January, 1), "42"))
	notifier := &notifierStub{}
	service := NewReminderService(users, notifier, ReminderOptions{Clock: fixedClock(day(2024, time.January, 20))})

	if sent := service.RunOnce(context.Background()); sent != 0 {
		t.Fatalf("expected no reminders, got %d", sent)
	}
}

func TestReminderRunOnceSurvivesStoreError(t *testing.T) {
	t.Parallel()

	users := newUserStoreStub()
	users.listErr = errors.New("database locked")
	service := NewReminderService(users, &notifierStub{}, ReminderOptions{})

	if sent := service.RunOnce(context.Background()); sent != 0 {
		t.Fatalf("expected 0 reminders on store error, got %d", sent)
	}
}

func TestReminderStartStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	users := newUserStoreStub(reminderUser(1, day(2024, time.January, 1), "42"))
	notifier := &notifierStub{}
	service := NewReminderService(users, notifier, ReminderOptions{
		Interval: time.Hour,
		Clock:    fixedClock(day(2024, time.January, 26)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := service.Start(ctx)

	deadline := time.After(2 * time.Second)
	for len(notifier.messages()) == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("expected the first pass to run immediately")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected reminder loop to exit after cancel")
	}
}
