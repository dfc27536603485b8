package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/cyclesense/internal/models"
)

func stringPtr(value string) *string {
	return &value
}

func validProfileUpdate() ProfileUpdate {
	return ProfileUpdate{
		DisplayName:         "Ada",
		LastPeriodDate:      stringPtr("2024-03-01"),
		AverageCycleLength:  30,
		AveragePeriodLength: 4,
		RemindersEnabled:    true,
		ReminderDaysBefore:  2,
		TelegramChatID:      "-100123",
	}
}

func TestProfileUpdatePersistsBaseline(t *testing.T) {
	t.Parallel()

	users := newUserStoreStub(models.User{ID: 1, Email: "owner@cyclesense.local", AverageCycleLength: 28})
	service := NewProfileService(users, DefaultCycleBounds(), time.UTC)

	updated, err := service.Update(context.Background(), 1, validProfileUpdate(), day(2024, time.March, 10))
	if err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}
	if updated.LastPeriodDate == nil || !updated.LastPeriodDate.Equal(day(2024, time.March, 1)) {
		t.Fatalf("expected last period 2024-03-01, got %v", updated.LastPeriodDate)
	}

	stored, err := service.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if stored.AverageCycleLength != 30 || stored.AveragePeriodLength != 4 || !stored.RemindersEnabled || stored.TelegramChatID != "-100123" {
		t.Fatalf("expected stored profile to match update, got %#v", stored)
	}
}

func TestProfileUpdateClearsLastPeriod(t *testing.T) {
	t.Parallel()

	lastPeriod := day(2024, time.March, 1)
	users := newUserStoreStub(models.User{ID: 1, LastPeriodDate: &lastPeriod, AverageCycleLength: 28})
	service := NewProfileService(users, DefaultCycleBounds(), time.UTC)

	update := validProfileUpdate()
	update.LastPeriodDate = nil
	updated, err := service.Update(context.Background(), 1, update, day(2024, time.March, 10))
	if err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}
	if updated.LastPeriodDate != nil {
		t.Fatalf("expected last period to be cleared, got %v", updated.LastPeriodDate)
	}
}

func TestProfileUpdateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ProfileUpdate)
		want   error
	}{
		{name: "cycle too short", mutate: func(u *ProfileUpdate) { u.AverageCycleLength = 19 }, want: ErrCycleLengthRange},
		{name: "cycle too long", mutate: func(u *ProfileUpdate) { u.AverageCycleLength = 46 }, want: ErrCycleLengthRange},
		{name: "missing cycle length", mutate: func(u *ProfileUpdate) { u.AverageCycleLength = 0 }, want: ErrInvalidInput},
		{name: "period too long", mutate: func(u *ProfileUpdate) { u.AveragePeriodLength = 11 }, want: ErrInvalidInput},
		{name: "period zero", mutate: func(u *ProfileUpdate) { u.AveragePeriodLength = 0 }, want: ErrInvalidInput},
		{name: "future last period", mutate: func(u *ProfileUpdate) { u.LastPeriodDate = stringPtr("2024-03-11") }, want: ErrDateInFuture},
		{name: "malformed last period", mutate: func(u *ProfileUpdate) { u.LastPeriodDate = stringPtr("03/01/2024") }, want: ErrInvalidInput},
		{name: "non-numeric chat id", mutate: func(u *ProfileUpdate) { u.TelegramChatID = "@someone" }, want: ErrInvalidInput},
		{name: "reminder too early", mutate: func(u *ProfileUpdate) { u.ReminderDaysBefore = 15 }, want: ErrInvalidInput},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			users := newUserStoreStub(models.User{ID: 1, AverageCycleLength: 28})
			service := NewProfileService(users, DefaultCycleBounds(), time.UTC)

			update := validProfileUpdate()
			tt.mutate(&update)
			_, err := service.Update(context.Background(), 1, update, day(2024, time.March, 10))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProfileGetUnknownUser(t *testing.T) {
	t.Parallel()

	service := NewProfileService(newUserStoreStub(), CycleBounds{}, nil)
	if _, err := service.Get(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
