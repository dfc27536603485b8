package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/cyclesense/internal/cycle"
	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/models"
)

type ProfileUserStore interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// CycleBounds limits the average cycle length a profile may store.
type CycleBounds struct {
	Min int
	Max int
}

func DefaultCycleBounds() CycleBounds {
	return CycleBounds{Min: 20, Max: 45}
}

type ProfileUpdate struct {
	DisplayName         string  `json:"display_name" validate:"max=64"`
	LastPeriodDate      *string `json:"last_period_date"`
	AverageCycleLength  int     `json:"average_cycle_length" validate:"required"`
	AveragePeriodLength int     `json:"average_period_length" validate:"min=1,max=10"`
	RemindersEnabled    bool    `json:"reminders_enabled"`
	ReminderDaysBefore  int     `json:"reminder_days_before" validate:"min=0,max=14"`
	TelegramChatID      string  `json:"telegram_chat_id" validate:"omitempty,numeric,max=32"`
}

type ProfileService struct {
	users    ProfileUserStore
	bounds   CycleBounds
	location *time.Location
}

func NewProfileService(users ProfileUserStore, bounds CycleBounds, location *time.Location) *ProfileService {
	if bounds.Min <= 0 || bounds.Max < bounds.Min {
		bounds = DefaultCycleBounds()
	}
	if location == nil {
		location = time.UTC
	}
	return &ProfileService{users: users, bounds: bounds, location: location}
}

func (service *ProfileService) Get(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

func (service *ProfileService) Update(ctx context.Context, userID uint, update ProfileUpdate, now time.Time) (models.User, error) {
	update.DisplayName = strings.TrimSpace(update.DisplayName)
	update.TelegramChatID = strings.TrimSpace(update.TelegramChatID)
	if err := validateInput(update); err != nil {
		return models.User{}, err
	}
	if update.AverageCycleLength < service.bounds.Min || update.AverageCycleLength > service.bounds.Max {
		return models.User{}, fmt.Errorf("%w: must be within [%d, %d]", ErrCycleLengthRange, service.bounds.Min, service.bounds.Max)
	}

	var lastPeriod *time.Time
	if update.LastPeriodDate != nil {
		parsed, err := cycle.ParseOptionalDay(*update.LastPeriodDate)
		if err != nil {
			return models.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if parsed != nil && parsed.After(cycle.DayIn(now, service.location)) {
			return models.User{}, ErrDateInFuture
		}
		lastPeriod = parsed
	}

	user, err := service.Get(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	user.DisplayName = update.DisplayName
	user.LastPeriodDate = lastPeriod
	user.AverageCycleLength = update.AverageCycleLength
	user.AveragePeriodLength = update.AveragePeriodLength
	user.RemindersEnabled = update.RemindersEnabled
	user.ReminderDaysBefore = update.ReminderDaysBefore
	user.TelegramChatID = update.TelegramChatID
	if err := service.users.Save(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("save profile: %w", err)
	}
	return user, nil
}
