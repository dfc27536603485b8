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

type CycleStore interface {
	ListRecent(ctx context.Context, userID uint, limit int) ([]models.Cycle, error)
	FindByID(ctx context.Context, userID uint, cycleID uint) (models.Cycle, error)
	ExistsWithStart(ctx context.Context, userID uint, start time.Time) (bool, error)
	Create(ctx context.Context, entry *models.Cycle) error
	UpdateEndDate(ctx context.Context, userID uint, cycleID uint, end *time.Time) error
	Delete(ctx context.Context, userID uint, cycleID uint) error
}

type CycleUserStore interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
	UpdateLastPeriodDate(ctx context.Context, userID uint, day time.Time) error
}

type CycleInput struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes" validate:"max=500"`
}

type CycleService struct {
	cycles       CycleStore
	users        CycleUserStore
	historyLimit int
	location     *time.Location
}

func NewCycleService(cycles CycleStore, users CycleUserStore, historyLimit int, location *time.Location) *CycleService {
	if historyLimit <= 0 {
		historyLimit = cycle.MaxHistoryCycles
	}
	if location == nil {
		location = time.UTC
	}
	return &CycleService{cycles: cycles, users: users, historyLimit: historyLimit, location: location}
}

// List returns logged cycles, most recent first. limit is clamped to the
// configured history size.
func (service *CycleService) List(ctx context.Context, userID uint, limit int) ([]models.Cycle, error) {
	if limit <= 0 || limit > service.historyLimit {
		limit = service.historyLimit
	}
	return service.cycles.ListRecent(ctx, userID, limit)
}

// Create logs a cycle. A start newer than the profile's last period date
// moves that date forward.
func (service *CycleService) Create(ctx context.Context, userID uint, input CycleInput, now time.Time) (models.Cycle, error) {
	if err := validateInput(input); err != nil {
		return models.Cycle{}, err
	}

	start, err := cycle.ParseDay(input.StartDate)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end, err := cycle.ParseOptionalDay(input.EndDate)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if start.After(cycle.DayIn(now, service.location)) {
		return models.Cycle{}, ErrDateInFuture
	}
	if end != nil && end.Before(start) {
		return models.Cycle{}, ErrCycleEndBeforeStart
	}

	exists, err := service.cycles.ExistsWithStart(ctx, userID, start)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("check cycle start: %w", err)
	}
	if exists {
		return models.Cycle{}, ErrCycleExists
	}

	entry := models.Cycle{
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := service.cycles.Create(ctx, &entry); err != nil {
		return models.Cycle{}, fmt.Errorf("create cycle: %w", err)
	}

	if err := service.syncLastPeriod(ctx, userID, start); err != nil {
		return models.Cycle{}, err
	}
	return entry, nil
}

// End closes an ongoing cycle.
func (service *CycleService) End(ctx context.Context, userID uint, cycleID uint, rawEnd string) (models.Cycle, error) {
	end, err := cycle.ParseDay(rawEnd)
	if err != nil {
		return models.Cycle{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	entry, err := service.cycles.FindByID(ctx, userID, cycleID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Cycle{}, ErrNotFound
	}
	if err != nil {
		return models.Cycle{}, fmt.Errorf("load cycle: %w", err)
	}
	if !entry.Ongoing() {
		return models.Cycle{}, ErrCycleAlreadyEnded
	}
	if end.Before(entry.StartDate) {
		return models.Cycle{}, ErrCycleEndBeforeStart
	}

	if err := service.cycles.UpdateEndDate(ctx, userID, cycleID, &end); err != nil {
		return models.Cycle{}, fmt.Errorf("update cycle end: %w", err)
	}
	entry.EndDate = &end
	return entry, nil
}

// Delete removes a logged cycle. When the profile's last period date came
// from that cycle it moves to the newest remaining one.
func (service *CycleService) Delete(ctx context.Context, userID uint, cycleID uint) error {
	entry, err := service.cycles.FindByID(ctx, userID, cycleID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load cycle: %w", err)
	}

	err = service.cycles.Delete(ctx, userID, cycleID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}

	return service.resyncLastPeriod(ctx, userID, entry.StartDate)
}

func (service *CycleService) syncLastPeriod(ctx context.Context, userID uint, start time.Time) error {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if user.LastPeriodDate != nil && !start.After(cycle.Day(*user.LastPeriodDate)) {
		return nil
	}
	if err := service.users.UpdateLastPeriodDate(ctx, userID, start); err != nil {
		return fmt.Errorf("update last period date: %w", err)
	}
	return nil
}

func (service *CycleService) resyncLastPeriod(ctx context.Context, userID uint, removedStart time.Time) error {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if user.LastPeriodDate == nil || !cycle.SameDay(*user.LastPeriodDate, removedStart) {
		return nil
	}

	newest, err := service.cycles.ListRecent(ctx, userID, 1)
	if err != nil {
		return fmt.Errorf("load newest cycle: %w", err)
	}
	if len(newest) == 0 {
		return nil
	}
	if err := service.users.UpdateLastPeriodDate(ctx, userID, newest[0].StartDate); err != nil {
		return fmt.Errorf("update last period date: %w", err)
	}
	return nil
}
