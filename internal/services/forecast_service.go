package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/cyclesense/internal/cycle"
	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/metrics"
	"github.com/terraincognita07/cyclesense/internal/models"
	"golang.org/x/sync/errgroup"
)

type ForecastUserStore interface {
	LoadBaselineByID(ctx context.Context, userID uint) (models.User, error)
}

type ForecastCycleStore interface {
	ListRecent(ctx context.Context, userID uint, limit int) ([]models.Cycle, error)
	ListOverlapping(ctx context.Context, userID uint, from time.Time, to time.Time) ([]models.Cycle, error)
}

type ForecastService struct {
	users        ForecastUserStore
	cycles       ForecastCycleStore
	historyLimit int
	location     *time.Location
	metrics      *metrics.Metrics
}

func NewForecastService(users ForecastUserStore, cycles ForecastCycleStore, location *time.Location, recorder *metrics.Metrics) *ForecastService {
	if location == nil {
		location = time.UTC
	}
	return &ForecastService{
		users:        users,
		cycles:       cycles,
		historyLimit: cycle.MaxHistoryCycles,
		location:     location,
		metrics:      recorder,
	}
}

type Dashboard struct {
	Today      string                  `json:"today"`
	Estimate   cycle.FertilityEstimate `json:"estimate"`
	Prediction *cycle.CyclePrediction  `json:"prediction,omitempty"`
	Confidence string                  `json:"confidence,omitempty"`
	Quote      string                  `json:"quote"`
}

func (service *ForecastService) Estimate(ctx context.Context, userID uint, now time.Time) (cycle.FertilityEstimate, error) {
	user, err := service.loadBaseline(ctx, userID)
	if err != nil {
		return cycle.FertilityEstimate{}, err
	}
	return service.estimate(user, now), nil
}

// Predict requires a stored last period date and returns ErrNoLastPeriod
// otherwise.
func (service *ForecastService) Predict(ctx context.Context, userID uint, now time.Time) (cycle.CyclePrediction, error) {
	user, history, err := service.loadHistory(ctx, userID)
	if err != nil {
		return cycle.CyclePrediction{}, err
	}

	return service.predict(user, history, now)
}

func (service *ForecastService) Dashboard(ctx context.Context, userID uint, now time.Time) (Dashboard, error) {
	user, history, err := service.loadHistory(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	local := now.In(service.location)
	dashboard := Dashboard{
		Today:    cycle.FormatDay(cycle.Day(local)),
		Estimate: service.estimate(user, now),
		Quote:    DailyQuote(local),
	}

	prediction, err := service.predict(user, history, now)
	switch {
	case err == nil:
		dashboard.Prediction = &prediction
		dashboard.Confidence = cycle.AccuracyLabel(prediction.AccuracyScore)
	case errors.Is(err, ErrNoLastPeriod), errors.Is(err, cycle.ErrInvalidCycleLength):
		// estimate only
	default:
		return Dashboard{}, err
	}

	return dashboard, nil
}

func (service *ForecastService) estimate(user models.User, now time.Time) cycle.FertilityEstimate {
	estimate := cycle.Estimate(user.LastPeriodDate, user.AverageCycleLength, now.In(service.location))
	service.metrics.ObserveEstimate(string(estimate.CurrentPhase))
	return estimate
}

func (service *ForecastService) predict(user models.User, history []models.Cycle, now time.Time) (cycle.CyclePrediction, error) {
	if user.LastPeriodDate == nil || user.LastPeriodDate.IsZero() {
		return cycle.CyclePrediction{}, ErrNoLastPeriod
	}

	prediction, err := cycle.Predict(CycleRecords(history), *user.LastPeriodDate, user.AverageCycleLength, now.In(service.location))
	if err != nil {
		return cycle.CyclePrediction{}, err
	}
	service.metrics.ObservePrediction(cycle.AccuracyLabel(prediction.AccuracyScore), prediction.SampleCount)
	return prediction, nil
}

func (service *ForecastService) loadHistory(ctx context.Context, userID uint) (models.User, []models.Cycle, error) {
	var user models.User
	var history []models.Cycle

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		loaded, err := service.loadBaseline(groupCtx, userID)
		user = loaded
		return err
	})
	group.Go(func() error {
		loaded, err := service.cycles.ListRecent(groupCtx, userID, service.historyLimit)
		if err != nil {
			return fmt.Errorf("load cycle history: %w", err)
		}
		history = loaded
		return nil
	})
	if err := group.Wait(); err != nil {
		return models.User{}, nil, err
	}
	return user, history, nil
}

func (service *ForecastService) loadBaseline(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.LoadBaselineByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load baseline: %w", err)
	}
	return user, nil
}

// CycleRecords converts stored cycles, most recent first, into prediction input.
func CycleRecords(cycles []models.Cycle) []cycle.CycleRecord {
	records := make([]cycle.CycleRecord, 0, len(cycles))
	for _, entry := range cycles {
		records = append(records, cycle.CycleRecord{Start: entry.StartDate, End: entry.EndDate})
	}
	return records
}
