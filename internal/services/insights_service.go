package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/insights"
	"github.com/terraincognita07/cyclesense/internal/logging"
	"github.com/terraincognita07/cyclesense/internal/metrics"
	"github.com/terraincognita07/cyclesense/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	insightsCycleHistory   = 6
	insightsJournalHistory = 30
)

type InsightGenerator interface {
	Generate(ctx context.Context, prompt insights.Prompt) (string, error)
}

type InsightsSources struct {
	Users   ForecastUserStore
	Cycles  interface {
		ListRecent(ctx context.Context, userID uint, limit int) ([]models.Cycle, error)
	}
	Journal interface {
		ListSymptomLogs(ctx context.Context, userID uint, limit int) ([]models.SymptomLog, error)
		ListCheckIns(ctx context.Context, userID uint, limit int) ([]models.DailyCheckIn, error)
	}
}

type InsightReport struct {
	ID          string    `json:"id"`
	Insights    string    `json:"insights"`
	GeneratedAt time.Time `json:"generated_at"`
}

type InsightsService struct {
	sources   InsightsSources
	generator InsightGenerator
	perMinute int
	metrics   *metrics.Metrics
	logger    *zap.Logger
	clock     func() time.Time

	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
}

// NewInsightsService accepts a nil generator; Generate then reports
// ErrInsightsUnavailable.
func NewInsightsService(sources InsightsSources, generator InsightGenerator, perMinute int, recorder *metrics.Metrics, logger *zap.Logger) *InsightsService {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &InsightsService{
		sources:   sources,
		generator: generator,
		perMinute: perMinute,
		metrics:   recorder,
		logger:    logging.OrNop(logger).Named("insights"),
		clock:     time.Now,
		limiters:  make(map[uint]*rate.Limiter),
	}
}

func (service *InsightsService) Enabled() bool {
	return service.generator != nil
}

func (service *InsightsService) Generate(ctx context.Context, userID uint) (InsightReport, error) {
	if service.generator == nil {
		service.metrics.ObserveInsights("unavailable")
		return InsightReport{}, ErrInsightsUnavailable
	}
	limiter := service.limiterFor(userID)
	if limiter.Tokens() < 1 {
		service.metrics.ObserveInsights("rate_limited")
		return InsightReport{}, ErrInsightsRateLimited
	}

	// The token is spent only once the history loaded; a store failure
	// leaves the user's budget untouched.
	snapshot, err := service.gather(ctx, userID)
	if err != nil {
		service.metrics.ObserveInsights("error")
		return InsightReport{}, err
	}
	if !limiter.Allow() {
		service.metrics.ObserveInsights("rate_limited")
		return InsightReport{}, ErrInsightsRateLimited
	}

	text, err := service.generator.Generate(ctx, insights.BuildPrompt(snapshot))
	if err != nil {
		service.logger.Warn("generate insights failed", zap.Uint("user_id", userID), zap.Error(err))
		switch {
		case errors.Is(err, insights.ErrUpstreamRateLimited):
			service.metrics.ObserveInsights("rate_limited")
			return InsightReport{}, ErrInsightsRateLimited
		case errors.Is(err, insights.ErrCreditsExhausted):
			service.metrics.ObserveInsights("out_of_credits")
			return InsightReport{}, ErrInsightsOutOfCredits
		default:
			service.metrics.ObserveInsights("error")
			return InsightReport{}, fmt.Errorf("generate insights: %w", err)
		}
	}

	service.metrics.ObserveInsights("ok")
	return InsightReport{
		ID:          uuid.NewString(),
		Insights:    text,
		GeneratedAt: service.clock().UTC(),
	}, nil
}

func (service *InsightsService) gather(ctx context.Context, userID uint) (insights.Snapshot, error) {
	var snapshot insights.Snapshot

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		user, err := service.sources.Users.LoadBaselineByID(groupCtx, userID)
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		snapshot.AverageCycleLength = user.AverageCycleLength
		snapshot.AveragePeriodLength = user.AveragePeriodLength
		return nil
	})
	group.Go(func() error {
		cycles, err := service.sources.Cycles.ListRecent(groupCtx, userID, insightsCycleHistory)
		if err != nil {
			return fmt.Errorf("load cycles: %w", err)
		}
		snapshot.Cycles = cycles
		return nil
	})
	group.Go(func() error {
		logs, err := service.sources.Journal.ListSymptomLogs(groupCtx, userID, insightsJournalHistory)
		if err != nil {
			return fmt.Errorf("load symptom logs: %w", err)
		}
		snapshot.Symptoms = logs
		return nil
	})
	group.Go(func() error {
		checkIns, err := service.sources.Journal.ListCheckIns(groupCtx, userID, insightsJournalHistory)
		if err != nil {
			return fmt.Errorf("load check-ins: %w", err)
		}
		snapshot.CheckIns = checkIns
		return nil
	})

	if err := group.Wait(); err != nil {
		return insights.Snapshot{}, err
	}
	return snapshot, nil
}

func (service *InsightsService) limiterFor(userID uint) *rate.Limiter {
	service.mu.Lock()
	defer service.mu.Unlock()

	limiter, ok := service.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(service.perMinute)), service.perMinute)
		service.limiters[userID] = limiter
	}
	return limiter
}
