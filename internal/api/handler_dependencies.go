package api

import (
	"time"

	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/metrics"
	"github.com/terraincognita07/cyclesense/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Dependencies struct {
	Auth      *services.AuthService
	Profiles  *services.ProfileService
	Cycles    *services.CycleService
	Journal   *services.JournalService
	Forecasts *services.ForecastService
	Insights  *services.InsightsService
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

type ServiceSettings struct {
	Location          *time.Location
	CycleBounds       services.CycleBounds
	HistoryLimit      int
	InsightsPerMinute int
	InsightsGenerator services.InsightGenerator
}

// BuildDependencies wires repositories over database into the services the
// handler serves.
func BuildDependencies(database *gorm.DB, settings ServiceSettings, recorder *metrics.Metrics, logger *zap.Logger) Dependencies {
	repositories := db.NewRepositories(database)

	return Dependencies{
		Auth:      services.NewAuthService(repositories.Users),
		Profiles:  services.NewProfileService(repositories.Users, settings.CycleBounds, settings.Location),
		Cycles:    services.NewCycleService(repositories.Cycles, repositories.Users, settings.HistoryLimit, settings.Location),
		Journal:   services.NewJournalService(repositories.Journal, settings.Location),
		Forecasts: services.NewForecastService(repositories.Users, repositories.Cycles, settings.Location, recorder),
		Insights: services.NewInsightsService(
			services.InsightsSources{Users: repositories.Users, Cycles: repositories.Cycles, Journal: repositories.Journal},
			settings.InsightsGenerator,
			settings.InsightsPerMinute,
			recorder,
			logger,
		),
		Metrics: recorder,
		Logger:  logger,
	}
}
