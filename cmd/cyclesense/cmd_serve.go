package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclesense/internal/api"
	"github.com/terraincognita07/cyclesense/internal/config"
	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/insights"
	"github.com/terraincognita07/cyclesense/internal/metrics"
	"github.com/terraincognita07/cyclesense/internal/notify"
	"github.com/terraincognita07/cyclesense/internal/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := options.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Server.SecretKey == config.InsecureSecretKey {
				return errors.New("server.secret_key uses the insecure placeholder; generate one with `cyclesense secret`")
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	location, ok := cfg.Location()
	if !ok {
		logger.Warn("invalid timezone, falling back to UTC", zap.String("timezone", cfg.Server.Timezone))
	}

	database, err := db.OpenSQLite(cfg.Database.Path, logger.Named("db"))
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	recorder := metrics.New()
	generator, err := newInsightsGenerator(cfg, logger)
	if err != nil {
		return err
	}

	deps := api.BuildDependencies(database, api.ServiceSettings{
		Location:          location,
		CycleBounds:       services.CycleBounds{Min: cfg.Cycle.MinCycleLength, Max: cfg.Cycle.MaxCycleLength},
		HistoryLimit:      cfg.Cycle.HistoryLimit,
		InsightsPerMinute: cfg.Insights.RatePerMinute,
		InsightsGenerator: generator,
	}, recorder, logger)

	handler, err := api.NewHandler(deps, api.Options{
		SecretKey:    cfg.Server.SecretKey,
		CookieSecure: cfg.Server.CookieSecure,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := api.NewApp(handler)

	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.Reminders.Enabled {
		notifier, err := notify.NewTelegramNotifier(cfg.Reminders.TelegramBotToken, notify.TelegramOptions{
			Logger: logger.Named("telegram"),
		})
		if err != nil {
			return fmt.Errorf("telegram init failed: %w", err)
		}
		reminders := services.NewReminderService(db.NewUserRepository(database), notifier, services.ReminderOptions{
			Interval:      cfg.Reminders.Interval,
			DefaultChatID: cfg.Reminders.DefaultChatID,
			Location:      location,
			Metrics:       recorder,
			Logger:        logger,
		})
		group.Go(func() error {
			<-reminders.Start(groupCtx)
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
		return nil
	})

	group.Go(func() error {
		logger.Info("cyclesense listening",
			zap.String("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path),
			zap.String("tz", location.String()),
			zap.Bool("reminders", cfg.Reminders.Enabled),
			zap.Bool("insights", generator != nil),
		)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
		return nil
	})

	return group.Wait()
}

// newInsightsGenerator returns a nil interface when insights are disabled so
// the service reports them as unavailable.
func newInsightsGenerator(cfg *config.Config, logger *zap.Logger) (services.InsightGenerator, error) {
	if !cfg.Insights.Enabled {
		return nil, nil
	}
	generator, err := insights.NewOpenAIGenerator(insights.OpenAIOptions{
		APIKey:  cfg.Insights.APIKey,
		BaseURL: cfg.Insights.BaseURL,
		Model:   cfg.Insights.Model,
		Logger:  logger.Named("insights"),
	})
	if err != nil {
		return nil, fmt.Errorf("insights init failed: %w", err)
	}
	return generator, nil
}
