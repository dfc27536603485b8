package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclesense/internal/config"
	"github.com/terraincognita07/cyclesense/internal/logging"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	output     string
}

func newRootCommand() *cobra.Command {
	options := &rootOptions{}

	root := &cobra.Command{
		Use:           "cyclesense",
		Short:         "Menstrual cycle tracking and fertility-phase forecasting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch options.output {
			case outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (want json or yaml)", options.output)
			}
		},
	}

	root.PersistentFlags().StringVarP(&options.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVarP(&options.output, "output", "o", outputJSON, "output format: json or yaml")

	root.AddCommand(
		newServeCommand(options),
		newEstimateCommand(options),
		newPredictCommand(options),
		newUserCommand(options),
		newMigrateCommand(options),
		newSecretCommand(),
	)
	return root
}

func (options *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(options.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	return logger, nil
}
