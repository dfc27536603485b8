package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclesense/internal/cycle"
)

const defaultCycleLengthFlag = 28

type forecastFlags struct {
	lastPeriod  string
	cycleLength int
	now         string
}

func (flags *forecastFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.lastPeriod, "last-period", "", "first day of the last period (YYYY-MM-DD)")
	cmd.Flags().IntVar(&flags.cycleLength, "cycle-length", defaultCycleLengthFlag, "average cycle length in days")
	cmd.Flags().StringVar(&flags.now, "now", "", "evaluate as of this day (YYYY-MM-DD), default today")
}

func (flags *forecastFlags) evaluationDay() (time.Time, error) {
	if strings.TrimSpace(flags.now) == "" {
		return cycle.Day(time.Now()), nil
	}
	day, err := cycle.ParseDay(flags.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now: %w", err)
	}
	return day, nil
}

func newEstimateCommand(options *rootOptions) *cobra.Command {
	flags := &forecastFlags{}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the current phase and next period from a single cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lastPeriod, err := cycle.ParseOptionalDay(flags.lastPeriod)
			if err != nil {
				return fmt.Errorf("--last-period: %w", err)
			}
			now, err := flags.evaluationDay()
			if err != nil {
				return err
			}

			estimate := cycle.Estimate(lastPeriod, flags.cycleLength, now)
			return writeOutput(cmd.OutOrStdout(), options.output, estimate)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPredictCommand(options *rootOptions) *cobra.Command {
	flags := &forecastFlags{}
	var rawCycles []string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the next cycle from logged cycle history",
		Long: "Predict the next period, ovulation and fertile window from the mean of the\n" +
			"observed cycle lengths. Pass --cycle once per logged cycle as START or START:END,\n" +
			"most recent first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lastPeriod, err := cycle.ParseDay(flags.lastPeriod)
			if err != nil {
				return fmt.Errorf("--last-period: %w", err)
			}
			now, err := flags.evaluationDay()
			if err != nil {
				return err
			}
			records, err := parseCycleFlags(rawCycles)
			if err != nil {
				return err
			}

			prediction, err := cycle.Predict(records, lastPeriod, flags.cycleLength, now)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), options.output, predictionReport{
				prediction: prediction,
				confidence: cycle.AccuracyLabel(prediction.AccuracyScore),
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVar(&rawCycles, "cycle", nil, "logged cycle as START[:END], repeatable, most recent first")
	_ = cmd.MarkFlagRequired("last-period")
	return cmd
}

// predictionReport flattens the confidence label into the prediction object.
type predictionReport struct {
	prediction cycle.CyclePrediction
	confidence string
}

func (report predictionReport) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(report.prediction)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	if fields["confidence"], err = json.Marshal(report.confidence); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func parseCycleFlags(values []string) ([]cycle.CycleRecord, error) {
	records := make([]cycle.CycleRecord, 0, len(values))
	for _, value := range values {
		rawStart, rawEnd, _ := strings.Cut(value, ":")

		start, err := cycle.ParseDay(rawStart)
		if err != nil {
			return nil, fmt.Errorf("--cycle %q: %w", value, err)
		}
		end, err := cycle.ParseOptionalDay(rawEnd)
		if err != nil {
			return nil, fmt.Errorf("--cycle %q: %w", value, err)
		}
		if end != nil && end.Before(start) {
			return nil, fmt.Errorf("--cycle %q: end precedes start", value)
		}
		records = append(records, cycle.CycleRecord{Start: start, End: end})
	}
	return records, nil
}
