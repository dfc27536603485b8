package cycle

import (
	"errors"
	"math"
	"time"
)

const (
	// MaxHistoryCycles bounds how many of the most recent cycles feed a prediction.
	MaxHistoryCycles = 12

	MinPlausibleCycleLength = 1
	MaxPlausibleCycleLength = 59

	minSamplesForAccuracy = 3
	defaultAccuracyScore  = 50
	accuracyPenaltyPerDay = 10
)

var (
	ErrMissingLastPeriod  = errors.New("last period date is required")
	ErrInvalidCycleLength = errors.New("average cycle length must be positive")
)

type CycleRecord struct {
	Start time.Time
	End   *time.Time
}

type CyclePrediction struct {
	NextPeriodDate       time.Time `json:"next_period_date"`
	NextOvulationDate    time.Time `json:"next_ovulation_date"`
	FertilityWindowStart time.Time `json:"fertility_window_start"`
	FertilityWindowEnd   time.Time `json:"fertility_window_end"`
	AccuracyScore        int       `json:"accuracy_score"`
	CycleVariability     float64   `json:"cycle_variability"`
	SampleCount          int       `json:"sample_count"`
	PredictedCycleLength int       `json:"predicted_cycle_length"`
}

// Predict projects the next cycle from lastPeriod using the mean of the
// observed cycle lengths in cycles (most recent first), falling back to
// averageCycleLength when the history yields no plausible length. The
// projection is anchored on lastPeriod, not on cycles[0]; now does not shift it.
func Predict(cycles []CycleRecord, lastPeriod time.Time, averageCycleLength int, now time.Time) (CyclePrediction, error) {
	if lastPeriod.IsZero() {
		return CyclePrediction{}, ErrMissingLastPeriod
	}
	if averageCycleLength <= 0 {
		return CyclePrediction{}, ErrInvalidCycleLength
	}

	lengths := ObservedCycleLengths(cycles)

	averageLength := float64(averageCycleLength)
	if len(lengths) > 0 {
		averageLength = averageInts(lengths)
	}

	variability := 0.0
	if len(lengths) > 0 {
		variability = math.Sqrt(populationVariance(lengths, averageLength))
	}

	predictedCycleLength := int(math.Round(averageLength))
	window := projectWindow(Day(lastPeriod), predictedCycleLength)

	return CyclePrediction{
		NextPeriodDate:       window.nextPeriod,
		NextOvulationDate:    window.ovulation,
		FertilityWindowStart: window.fertileStart,
		FertilityWindowEnd:   window.fertileEnd,
		AccuracyScore:        accuracyScore(len(lengths), variability),
		CycleVariability:     roundToTenth(variability),
		SampleCount:          len(lengths),
		PredictedCycleLength: predictedCycleLength,
	}, nil
}

// ObservedCycleLengths returns the plausible day distances between adjacent
// cycle starts. Only the first MaxHistoryCycles records are considered.
func ObservedCycleLengths(cycles []CycleRecord) []int {
	if len(cycles) > MaxHistoryCycles {
		cycles = cycles[:MaxHistoryCycles]
	}
	if len(cycles) < 2 {
		return nil
	}

	lengths := make([]int, 0, len(cycles)-1)
	for index := 0; index+1 < len(cycles); index++ {
		length := DaysBetween(cycles[index+1].Start, cycles[index].Start)
		if !IsPlausibleCycleLength(length) {
			continue
		}
		lengths = append(lengths, length)
	}
	return lengths
}

func IsPlausibleCycleLength(length int) bool {
	return length >= MinPlausibleCycleLength && length <= MaxPlausibleCycleLength
}

func AccuracyLabel(score int) string {
	switch {
	case score >= 80:
		return "Very High"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Moderate"
	default:
		return "Building..."
	}
}

func accuracyScore(sampleCount int, variability float64) int {
	if sampleCount < minSamplesForAccuracy {
		return defaultAccuracyScore
	}
	score := 100 - variability*accuracyPenaltyPerDay
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func averageInts(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var total int
	for _, value := range values {
		total += value
	}
	return float64(total) / float64(len(values))
}

func populationVariance(values []int, mean float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	var sum float64
	for _, value := range values {
		deviation := float64(value) - mean
		sum += deviation * deviation
	}
	return sum / float64(len(values))
}

func roundToTenth(value float64) float64 {
	return math.Round(value*10) / 10
}
