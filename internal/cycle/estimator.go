package cycle

import "time"

// FertilityEstimate is the single-cycle projection from the last period
// start. Nil fields mean the input was insufficient to derive them.
type FertilityEstimate struct {
	NextPeriodDate     *time.Time `json:"next_period_date"`
	OvulationDate      *time.Time `json:"ovulation_date"`
	FertileWindowStart *time.Time `json:"fertile_window_start"`
	FertileWindowEnd   *time.Time `json:"fertile_window_end"`
	DaysUntilPeriod    *int       `json:"days_until_period"`
	DaysUntilOvulation *int       `json:"days_until_ovulation"`
	CurrentPhase       Phase      `json:"current_phase"`
}

func UnknownEstimate() FertilityEstimate {
	return FertilityEstimate{CurrentPhase: PhaseUnknown}
}

func (estimate FertilityEstimate) Known() bool {
	return estimate.NextPeriodDate != nil
}

// Estimate computes the current phase and the forward projection for one
// cycle. A nil lastPeriod or a non-positive averageCycleLength yields the
// unknown estimate. now is the evaluation instant; only its calendar day is
// used.
func Estimate(lastPeriod *time.Time, averageCycleLength int, now time.Time) FertilityEstimate {
	if lastPeriod == nil || lastPeriod.IsZero() || averageCycleLength <= 0 {
		return UnknownEstimate()
	}

	last := Day(*lastPeriod)
	today := Day(now)

	window := projectWindow(last, averageCycleLength)
	daysSinceLastPeriod := DaysBetween(last, today)

	return FertilityEstimate{
		NextPeriodDate:     dayPtr(window.nextPeriod),
		OvulationDate:      dayPtr(window.ovulation),
		FertileWindowStart: dayPtr(window.fertileStart),
		FertileWindowEnd:   dayPtr(window.fertileEnd),
		DaysUntilPeriod:    intPtr(DaysBetween(today, window.nextPeriod)),
		DaysUntilOvulation: intPtr(DaysBetween(today, window.ovulation)),
		CurrentPhase: ClassifyPhase(
			daysSinceLastPeriod,
			averageCycleLength,
			DaysBetween(window.ovulation, today),
		),
	}
}

type cycleWindow struct {
	nextPeriod   time.Time
	ovulation    time.Time
	fertileStart time.Time
	fertileEnd   time.Time
}

func projectWindow(lastPeriod time.Time, cycleLength int) cycleWindow {
	nextPeriod := AddDays(lastPeriod, cycleLength)
	ovulation := AddDays(nextPeriod, -LutealPhaseDays)
	return cycleWindow{
		nextPeriod:   nextPeriod,
		ovulation:    ovulation,
		fertileStart: AddDays(ovulation, -FertileDaysBeforeOvulation),
		fertileEnd:   AddDays(ovulation, FertileDaysAfterOvulation),
	}
}

func IsDateInFertileWindow(day time.Time, fertileWindowStart *time.Time, fertileWindowEnd *time.Time) bool {
	if fertileWindowStart == nil || fertileWindowEnd == nil {
		return false
	}
	value := Day(day)
	return !value.Before(Day(*fertileWindowStart)) && !value.After(Day(*fertileWindowEnd))
}

func IsOvulationDay(day time.Time, ovulationDate *time.Time) bool {
	if ovulationDate == nil {
		return false
	}
	return SameDay(day, *ovulationDate)
}
