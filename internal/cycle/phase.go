package cycle

type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"
	PhaseUnknown    Phase = "unknown"
)

const (
	// LutealPhaseDays is the fixed backoff from the next period to ovulation.
	LutealPhaseDays = 14

	// MenstrualPhaseDays is the last day offset still counted as menstrual.
	MenstrualPhaseDays = 5

	FertileDaysBeforeOvulation = 5
	FertileDaysAfterOvulation  = 1
	ovulationToleranceDays     = 1
)

func (phase Phase) Valid() bool {
	switch phase {
	case PhaseMenstrual, PhaseFollicular, PhaseOvulation, PhaseLuteal, PhaseUnknown:
		return true
	default:
		return false
	}
}

// ClassifyPhase maps a position in the cycle to exactly one phase. The
// ranges overlap or invert for short cycle lengths; the first matching rule
// wins, in the order menstrual, follicular, ovulation, luteal.
func ClassifyPhase(daysSinceLastPeriod int, averageCycleLength int, daysFromOvulation int) Phase {
	lutealStart := averageCycleLength - LutealPhaseDays

	switch {
	case daysSinceLastPeriod >= 0 && daysSinceLastPeriod <= MenstrualPhaseDays:
		return PhaseMenstrual
	case daysSinceLastPeriod > MenstrualPhaseDays && daysSinceLastPeriod < lutealStart:
		return PhaseFollicular
	case absInt(daysFromOvulation) <= ovulationToleranceDays:
		return PhaseOvulation
	case daysSinceLastPeriod >= lutealStart && daysSinceLastPeriod < averageCycleLength:
		return PhaseLuteal
	default:
		return PhaseUnknown
	}
}

func absInt(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
