package cycle

import (
	"encoding/json"
	"fmt"
	"time"
)

// FormatOptionalDay formats value with DayLayout, keeping nil as nil.
func FormatOptionalDay(value *time.Time) *string {
	if value == nil || value.IsZero() {
		return nil
	}
	formatted := FormatDay(*value)
	return &formatted
}

// ParseDayPointer parses an optional DayLayout value, keeping nil as nil.
func ParseDayPointer(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return ParseOptionalDay(*raw)
}

func (estimate FertilityEstimate) MarshalJSON() ([]byte, error) {
	type plain FertilityEstimate
	return json.Marshal(struct {
		plain
		NextPeriodDate     *string `json:"next_period_date"`
		OvulationDate      *string `json:"ovulation_date"`
		FertileWindowStart *string `json:"fertile_window_start"`
		FertileWindowEnd   *string `json:"fertile_window_end"`
	}{
		plain:              plain(estimate),
		NextPeriodDate:     FormatOptionalDay(estimate.NextPeriodDate),
		OvulationDate:      FormatOptionalDay(estimate.OvulationDate),
		FertileWindowStart: FormatOptionalDay(estimate.FertileWindowStart),
		FertileWindowEnd:   FormatOptionalDay(estimate.FertileWindowEnd),
	})
}

func (estimate *FertilityEstimate) UnmarshalJSON(data []byte) error {
	type plain FertilityEstimate
	var wire struct {
		plain
		NextPeriodDate     *string `json:"next_period_date"`
		OvulationDate      *string `json:"ovulation_date"`
		FertileWindowStart *string `json:"fertile_window_start"`
		FertileWindowEnd   *string `json:"fertile_window_end"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	decoded := FertilityEstimate(wire.plain)
	if !decoded.CurrentPhase.Valid() {
		return fmt.Errorf("unknown phase %q", decoded.CurrentPhase)
	}
	var err error
	for _, field := range []struct {
		target **time.Time
		raw    *string
	}{
		{&decoded.NextPeriodDate, wire.NextPeriodDate},
		{&decoded.OvulationDate, wire.OvulationDate},
		{&decoded.FertileWindowStart, wire.FertileWindowStart},
		{&decoded.FertileWindowEnd, wire.FertileWindowEnd},
	} {
		if *field.target, err = ParseDayPointer(field.raw); err != nil {
			return err
		}
	}
	*estimate = decoded
	return nil
}

func (prediction CyclePrediction) MarshalJSON() ([]byte, error) {
	type plain CyclePrediction
	return json.Marshal(struct {
		plain
		NextPeriodDate       string `json:"next_period_date"`
		NextOvulationDate    string `json:"next_ovulation_date"`
		FertilityWindowStart string `json:"fertility_window_start"`
		FertilityWindowEnd   string `json:"fertility_window_end"`
	}{
		plain:                plain(prediction),
		NextPeriodDate:       FormatDay(prediction.NextPeriodDate),
		NextOvulationDate:    FormatDay(prediction.NextOvulationDate),
		FertilityWindowStart: FormatDay(prediction.FertilityWindowStart),
		FertilityWindowEnd:   FormatDay(prediction.FertilityWindowEnd),
	})
}

func (prediction *CyclePrediction) UnmarshalJSON(data []byte) error {
	type plain CyclePrediction
	var wire struct {
		plain
		NextPeriodDate       string `json:"next_period_date"`
		NextOvulationDate    string `json:"next_ovulation_date"`
		FertilityWindowStart string `json:"fertility_window_start"`
		FertilityWindowEnd   string `json:"fertility_window_end"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	decoded := CyclePrediction(wire.plain)
	var err error
	for _, field := range []struct {
		target *time.Time
		raw    string
	}{
		{&decoded.NextPeriodDate, wire.NextPeriodDate},
		{&decoded.NextOvulationDate, wire.NextOvulationDate},
		{&decoded.FertilityWindowStart, wire.FertilityWindowStart},
		{&decoded.FertilityWindowEnd, wire.FertilityWindowEnd},
	} {
		if *field.target, err = ParseDay(field.raw); err != nil {
			return err
		}
	}
	*prediction = decoded
	return nil
}

func (record CycleRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string  `json:"start_date"`
		End   *string `json:"end_date,omitempty"`
	}{FormatDay(record.Start), FormatOptionalDay(record.End)})
}

func (record *CycleRecord) UnmarshalJSON(data []byte) error {
	var wire struct {
		Start string  `json:"start_date"`
		End   *string `json:"end_date"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	start, err := ParseDay(wire.Start)
	if err != nil {
		return err
	}
	end, err := ParseDayPointer(wire.End)
	if err != nil {
		return err
	}
	*record = CycleRecord{Start: start, End: end}
	return nil
}
