package models

import (
	"encoding/json"

	"github.com/terraincognita07/cyclesense/internal/cycle"
)

// Calendar-day columns travel as YYYY-MM-DD; audit timestamps keep RFC 3339.

func (entry Cycle) MarshalJSON() ([]byte, error) {
	type plain Cycle
	return json.Marshal(struct {
		plain
		StartDate string  `json:"start_date"`
		EndDate   *string `json:"end_date"`
	}{plain(entry), cycle.FormatDay(entry.StartDate), cycle.FormatOptionalDay(entry.EndDate)})
}

func (entry *Cycle) UnmarshalJSON(data []byte) error {
	type plain Cycle
	var wire struct {
		plain
		StartDate string  `json:"start_date"`
		EndDate   *string `json:"end_date"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	decoded := Cycle(wire.plain)
	start, err := cycle.ParseDay(wire.StartDate)
	if err != nil {
		return err
	}
	if decoded.EndDate, err = cycle.ParseDayPointer(wire.EndDate); err != nil {
		return err
	}
	decoded.StartDate = start
	*entry = decoded
	return nil
}

func (entry SymptomLog) MarshalJSON() ([]byte, error) {
	type plain SymptomLog
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain(entry), cycle.FormatDay(entry.Date)})
}

func (entry *SymptomLog) UnmarshalJSON(data []byte) error {
	type plain SymptomLog
	var wire struct {
		plain
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	day, err := cycle.ParseDay(wire.Date)
	if err != nil {
		return err
	}
	decoded := SymptomLog(wire.plain)
	decoded.Date = day
	*entry = decoded
	return nil
}

func (entry DailyCheckIn) MarshalJSON() ([]byte, error) {
	type plain DailyCheckIn
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain(entry), cycle.FormatDay(entry.Date)})
}

func (entry *DailyCheckIn) UnmarshalJSON(data []byte) error {
	type plain DailyCheckIn
	var wire struct {
		plain
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	day, err := cycle.ParseDay(wire.Date)
	if err != nil {
		return err
	}
	decoded := DailyCheckIn(wire.plain)
	decoded.Date = day
	*entry = decoded
	return nil
}

func (user User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		LastPeriodDate *string `json:"last_period_date"`
	}{plain(user), cycle.FormatOptionalDay(user.LastPeriodDate)})
}

func (user *User) UnmarshalJSON(data []byte) error {
	type plain User
	var wire struct {
		plain
		LastPeriodDate *string `json:"last_period_date"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	decoded := User(wire.plain)
	lastPeriod, err := cycle.ParseDayPointer(wire.LastPeriodDate)
	if err != nil {
		return err
	}
	decoded.LastPeriodDate = lastPeriod
	*user = decoded
	return nil
}
