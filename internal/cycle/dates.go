package cycle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the ISO-8601 calendar-date layout used at every boundary.
const DayLayout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid calendar date")

// Day drops the clock component and returns the calendar day of value as
// midnight UTC, so day arithmetic never crosses a DST transition.
func Day(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func DayIn(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	return Day(value.In(location))
}

func ParseDay(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDay)
	}
	parsed, err := time.ParseInLocation(DayLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, trimmed)
	}
	return parsed, nil
}

func ParseOptionalDay(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := ParseDay(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func FormatDay(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return Day(value).Format(DayLayout)
}

func AddDays(value time.Time, days int) time.Time {
	return Day(value).AddDate(0, 0, days)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the signed number of calendar days from start to end.
// Both sides are midnight UTC, so the Unix difference is an exact multiple
// of a day and does not saturate like time.Duration.
func DaysBetween(start time.Time, end time.Time) int {
	return int((Day(end).Unix() - Day(start).Unix()) / secondsPerDay)
}

func SameDay(a time.Time, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

func dayPtr(value time.Time) *time.Time {
	day := Day(value)
	return &day
}

func intPtr(value int) *int {
	return &value
}
