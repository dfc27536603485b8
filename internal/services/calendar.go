package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/cyclesense/internal/cycle"
	"github.com/terraincognita07/cyclesense/internal/models"
	"golang.org/x/sync/errgroup"
)

const MonthLayout = "2006-01"

type CalendarDay struct {
	Date      string `json:"date"`
	Period    bool   `json:"period"`
	Fertile   bool   `json:"fertile"`
	Ovulation bool   `json:"ovulation"`
	Today     bool   `json:"today"`
}

type CalendarMonth struct {
	Month    string                  `json:"month"`
	Estimate cycle.FertilityEstimate `json:"estimate"`
	Days     []CalendarDay           `json:"days"`
}

// ParseMonth reads a YYYY-MM value and returns the first day of that month.
// An empty value selects the month containing now.
func ParseMonth(raw string, now time.Time, location *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		today := cycle.DayIn(now, location)
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.ParseInLocation(MonthLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month must be YYYY-MM", ErrInvalidInput)
	}
	return parsed, nil
}

// Calendar marks every day of the requested month with logged period days
// and the fertile window and ovulation day of the current estimate.
func (service *ForecastService) Calendar(ctx context.Context, userID uint, rawMonth string, now time.Time) (CalendarMonth, error) {
	monthStart, err := ParseMonth(rawMonth, now, service.location)
	if err != nil {
		return CalendarMonth{}, err
	}
	monthEnd := monthStart.AddDate(0, 1, -1)

	var user models.User
	var logged []models.Cycle
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		loaded, err := service.loadBaseline(groupCtx, userID)
		user = loaded
		return err
	})
	group.Go(func() error {
		loaded, err := service.cycles.ListOverlapping(groupCtx, userID, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("load month cycles: %w", err)
		}
		logged = loaded
		return nil
	})
	if err := group.Wait(); err != nil {
		return CalendarMonth{}, err
	}

	estimate := cycle.Estimate(user.LastPeriodDate, user.AverageCycleLength, now.In(service.location))
	return CalendarMonth{
		Month:    monthStart.Format(MonthLayout),
		Estimate: estimate,
		Days:     buildCalendarDays(monthStart, monthEnd, logged, estimate, cycle.DayIn(now, service.location)),
	}, nil
}

func buildCalendarDays(monthStart time.Time, monthEnd time.Time, logged []models.Cycle, estimate cycle.FertilityEstimate, today time.Time) []CalendarDay {
	periodDays := make(map[string]bool)
	for _, entry := range logged {
		first := cycle.Day(entry.StartDate)
		last := first
		if entry.EndDate != nil {
			last = cycle.Day(*entry.EndDate)
		}
		if first.Before(monthStart) {
			first = monthStart
		}
		if last.After(monthEnd) {
			last = monthEnd
		}
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			periodDays[cycle.FormatDay(day)] = true
		}
	}

	days := make([]CalendarDay, 0, monthEnd.Day())
	for day := monthStart; !day.After(monthEnd); day = day.AddDate(0, 0, 1) {
		key := cycle.FormatDay(day)
		days = append(days, CalendarDay{
			Date:      key,
			Period:    periodDays[key],
			Fertile:   cycle.IsDateInFertileWindow(day, estimate.FertileWindowStart, estimate.FertileWindowEnd),
			Ovulation: cycle.IsOvulationDay(day, estimate.OvulationDate),
			Today:     cycle.SameDay(day, today),
		})
	}
	return days
}
