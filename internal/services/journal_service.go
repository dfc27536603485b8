package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/cyclesense/internal/cycle"
	"github.com/terraincognita07/cyclesense/internal/db"
	"github.com/terraincognita07/cyclesense/internal/models"
)

const defaultJournalLimit = 30

type JournalStore interface {
	ListSymptomLogs(ctx context.Context, userID uint, limit int) ([]models.SymptomLog, error)
	CreateSymptomLog(ctx context.Context, entry *models.SymptomLog) error
	DeleteSymptomLog(ctx context.Context, userID uint, logID uint) error
	ListCheckIns(ctx context.Context, userID uint, limit int) ([]models.DailyCheckIn, error)
	UpsertCheckIn(ctx context.Context, entry *models.DailyCheckIn) error
}

type SymptomInput struct {
	Date     string   `json:"date" validate:"required"`
	Symptoms []string `json:"symptoms" validate:"max=20,dive,required,max=64"`
	Mood     string   `json:"mood" validate:"omitempty,mood"`
	Notes    string   `json:"notes" validate:"max=1000"`
}

type CheckInInput struct {
	Date        string   `json:"date" validate:"required"`
	Mood        string   `json:"mood" validate:"required,mood"`
	EnergyLevel int      `json:"energy_level" validate:"min=1,max=5"`
	WaterIntake int      `json:"water_intake" validate:"min=0,max=50"`
	SleepHours  *float64 `json:"sleep_hours" validate:"omitempty,min=0,max=24"`
}

type JournalService struct {
	journal  JournalStore
	location *time.Location
}

func NewJournalService(journal JournalStore, location *time.Location) *JournalService {
	if location == nil {
		location = time.UTC
	}
	return &JournalService{journal: journal, location: location}
}

func (service *JournalService) ListSymptoms(ctx context.Context, userID uint, limit int) ([]models.SymptomLog, error) {
	return service.journal.ListSymptomLogs(ctx, userID, clampJournalLimit(limit))
}

func (service *JournalService) LogSymptoms(ctx context.Context, userID uint, input SymptomInput, now time.Time) (models.SymptomLog, error) {
	input.Mood = strings.ToLower(strings.TrimSpace(input.Mood))
	symptoms := make([]string, 0, len(input.Symptoms))
	for _, symptom := range input.Symptoms {
		if trimmed := strings.TrimSpace(symptom); trimmed != "" {
			symptoms = append(symptoms, trimmed)
		}
	}
	input.Symptoms = symptoms
	if err := validateInput(input); err != nil {
		return models.SymptomLog{}, err
	}

	day, err := service.parsePastDay(input.Date, now)
	if err != nil {
		return models.SymptomLog{}, err
	}

	entry := models.SymptomLog{
		UserID:   userID,
		Date:     day,
		Symptoms: input.Symptoms,
		Mood:     input.Mood,
		Notes:    strings.TrimSpace(input.Notes),
	}
	if err := service.journal.CreateSymptomLog(ctx, &entry); err != nil {
		return models.SymptomLog{}, fmt.Errorf("create symptom log: %w", err)
	}
	return entry, nil
}

func (service *JournalService) DeleteSymptoms(ctx context.Context, userID uint, logID uint) error {
	err := service.journal.DeleteSymptomLog(ctx, userID, logID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (service *JournalService) ListCheckIns(ctx context.Context, userID uint, limit int) ([]models.DailyCheckIn, error) {
	return service.journal.ListCheckIns(ctx, userID, clampJournalLimit(limit))
}

// CheckIn records the day's check-in, replacing an earlier one for the same day.
func (service *JournalService) CheckIn(ctx context.Context, userID uint, input CheckInInput, now time.Time) (models.DailyCheckIn, error) {
	input.Mood = strings.ToLower(strings.TrimSpace(input.Mood))
	if err := validateInput(input); err != nil {
		return models.DailyCheckIn{}, err
	}

	day, err := service.parsePastDay(input.Date, now)
	if err != nil {
		return models.DailyCheckIn{}, err
	}

	entry := models.DailyCheckIn{
		UserID:      userID,
		Date:        day,
		Mood:        input.Mood,
		EnergyLevel: input.EnergyLevel,
		WaterIntake: input.WaterIntake,
		SleepHours:  input.SleepHours,
	}
	if err := service.journal.UpsertCheckIn(ctx, &entry); err != nil {
		return models.DailyCheckIn{}, fmt.Errorf("save check-in: %w", err)
	}
	return entry, nil
}

func (service *JournalService) parsePastDay(raw string, now time.Time) (time.Time, error) {
	day, err := cycle.ParseDay(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if day.After(cycle.DayIn(now, service.location)) {
		return time.Time{}, ErrDateInFuture
	}
	return day, nil
}

func clampJournalLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultJournalLimit
	}
	return limit
}
