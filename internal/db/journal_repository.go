package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/cyclesense/internal/models"
	"gorm.io/gorm"
)

type JournalRepository struct {
	database *gorm.DB
}

func NewJournalRepository(database *gorm.DB) *JournalRepository {
	return &JournalRepository{database: database}
}

func (repo *JournalRepository) ListSymptomLogs(ctx context.Context, userID uint, limit int) ([]models.SymptomLog, error) {
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	logs := make([]models.SymptomLog, 0)
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *JournalRepository) CreateSymptomLog(ctx context.Context, entry *models.SymptomLog) error {
	return repo.database.WithContext(ctx).Create(entry).Error
}

func (repo *JournalRepository) DeleteSymptomLog(ctx context.Context, userID uint, logID uint) error {
	result := repo.database.WithContext(ctx).Where("user_id = ? AND id = ?", userID, logID).Delete(&models.SymptomLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *JournalRepository) ListCheckIns(ctx context.Context, userID uint, limit int) ([]models.DailyCheckIn, error) {
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	checkIns := make([]models.DailyCheckIn, 0)
	if err := query.Find(&checkIns).Error; err != nil {
		return nil, err
	}
	return checkIns, nil
}

// UpsertCheckIn keeps one check-in per user and day.
func (repo *JournalRepository) UpsertCheckIn(ctx context.Context, entry *models.DailyCheckIn) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DailyCheckIn
		result := tx.Where("user_id = ? AND date = ?", entry.UserID, entry.Date).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return tx.Create(entry).Error
		}
		if result.Error != nil {
			return result.Error
		}

		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Updates(map[string]any{
			"mood":         entry.Mood,
			"energy_level": entry.EnergyLevel,
			"water_intake": entry.WaterIntake,
			"sleep_hours":  entry.SleepHours,
		}).Error
	})
}
