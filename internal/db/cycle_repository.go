package db

import (
	"context"
	"time"

	"github.com/terraincognita07/cyclesense/internal/models"
	"gorm.io/gorm"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

// ListRecent returns the user's logged (non-predicted) cycles, most recent first.
func (repo *CycleRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]models.Cycle, error) {
	query := repo.database.WithContext(ctx).
		Where("user_id = ? AND is_predicted = ?", userID, false).
		Order("start_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	cycles := make([]models.Cycle, 0)
	if err := query.Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (repo *CycleRepository) FindByID(ctx context.Context, userID uint, cycleID uint) (models.Cycle, error) {
	var entry models.Cycle
	if err := repo.database.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, cycleID).
		First(&entry).Error; err != nil {
		return models.Cycle{}, translateError(err)
	}
	return entry, nil
}

func (repo *CycleRepository) ExistsWithStart(ctx context.Context, userID uint, start time.Time) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Cycle{}).
		Where("user_id = ? AND start_date = ? AND is_predicted = ?", userID, start, false).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *CycleRepository) Create(ctx context.Context, entry *models.Cycle) error {
	return repo.database.WithContext(ctx).Create(entry).Error
}

func (repo *CycleRepository) UpdateEndDate(ctx context.Context, userID uint, cycleID uint, end *time.Time) error {
	result := repo.database.WithContext(ctx).Model(&models.Cycle{}).
		Where("user_id = ? AND id = ?", userID, cycleID).
		Update("end_date", end)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *CycleRepository) Delete(ctx context.Context, userID uint, cycleID uint) error {
	result := repo.database.WithContext(ctx).Where("user_id = ? AND id = ?", userID, cycleID).Delete(&models.Cycle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOverlapping returns logged cycles whose span touches [from, to]. An
// ongoing cycle spans only its start day.
func (repo *CycleRepository) ListOverlapping(ctx context.Context, userID uint, from time.Time, to time.Time) ([]models.Cycle, error) {
	cycles := make([]models.Cycle, 0)
	err := repo.database.WithContext(ctx).
		Where("user_id = ? AND is_predicted = ?", userID, false).
		Where("start_date <= ? AND COALESCE(end_date, start_date) >= ?", to, from).
		Order("start_date ASC, id ASC").
		Find(&cycles).Error
	if err != nil {
		return nil, err
	}
	return cycles, nil
}
