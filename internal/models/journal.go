package models

import "time"

const (
	MoodHappy     = "happy"
	MoodCalm      = "calm"
	MoodSad       = "sad"
	MoodAnxious   = "anxious"
	MoodIrritable = "irritable"
	MoodTired     = "tired"
)

func KnownMoods() []string {
	return []string{MoodHappy, MoodCalm, MoodSad, MoodAnxious, MoodIrritable, MoodTired}
}

type SymptomLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_symptom_logs_user_date" json:"-"`
	Date      time.Time `gorm:"type:date;not null;index:idx_symptom_logs_user_date" json:"date"`
	Symptoms  []string  `gorm:"serializer:json" json:"symptoms"`
	Mood      string    `json:"mood"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type DailyCheckIn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uidx_checkins_user_date" json:"-"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uidx_checkins_user_date" json:"date"`
	Mood        string    `gorm:"not null" json:"mood"`
	EnergyLevel int       `gorm:"not null;default:3" json:"energy_level"`
	WaterIntake int       `gorm:"not null;default:0" json:"water_intake"`
	SleepHours  *float64  `json:"sleep_hours"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
