package models

import "time"

const (
	DefaultCycleLength        = 28
	DefaultPeriodLength       = 5
	DefaultReminderDaysBefore = 3
)

type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Email               string     `gorm:"not null" json:"email"`
	PasswordHash        string     `gorm:"not null" json:"-"`
	DisplayName         string     `gorm:"not null;default:''" json:"display_name"`
	MustChangePassword  bool       `gorm:"not null;default:false" json:"must_change_password"`
	LastPeriodDate      *time.Time `gorm:"type:date" json:"last_period_date"`
	AverageCycleLength  int        `gorm:"not null;default:28" json:"average_cycle_length"`
	AveragePeriodLength int        `gorm:"not null;default:5" json:"average_period_length"`
	RemindersEnabled    bool       `gorm:"not null;default:false" json:"reminders_enabled"`
	ReminderDaysBefore  int        `gorm:"not null;default:3" json:"reminder_days_before"`
	TelegramChatID      string     `gorm:"not null;default:''" json:"telegram_chat_id"`
	CreatedAt           time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
