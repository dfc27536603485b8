package models

import "time"

type Cycle struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index:idx_cycles_user_start" json:"-"`
	StartDate   time.Time  `gorm:"type:date;not null;index:idx_cycles_user_start" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date"`
	IsPredicted bool       `gorm:"not null;default:false" json:"is_predicted"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (cycle Cycle) Ongoing() bool {
	return cycle.EndDate == nil
}
