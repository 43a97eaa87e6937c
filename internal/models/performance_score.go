package models

import "time"

type PerformanceScore struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_performance_user_month" json:"user_id"`
	Score     int       `gorm:"not null" json:"score"`
	Month     time.Time `gorm:"type:date;not null;uniqueIndex:idx_performance_user_month" json:"month"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// MonthStart truncates t to midnight UTC on the first day of its month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
