package models

import "time"

const (
	NotificationTypeAchievement = "ACHIEVEMENT_UNLOCKED"
	NotificationTypeStreak      = "STREAK"
)

// Notification is the delivery sink for achievement unlocks and streak
// milestones. Rows are written fire-and-forget; the engine never waits
// on or reacts to their outcome.
type Notification struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          string    `gorm:"not null" json:"type"` // ACHIEVEMENT_UNLOCKED, STREAK
	AchievementID string    `json:"achievement_id,omitempty"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Read          bool      `gorm:"default:false" json:"read"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
