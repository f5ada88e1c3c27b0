package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnlockedAchievement is the persisted fact that a user satisfied an
// achievement condition. The unique index on (user_id, achievement_id)
// guarantees at most one unlock per definition even if two evaluation
// passes race.
type UnlockedAchievement struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}

// BeforeCreate hook to set UUID before creating an UnlockedAchievement
func (ua *UnlockedAchievement) BeforeCreate(tx *gorm.DB) (err error) {
	if ua.ID == "" {
		ua.ID = uuid.New().String()
	}
	return
}

func (UnlockedAchievement) TableName() string {
	return "unlocked_achievements"
}
