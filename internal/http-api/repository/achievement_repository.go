package repository

import (
	"booktrack/internal/http-api/models"
	"context"

	"gorm.io/gorm"
)

type achievementRepository struct {
	db *gorm.DB
}

type AchievementRepository interface {
	Insert(ctx context.Context, unlocked *models.UnlockedAchievement) error
	FetchAll(ctx context.Context, userID string) ([]models.UnlockedAchievement, error)
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Insert(ctx context.Context, unlocked *models.UnlockedAchievement) error {
	return r.db.WithContext(ctx).Create(unlocked).Error
}

func (r *achievementRepository) FetchAll(ctx context.Context, userID string) ([]models.UnlockedAchievement, error) {
	var unlocked []models.UnlockedAchievement
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&unlocked).Error; err != nil {
		return nil, err
	}
	return unlocked, nil
}
