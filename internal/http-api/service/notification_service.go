package service

import (
	"booktrack/internal/http-api/models"
	"booktrack/internal/http-api/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// NotificationService is the engine's notification sink. The Notify*
// methods are fire-and-forget: callers never wait on or react to their
// outcome, failures are only logged.
type NotificationService interface {
	NotifyAchievementUnlocked(userID, title, message, achievementID string)
	NotifyStreak(userID string, streak int)
	GetUnread(ctx context.Context, userID string) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) NotifyAchievementUnlocked(userID, title, message, achievementID string) {
	s.deliver(&models.Notification{
		UserID:        userID,
		Type:          models.NotificationTypeAchievement,
		AchievementID: achievementID,
		Title:         title,
		Message:       message,
	})
}

func (s *notificationService) NotifyStreak(userID string, streak int) {
	s.deliver(&models.Notification{
		UserID:  userID,
		Type:    models.NotificationTypeStreak,
		Title:   "Reading streak",
		Message: fmt.Sprintf("You are on a %d-day reading streak!", streak),
	})
}

func (s *notificationService) deliver(notification *models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("notification delivery failed",
			"user_id", notification.UserID,
			"type", notification.Type,
			"error", err)
	}
}

func (s *notificationService) GetUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetUnreadByUser(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	// Verify the notification belongs to the user before flipping it
	notifications, err := s.repo.GetUnreadByUser(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	for _, n := range notifications {
		if n.ID == notificationID {
			found = true
			break
		}
	}
	if !found {
		return errors.New("notification not found or already read")
	}

	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
