package repository

import (
	"booktrack/internal/http-api/models"
	"context"
	"time"

	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

// SessionRepository is the append-only session store. Sessions are only
// ever inserted by the progress ledger and read back in bulk by the
// aggregator; no ordering is guaranteed, the aggregator re-groups.
type SessionRepository interface {
	Insert(ctx context.Context, session *models.ReadingSession) error
	FetchAll(ctx context.Context, userID string) ([]models.ReadingSession, error)
	FetchSince(ctx context.Context, userID string, since time.Time) ([]models.ReadingSession, error)
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, session *models.ReadingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FetchAll(ctx context.Context, userID string) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) FetchSince(ctx context.Context, userID string, since time.Time) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
