package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadingSession is an append-only record of forward reading progress.
// PagesReadCount is always strictly positive; zero or backward deltas
// never produce a session. UserID is denormalized so the aggregator can
// read a user's history without joining through books.
type ReadingSession struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	BookID         string    `gorm:"type:uuid;not null;index" json:"book_id"`
	UserID         string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Date           time.Time `gorm:"not null;index" json:"date"`
	PagesReadCount int       `gorm:"not null" json:"pages_read_count"`
}

// BeforeCreate hook to set UUID before creating a ReadingSession
func (session *ReadingSession) BeforeCreate(tx *gorm.DB) (err error) {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	return
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}
