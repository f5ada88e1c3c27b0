package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookStatus string

const (
	BookStatusShelf    BookStatus = "shelf"
	BookStatusReading  BookStatus = "reading"
	BookStatusFinished BookStatus = "finished"
)

// Book is a tracked reading item. Invariant after every progress
// operation: 0 <= CurrentPage <= TotalPages, and Status is finished
// exactly when CurrentPage == TotalPages.
type Book struct {
	ID              string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Title           string     `gorm:"not null" json:"title"`
	Author          string     `json:"author"`
	TotalPages      int        `gorm:"not null" json:"total_pages"`
	CurrentPage     int        `gorm:"default:0" json:"current_page"`
	Status          BookStatus `gorm:"type:text;default:'shelf'" json:"status"`
	LastInteraction time.Time  `json:"last_interaction"`
	CreatedAt       time.Time  `json:"created_at"`

	// association; deleting a book deletes its sessions
	Sessions []ReadingSession `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE;" json:"sessions,omitempty"`
}

// BeforeCreate hook to set UUID before creating a Book
func (book *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	return
}

func (Book) TableName() string {
	return "books"
}
