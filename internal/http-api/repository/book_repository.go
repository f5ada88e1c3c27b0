package repository

import (
	"booktrack/internal/http-api/models"
	"context"

	"gorm.io/gorm"
)

type bookRepository struct {
	db *gorm.DB
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, userID, bookID string) (*models.Book, error)
	FindByUser(ctx context.Context, userID string) ([]models.Book, error)
	Save(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, userID, bookID string) error
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) FindByID(ctx context.Context, userID, bookID string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, bookID).
		First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindByUser(ctx context.Context, userID string) ([]models.Book, error) {
	var books []models.Book
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_interaction DESC").
		Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Save(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// Delete removes a book and cascades to its reading sessions in one
// transaction.
func (r *bookRepository) Delete(ctx context.Context, userID, bookID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&models.ReadingSession{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND id = ?", userID, bookID).Delete(&models.Book{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
