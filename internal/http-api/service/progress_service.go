package service

import (
	"booktrack/internal/cache"
	"booktrack/internal/clock"
	"booktrack/internal/http-api/models"
	"booktrack/internal/http-api/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrInvalidTotalPages = errors.New("total pages must be positive")
	ErrTitleRequired     = errors.New("title is required")
)

// ProgressService is the reading-progress ledger. It owns every
// mutation of a book's page position and status, and is the only
// writer of reading sessions.
type ProgressService interface {
	CreateBook(ctx context.Context, userID, title, author string, totalPages int) (*models.Book, error)
	GetBooks(ctx context.Context, userID string) ([]models.Book, error)
	GetBook(ctx context.Context, userID, bookID string) (*models.Book, error)
	UpdateBook(ctx context.Context, userID, bookID, title, author string, totalPages int) (*models.Book, error)
	DeleteBook(ctx context.Context, userID, bookID string) error
	UpdateProgress(ctx context.Context, userID, bookID string, newPage int) (*models.Book, error)
	FinishBook(ctx context.Context, userID, bookID string) (*models.Book, error)
}

type progressService struct {
	books    repository.BookRepository
	sessions repository.SessionRepository
	clk      clock.Clock
	heatmaps *cache.HeatmapCache // nil disables caching
	logger   *slog.Logger
}

func NewProgressService(
	books repository.BookRepository,
	sessions repository.SessionRepository,
	clk clock.Clock,
	heatmaps *cache.HeatmapCache,
	logger *slog.Logger,
) ProgressService {
	return &progressService{
		books:    books,
		sessions: sessions,
		clk:      clk,
		heatmaps: heatmaps,
		logger:   logger,
	}
}

func (s *progressService) CreateBook(ctx context.Context, userID, title, author string, totalPages int) (*models.Book, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if totalPages <= 0 {
		return nil, ErrInvalidTotalPages
	}

	book := &models.Book{
		UserID:          userID,
		Title:           title,
		Author:          author,
		TotalPages:      totalPages,
		CurrentPage:     0,
		Status:          models.BookStatusShelf,
		LastInteraction: s.clk.Now(),
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}
	return book, nil
}

func (s *progressService) GetBooks(ctx context.Context, userID string) ([]models.Book, error) {
	return s.books.FindByUser(ctx, userID)
}

func (s *progressService) GetBook(ctx context.Context, userID, bookID string) (*models.Book, error) {
	book, err := s.books.FindByID(ctx, userID, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	return book, err
}

// UpdateBook edits book metadata. Shrinking totalPages below the
// current position clamps the position and finishes the book; growing
// it past the position of a finished book moves the book back to
// reading, keeping status == finished equivalent to current == total.
func (s *progressService) UpdateBook(ctx context.Context, userID, bookID, title, author string, totalPages int) (*models.Book, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}
	if totalPages <= 0 {
		return nil, ErrInvalidTotalPages
	}

	book, err := s.GetBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	book.Title = title
	book.Author = author
	book.TotalPages = totalPages
	book.LastInteraction = s.clk.Now()

	if book.CurrentPage >= book.TotalPages {
		book.CurrentPage = book.TotalPages
		book.Status = models.BookStatusFinished
	} else if book.Status == models.BookStatusFinished {
		book.Status = models.BookStatusReading
	}

	if err := s.books.Save(ctx, book); err != nil {
		return book, fmt.Errorf("saving book: %w", err)
	}
	return book, nil
}

func (s *progressService) DeleteBook(ctx context.Context, userID, bookID string) error {
	err := s.books.Delete(ctx, userID, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	s.invalidateHeatmap(userID)
	return nil
}

// UpdateProgress applies a "user moved to page newPage" event.
//
// Let X = newPage and Y = the stored page; Z = X - Y. A negative Z is a
// backward correction: the position change is honored but no session is
// recorded. The page is then clamped to totalPages, finishing the book,
// or the status is forced back to reading (which also covers re-reading
// a finished book). A positive Z appends one session carrying the
// pre-clamp delta, so the heatmap sums pages actually advanced.
func (s *progressService) UpdateProgress(ctx context.Context, userID, bookID string, newPage int) (*models.Book, error) {
	book, err := s.GetBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.applyProgress(ctx, book, newPage); err != nil {
		// in-memory mutation is not rolled back on a failed persist;
		// the caller sees both the error and the mutated book
		return book, err
	}
	return book, nil
}

// FinishBook is the one-step variant of UpdateProgress with the target
// page pinned to the last page.
func (s *progressService) FinishBook(ctx context.Context, userID, bookID string) (*models.Book, error) {
	book, err := s.GetBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.applyProgress(ctx, book, book.TotalPages); err != nil {
		return book, err
	}
	return book, nil
}

func (s *progressService) applyProgress(ctx context.Context, book *models.Book, newPage int) error {
	delta := newPage - book.CurrentPage
	if delta < 0 {
		delta = 0
	}

	now := s.clk.Now()
	book.CurrentPage = newPage
	book.LastInteraction = now

	if book.CurrentPage >= book.TotalPages {
		book.CurrentPage = book.TotalPages
		book.Status = models.BookStatusFinished
	} else {
		book.Status = models.BookStatusReading
	}

	s.logger.Debug("progress update",
		"book_id", book.ID,
		"page", book.CurrentPage,
		"delta", delta,
		"status", string(book.Status))

	if err := s.books.Save(ctx, book); err != nil {
		return fmt.Errorf("saving book: %w", err)
	}

	if delta > 0 {
		session := &models.ReadingSession{
			BookID:         book.ID,
			UserID:         book.UserID,
			Date:           now,
			PagesReadCount: delta,
		}
		if err := s.sessions.Insert(ctx, session); err != nil {
			return fmt.Errorf("recording session: %w", err)
		}
	}

	s.invalidateHeatmap(book.UserID)
	return nil
}

func (s *progressService) invalidateHeatmap(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.heatmaps.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("heatmap cache invalidation failed", "user_id", userID, "error", err)
	}
}
