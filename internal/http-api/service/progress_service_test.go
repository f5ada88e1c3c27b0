package service

import (
	"booktrack/internal/clock"
	"booktrack/internal/http-api/models"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockBookRepository mocks the BookRepository interface
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) FindByID(ctx context.Context, userID, bookID string) (*models.Book, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) FindByUser(ctx context.Context, userID string) ([]models.Book, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookRepository) Save(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) Delete(ctx context.Context, userID, bookID string) error {
	args := m.Called(ctx, userID, bookID)
	return args.Error(0)
}

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Insert(ctx context.Context, session *models.ReadingSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FetchAll(ctx context.Context, userID string) ([]models.ReadingSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReadingSession), args.Error(1)
}

func (m *MockSessionRepository) FetchSince(ctx context.Context, userID string, since time.Time) ([]models.ReadingSession, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReadingSession), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testNow = time.Date(2025, 6, 10, 21, 30, 0, 0, time.UTC)

func newProgressService(books *MockBookRepository, sessions *MockSessionRepository) ProgressService {
	return NewProgressService(books, sessions, clock.NewFixedClock(testNow), nil, testLogger())
}

func testBook(current, total int, status models.BookStatus) *models.Book {
	return &models.Book{
		ID:          "book-id",
		UserID:      "user-id",
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		TotalPages:  total,
		CurrentPage: current,
		Status:      status,
	}
}

func TestUpdateProgress_ForwardRecordsSession(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(0, 100, models.BookStatusShelf)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)
	sessions.On("Insert", mock.Anything, mock.AnythingOfType("*models.ReadingSession")).Return(nil)

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "book-id", 50)

	assert.NoError(t, err)
	assert.Equal(t, 50, updated.CurrentPage)
	assert.Equal(t, models.BookStatusReading, updated.Status)
	assert.Equal(t, testNow, updated.LastInteraction)

	session := sessions.Calls[0].Arguments.Get(1).(*models.ReadingSession)
	assert.Equal(t, 50, session.PagesReadCount)
	assert.Equal(t, "book-id", session.BookID)
	assert.Equal(t, "user-id", session.UserID)
	assert.Equal(t, testNow, session.Date)
	books.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestUpdateProgress_BackwardCorrectionSkipsSession(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(50, 100, models.BookStatusReading)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "book-id", 40)

	assert.NoError(t, err)
	assert.Equal(t, 40, updated.CurrentPage)
	assert.Equal(t, models.BookStatusReading, updated.Status)
	sessions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	books.AssertExpectations(t)
}

func TestUpdateProgress_ReachingLastPageFinishes(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(90, 100, models.BookStatusReading)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)
	sessions.On("Insert", mock.Anything, mock.AnythingOfType("*models.ReadingSession")).Return(nil)

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "book-id", 100)

	assert.NoError(t, err)
	assert.Equal(t, 100, updated.CurrentPage)
	assert.Equal(t, models.BookStatusFinished, updated.Status)

	session := sessions.Calls[0].Arguments.Get(1).(*models.ReadingSession)
	assert.Equal(t, 10, session.PagesReadCount)
}

func TestUpdateProgress_OvershootClampsButKeepsRealDelta(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(90, 100, models.BookStatusReading)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)
	sessions.On("Insert", mock.Anything, mock.AnythingOfType("*models.ReadingSession")).Return(nil)

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "book-id", 120)

	assert.NoError(t, err)
	// position clamps to the last page but the session keeps the
	// pre-clamp delta
	assert.Equal(t, 100, updated.CurrentPage)
	assert.Equal(t, models.BookStatusFinished, updated.Status)

	session := sessions.Calls[0].Arguments.Get(1).(*models.ReadingSession)
	assert.Equal(t, 30, session.PagesReadCount)
}

func TestUpdateProgress_SamePageRecomputesStatusOnly(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(50, 100, models.BookStatusShelf)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "book-id", 50)

	assert.NoError(t, err)
	assert.Equal(t, 50, updated.CurrentPage)
	assert.Equal(t, models.BookStatusReading, updated.Status)
	sessions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestUpdateProgress_ForwardOnFinishedBookRestartsReading(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(100, 100, models.BookStatusFinished)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "book-id", 10)

	assert.NoError(t, err)
	assert.Equal(t, 10, updated.CurrentPage)
	assert.Equal(t, models.BookStatusReading, updated.Status)
	sessions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestUpdateProgress_SaveFailureSurfacesButKeepsMutation(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(10, 100, models.BookStatusReading)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(errors.New("disk full"))

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "book-id", 20)

	assert.Error(t, err)
	// the in-memory object and the store may diverge on save failure;
	// the mutation is reported, not rolled back
	assert.Equal(t, 20, updated.CurrentPage)
	sessions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestUpdateProgress_BookNotFound(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	books.On("FindByID", mock.Anything, "user-id", "missing").Return(nil, gorm.ErrRecordNotFound)

	updated, err := svc.UpdateProgress(context.Background(), "user-id", "missing", 10)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestFinishBook_RecordsRemainingPages(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(60, 250, models.BookStatusReading)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)
	sessions.On("Insert", mock.Anything, mock.AnythingOfType("*models.ReadingSession")).Return(nil)

	updated, err := svc.FinishBook(context.Background(), "user-id", "book-id")

	assert.NoError(t, err)
	assert.Equal(t, 250, updated.CurrentPage)
	assert.Equal(t, models.BookStatusFinished, updated.Status)

	session := sessions.Calls[0].Arguments.Get(1).(*models.ReadingSession)
	assert.Equal(t, 190, session.PagesReadCount)
}

func TestFinishBook_AlreadyFinishedSkipsSession(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(250, 250, models.BookStatusFinished)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)

	updated, err := svc.FinishBook(context.Background(), "user-id", "book-id")

	assert.NoError(t, err)
	assert.Equal(t, models.BookStatusFinished, updated.Status)
	sessions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateBook_DefaultsToShelf(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	books.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).Return(nil)

	book, err := svc.CreateBook(context.Background(), "user-id", "Dune", "Frank Herbert", 412)

	assert.NoError(t, err)
	assert.Equal(t, models.BookStatusShelf, book.Status)
	assert.Equal(t, 0, book.CurrentPage)
	assert.Equal(t, 412, book.TotalPages)
	assert.Equal(t, testNow, book.LastInteraction)
	books.AssertExpectations(t)
}

func TestCreateBook_RejectsNonPositiveTotal(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	_, err := svc.CreateBook(context.Background(), "user-id", "Empty", "", 0)
	assert.ErrorIs(t, err, ErrInvalidTotalPages)

	_, err = svc.CreateBook(context.Background(), "user-id", "", "", 100)
	assert.ErrorIs(t, err, ErrTitleRequired)
	books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateBook_ShrinkingTotalFinishesBook(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(80, 100, models.BookStatusReading)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)

	updated, err := svc.UpdateBook(context.Background(), "user-id", "book-id", book.Title, book.Author, 70)

	assert.NoError(t, err)
	assert.Equal(t, 70, updated.CurrentPage)
	assert.Equal(t, models.BookStatusFinished, updated.Status)
}

func TestUpdateBook_GrowingTotalReopensFinishedBook(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	book := testBook(100, 100, models.BookStatusFinished)
	books.On("FindByID", mock.Anything, "user-id", "book-id").Return(book, nil)
	books.On("Save", mock.Anything, book).Return(nil)

	updated, err := svc.UpdateBook(context.Background(), "user-id", "book-id", book.Title, book.Author, 150)

	assert.NoError(t, err)
	assert.Equal(t, 100, updated.CurrentPage)
	assert.Equal(t, models.BookStatusReading, updated.Status)
}

func TestDeleteBook_NotFound(t *testing.T) {
	books := new(MockBookRepository)
	sessions := new(MockSessionRepository)
	svc := newProgressService(books, sessions)

	books.On("Delete", mock.Anything, "user-id", "missing").Return(gorm.ErrRecordNotFound)

	err := svc.DeleteBook(context.Background(), "user-id", "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}
