package service

import (
	"booktrack/internal/achievements"
	"booktrack/internal/clock"
	"booktrack/internal/http-api/models"
	"booktrack/internal/http-api/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// AchievementService evaluates the static achievement catalog against
// a user's reading history and persists newly satisfied achievements
// exactly once. Idempotence comes from feeding the full persisted
// unlock set back into every evaluation, with the unique DB index as a
// backstop; the evaluator itself keeps no memory between calls.
type AchievementService interface {
	// Catalog returns the static definitions; read-only after load.
	Catalog() []achievements.Achievement
	Unlocked(ctx context.Context, userID string) ([]models.UnlockedAchievement, error)
	// Check evaluates every definition and returns all currently
	// satisfied ones (not just the newly unlocked subset). Persistence
	// and notifications happen only for the newly unlocked. A non-nil
	// error means at least one unlock write failed; the returned slice
	// is still the full satisfied set.
	Check(ctx context.Context, userID string) ([]achievements.Achievement, error)
}

type achievementService struct {
	catalog  []achievements.Achievement
	books    repository.BookRepository
	sessions repository.SessionRepository
	unlocked repository.AchievementRepository
	stats    StatsService
	notifier NotificationService
	clk      clock.Clock
	logger   *slog.Logger
}

func NewAchievementService(
	catalog []achievements.Achievement,
	books repository.BookRepository,
	sessions repository.SessionRepository,
	unlocked repository.AchievementRepository,
	stats StatsService,
	notifier NotificationService,
	clk clock.Clock,
	logger *slog.Logger,
) AchievementService {
	return &achievementService{
		catalog:  catalog,
		books:    books,
		sessions: sessions,
		unlocked: unlocked,
		stats:    stats,
		notifier: notifier,
		clk:      clk,
		logger:   logger,
	}
}

func (s *achievementService) Catalog() []achievements.Achievement {
	return s.catalog
}

func (s *achievementService) Unlocked(ctx context.Context, userID string) ([]models.UnlockedAchievement, error) {
	return s.unlocked.FetchAll(ctx, userID)
}

// readingAggregates are computed once per Check call, not once per
// definition.
type readingAggregates struct {
	booksFinished int
	booksAdded    int
	totalPages    int
	streak        int
	maxPagesInDay int
	daysByWeek    map[clock.WeekKey][]time.Time
}

func (s *achievementService) Check(ctx context.Context, userID string) ([]achievements.Achievement, error) {
	// display-path fetches fail open to empty history: achievements can
	// be withheld by a read failure, never granted by one
	books, err := s.books.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("achievement check: book fetch failed", "user_id", userID, "error", err)
		books = nil
	}
	sessions, err := s.sessions.FetchAll(ctx, userID)
	if err != nil {
		s.logger.Warn("achievement check: session fetch failed", "user_id", userID, "error", err)
		sessions = nil
	}
	persisted, err := s.unlocked.FetchAll(ctx, userID)
	if err != nil {
		s.logger.Warn("achievement check: unlocked fetch failed", "user_id", userID, "error", err)
		persisted = nil
	}
	alreadyUnlocked := make(map[string]bool, len(persisted))
	for _, u := range persisted {
		alreadyUnlocked[u.AchievementID] = true
	}

	heatmap := s.stats.Aggregate(sessions, nil)
	agg := s.aggregate(books, sessions, heatmap)

	var (
		satisfied []achievements.Achievement
		insertErr error
	)
	for _, def := range s.catalog {
		if !s.conditionMet(def, agg, books, sessions) {
			continue
		}
		satisfied = append(satisfied, def)

		if alreadyUnlocked[def.ID] {
			continue
		}

		unlock := &models.UnlockedAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			UnlockedAt:    s.clk.Now(),
		}
		if err := s.unlocked.Insert(ctx, unlock); err != nil {
			// a failed unlock write must not stop the remaining
			// evaluations; the unlock is retried on the next Check and
			// the unique index catches any replay. The error is still
			// surfaced to the caller once the loop completes.
			s.logger.Error("failed to persist unlocked achievement",
				"user_id", userID, "achievement_id", def.ID, "error", err)
			insertErr = errors.Join(insertErr, fmt.Errorf("persisting unlock %s: %w", def.ID, err))
			continue
		}
		alreadyUnlocked[def.ID] = true

		s.logger.Info("achievement unlocked", "user_id", userID, "achievement_id", def.ID)
		s.notifier.NotifyAchievementUnlocked(userID, def.Title, def.Message, def.ID)
	}

	return satisfied, insertErr
}

func (s *achievementService) aggregate(books []models.Book, sessions []models.ReadingSession, heatmap map[time.Time]int) readingAggregates {
	agg := readingAggregates{
		booksAdded: len(books),
		daysByWeek: make(map[clock.WeekKey][]time.Time),
	}
	for _, book := range books {
		if book.Status == models.BookStatusFinished {
			agg.booksFinished++
		}
	}
	for _, session := range sessions {
		agg.totalPages += session.PagesReadCount
	}
	for day, pages := range heatmap {
		if pages > agg.maxPagesInDay {
			agg.maxPagesInDay = pages
		}
		week := s.clk.WeekOf(day)
		agg.daysByWeek[week] = append(agg.daysByWeek[week], day)
	}
	agg.streak = s.stats.CurrentStreak(heatmap)
	return agg
}

func (s *achievementService) conditionMet(
	def achievements.Achievement,
	agg readingAggregates,
	books []models.Book,
	sessions []models.ReadingSession,
) bool {
	switch def.ConditionType {
	case achievements.ConditionConsecutiveDays:
		return agg.streak >= def.ConditionValue

	case achievements.ConditionPagesInSingleDay:
		return agg.maxPagesInDay >= def.ConditionValue

	case achievements.ConditionTotalPagesRead:
		return agg.totalPages >= def.ConditionValue

	case achievements.ConditionReadOnWeekend:
		for _, days := range agg.daysByWeek {
			hasSaturday, hasSunday := false, false
			for _, day := range days {
				switch s.clk.Weekday(day) {
				case 7:
					hasSaturday = true
				case 1:
					hasSunday = true
				}
			}
			if hasSaturday && hasSunday {
				return true
			}
		}
		return false

	case achievements.ConditionTotalBooksFinished:
		return agg.booksFinished >= def.ConditionValue

	case achievements.ConditionDaysReadInWeek:
		for _, days := range agg.daysByWeek {
			if len(days) >= def.ConditionValue {
				return true
			}
		}
		return false

	case achievements.ConditionFinishLargeBook:
		for _, book := range books {
			if book.Status == models.BookStatusFinished && book.TotalPages >= def.ConditionValue {
				return true
			}
		}
		return false

	case achievements.ConditionTotalBooksAdded:
		return agg.booksAdded >= def.ConditionValue

	case achievements.ConditionReadBeforeTime:
		for _, session := range sessions {
			if s.clk.HourOf(session.Date) < def.ConditionValue {
				return true
			}
		}
		return false

	case achievements.ConditionReadAfterTime:
		for _, session := range sessions {
			if s.clk.HourOf(session.Date) >= def.ConditionValue {
				return true
			}
		}
		return false
	}

	// the loader filters unknown types; reaching here means the enum
	// grew without a matching case
	s.logger.Error("unhandled achievement condition type", "condition_type", string(def.ConditionType))
	return false
}
