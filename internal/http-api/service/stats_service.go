package service

import (
	"booktrack/internal/cache"
	"booktrack/internal/clock"
	"booktrack/internal/http-api/models"
	"booktrack/internal/http-api/repository"
	"context"
	"fmt"
	"log/slog"
	"time"
)

const dayKeyLayout = "2006-01-02"

// Summary bundles the dashboard aggregates derived from a user's
// reading history.
type Summary struct {
	TotalBooksAdded     int `json:"total_books_added"`
	TotalBooksFinished  int `json:"total_books_finished"`
	TotalPagesRead      int `json:"total_pages_read"`
	CurrentStreak       int `json:"current_streak"`
	MaxPagesInSingleDay int `json:"max_pages_in_single_day"`
}

// StatsService derives the heatmap and streak from the session store.
// All of its read paths fail open: a fetch error degrades to empty
// data, never to a failed dashboard.
type StatsService interface {
	// Aggregate buckets sessions by start-of-day and sums pages read.
	// Pure: same sessions, same window, same calendar -> same map.
	Aggregate(sessions []models.ReadingSession, windowStart *time.Time) map[time.Time]int
	// Heatmap fetches and aggregates a user's sessions. months > 0
	// restricts to a trailing window; months <= 0 means all history.
	Heatmap(ctx context.Context, userID string, months int) map[time.Time]int
	// CurrentStreak counts consecutive reading days ending today or
	// yesterday; anything older means the streak is already broken.
	CurrentStreak(heatmap map[time.Time]int) int
	Summary(ctx context.Context, userID string) Summary
}

type statsService struct {
	books    repository.BookRepository
	sessions repository.SessionRepository
	clk      clock.Clock
	heatmaps *cache.HeatmapCache // nil disables caching
	logger   *slog.Logger
}

func NewStatsService(
	books repository.BookRepository,
	sessions repository.SessionRepository,
	clk clock.Clock,
	heatmaps *cache.HeatmapCache,
	logger *slog.Logger,
) StatsService {
	return &statsService{
		books:    books,
		sessions: sessions,
		clk:      clk,
		heatmaps: heatmaps,
		logger:   logger,
	}
}

func (s *statsService) Aggregate(sessions []models.ReadingSession, windowStart *time.Time) map[time.Time]int {
	heatmap := make(map[time.Time]int)
	for _, session := range sessions {
		if windowStart != nil && session.Date.Before(*windowStart) {
			continue
		}
		day := s.clk.StartOfDay(session.Date)
		heatmap[day] += session.PagesReadCount
	}
	return heatmap
}

func (s *statsService) Heatmap(ctx context.Context, userID string, months int) map[time.Time]int {
	window := "all"
	if months > 0 {
		window = fmt.Sprintf("%dm", months)
	}

	if cached, ok := s.heatmaps.Get(ctx, userID, window); ok {
		return s.decodeHeatmap(cached)
	}

	var (
		sessions []models.ReadingSession
		err      error
	)
	if months > 0 {
		since := s.clk.StartOfDay(s.clk.Now()).AddDate(0, -months, 0)
		sessions, err = s.sessions.FetchSince(ctx, userID, since)
	} else {
		sessions, err = s.sessions.FetchAll(ctx, userID)
	}
	if err != nil {
		// stale or empty data beats a crashed dashboard read
		s.logger.Warn("heatmap fetch failed, serving empty map", "user_id", userID, "error", err)
		return map[time.Time]int{}
	}

	heatmap := s.Aggregate(sessions, nil)

	if err := s.heatmaps.Set(ctx, userID, window, s.encodeHeatmap(heatmap)); err != nil {
		s.logger.Warn("heatmap cache write failed", "user_id", userID, "error", err)
	}
	return heatmap
}

func (s *statsService) CurrentStreak(heatmap map[time.Time]int) int {
	if len(heatmap) == 0 {
		return 0
	}

	var lastDay time.Time
	for day := range heatmap {
		if day.After(lastDay) {
			lastDay = day
		}
	}

	today := s.clk.StartOfDay(s.clk.Now())
	yesterday := s.clk.AddDays(today, -1)
	if !lastDay.Equal(today) && !lastDay.Equal(yesterday) {
		return 0
	}

	streak := 0
	for day := lastDay; ; day = s.clk.AddDays(day, -1) {
		if _, ok := heatmap[day]; !ok {
			break
		}
		streak++
	}
	return streak
}

func (s *statsService) Summary(ctx context.Context, userID string) Summary {
	var summary Summary

	books, err := s.books.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("summary book fetch failed", "user_id", userID, "error", err)
		books = nil
	}
	summary.TotalBooksAdded = len(books)
	for _, book := range books {
		if book.Status == models.BookStatusFinished {
			summary.TotalBooksFinished++
		}
	}

	heatmap := s.Heatmap(ctx, userID, 0)
	for _, pages := range heatmap {
		summary.TotalPagesRead += pages
		if pages > summary.MaxPagesInSingleDay {
			summary.MaxPagesInSingleDay = pages
		}
	}
	summary.CurrentStreak = s.CurrentStreak(heatmap)

	return summary
}

func (s *statsService) encodeHeatmap(heatmap map[time.Time]int) map[string]int {
	encoded := make(map[string]int, len(heatmap))
	for day, pages := range heatmap {
		encoded[day.Format(dayKeyLayout)] = pages
	}
	return encoded
}

func (s *statsService) decodeHeatmap(encoded map[string]int) map[time.Time]int {
	heatmap := make(map[time.Time]int, len(encoded))
	loc := s.clk.Location()
	for key, pages := range encoded {
		day, err := time.ParseInLocation(dayKeyLayout, key, loc)
		if err != nil {
			continue
		}
		heatmap[day] = pages
	}
	return heatmap
}
