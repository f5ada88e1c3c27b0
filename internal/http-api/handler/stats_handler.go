package handler

import (
	"booktrack/internal/http-api/service"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// RegisterRoutes registers the statistics routes
func (h *StatsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/heatmap", h.Heatmap)
	rg.GET("/summary", h.Summary)
}

// Heatmap returns the per-day page totals, optionally limited to the
// trailing ?months=N window. Day keys are serialized as "2006-01-02".
func (h *StatsHandler) Heatmap(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	months := 0
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be a non-negative integer"})
			return
		}
		months = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	heatmap := h.statsService.Heatmap(ctx, userID.(string), months)

	entries := make(map[string]int, len(heatmap))
	for day, pages := range heatmap {
		entries[day.Format("2006-01-02")] = pages
	}

	c.JSON(http.StatusOK, gin.H{
		"heatmap":        entries,
		"current_streak": h.statsService.CurrentStreak(heatmap),
	})
}

func (h *StatsHandler) Summary(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, h.statsService.Summary(ctx, userID.(string)))
}
