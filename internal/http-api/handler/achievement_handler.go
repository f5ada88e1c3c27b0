package handler

import (
	"booktrack/internal/http-api/models"
	"booktrack/internal/http-api/service"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	achievementService service.AchievementService
}

func NewAchievementHandler(achievementService service.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// RegisterRoutes registers the achievement routes
func (h *AchievementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unlocked", h.Unlocked)
	rg.POST("/check", h.Check)
}

func (h *AchievementHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"achievements": h.achievementService.Catalog()})
}

// Unlocked lists the persisted unlock facts. This is a display read, so
// a fetch failure degrades to an empty list instead of an error page.
func (h *AchievementHandler) Unlocked(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	unlocked, err := h.achievementService.Unlocked(ctx, userID.(string))
	if err != nil {
		unlocked = []models.UnlockedAchievement{}
	}

	c.JSON(http.StatusOK, gin.H{"unlocked": unlocked})
}

func (h *AchievementHandler) Check(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	satisfied, err := h.achievementService.Check(ctx, userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": satisfied})
}
