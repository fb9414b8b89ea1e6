// Package rest provides the REST API for the classroom dashboard. It exposes
// endpoints for the roster, quest and badge catalogs, awards, leaderboards
// and the weekly show payload.
package rest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abontemps/classquest/internal/models"
	"github.com/abontemps/classquest/internal/service/awards"
	"github.com/abontemps/classquest/internal/service/leaderboard"
	"github.com/abontemps/classquest/internal/store"
	"github.com/abontemps/classquest/pkg/logger"
)

// ClassService interface for state transitions and snapshot access.
type ClassService interface {
	State() *models.AppState
	Award(ctx context.Context, studentID, teamID, questID, note string) (bool, error)
	Undo(ctx context.Context) (bool, error)
	AddStudent(student models.Student) (bool, error)
	RemoveStudent(studentID string) (bool, error)
	AddTeam(team models.Team) (bool, error)
	RemoveTeam(teamID string) (bool, error)
	AssignStudentToTeam(studentID, teamID string) (bool, error)
	AddQuest(quest models.Quest) (bool, error)
	SetQuestActive(questID string, active bool) (bool, error)
	RemoveQuest(questID string) (bool, error)
	AddBadgeDefinition(def models.BadgeDefinition) (bool, error)
	Export() ([]byte, error)
	Import(payload []byte) error
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, period, metric string, limit int) ([]leaderboard.Entry, error)
	GetTeamLeaderboard(ctx context.Context, teamID, period, metric string, limit int) ([]leaderboard.Entry, error)
	GetStudentStats(ctx context.Context, studentID, period string) (*leaderboard.StudentStats, error)
}

// AwardHistory interface for award log queries.
type AwardHistory interface {
	RecentAwards(limit int) ([]store.AwardLogRecord, error)
}

// IDGenerator mints ids for entities created without one.
type IDGenerator interface {
	NewID() string
}

// Handler handles dashboard API requests.
type Handler struct {
	classService       ClassService
	leaderboardService LeaderboardService
	history            AwardHistory
	ids                IDGenerator
	log                *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	classService *awards.Service,
	leaderboardService *leaderboard.Service,
	history *store.StateStore,
	ids IDGenerator,
	log *logger.Logger,
) *Handler {
	return &Handler{
		classService:       classService,
		leaderboardService: leaderboardService,
		history:            history,
		ids:                ids,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new API handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	classService ClassService,
	leaderboardService LeaderboardService,
	history AwardHistory,
	ids IDGenerator,
	log *logger.Logger,
) *Handler {
	return &Handler{
		classService:       classService,
		leaderboardService: leaderboardService,
		history:            history,
		ids:                ids,
		log:                log,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/class", h.GetClass)
		v1.GET("/class/progress", h.GetClassProgress)
		v1.GET("/class/show", h.GetWeeklyShow)
		v1.GET("/class/export", h.ExportState)
		v1.POST("/class/import", h.ImportState)

		v1.GET("/students", h.ListStudents)
		v1.POST("/students", h.CreateStudent)
		v1.GET("/students/:id", h.GetStudent)
		v1.DELETE("/students/:id", h.DeleteStudent)
		v1.PUT("/students/:id/team", h.AssignTeam)
		v1.GET("/students/:id/stats", h.GetStudentStats)

		v1.GET("/teams", h.ListTeams)
		v1.POST("/teams", h.CreateTeam)
		v1.DELETE("/teams/:id", h.DeleteTeam)

		v1.GET("/quests", h.ListQuests)
		v1.POST("/quests", h.CreateQuest)
		v1.PUT("/quests/:id/active", h.SetQuestActive)
		v1.DELETE("/quests/:id", h.DeleteQuest)

		v1.GET("/badges", h.ListBadges)
		v1.POST("/badges", h.CreateBadge)

		v1.POST("/awards", h.CreateAward)
		v1.POST("/awards/undo", h.UndoAward)
		v1.GET("/awards", h.ListAwards)

		v1.GET("/leaderboard", h.GetLeaderboard)
		v1.GET("/leaderboard/:team", h.GetTeamLeaderboard)
	}
}

// Helper functions

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 1000 {
		return 0, fmt.Errorf("limit cannot exceed 1000")
	}

	return limit, nil
}

// validatePeriod validates the period parameter.
func (h *Handler) validatePeriod(period string) error {
	validPeriods := map[string]bool{
		"day":      true,
		"week":     true,
		"month":    true,
		"all_time": true,
	}

	if !validPeriods[period] {
		return fmt.Errorf("invalid period: %s (valid: day, week, month, all_time)", period)
	}
	return nil
}

// validateMetric validates the metric parameter.
func (h *Handler) validateMetric(metric string) error {
	validMetrics := map[string]bool{
		"xp":     true,
		"level":  true,
		"badges": true,
		"streak": true,
	}

	if !validMetrics[metric] {
		return fmt.Errorf("invalid metric: %s (valid: xp, level, badges, streak)", metric)
	}
	return nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
