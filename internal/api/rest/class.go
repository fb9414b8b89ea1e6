package rest

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetClass returns the class settings and a roster summary.
// GET /api/v1/class.
func (h *Handler) GetClass(c *gin.Context) {
	state := h.classService.State()
	c.JSON(http.StatusOK, gin.H{
		"settings": state.Settings,
		"progress": state.Progress,
		"counts": gin.H{
			"students": len(state.Students),
			"teams":    len(state.Teams),
			"quests":   len(state.Quests),
			"badges":   len(state.Badges),
			"awards":   len(state.Log),
		},
	})
}

// GetClassProgress returns the class milestone progress.
// GET /api/v1/class/progress.
func (h *Handler) GetClassProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"progress":     h.classService.State().Progress,
		"generated_at": time.Now().UTC(),
	})
}

// weeklyBadge is one badge earned during the show window.
type weeklyBadge struct {
	StudentID string `json:"student_id"`
	Alias     string `json:"alias"`
	BadgeID   string `json:"badge_id"`
	BadgeName string `json:"badge_name"`
	AwardedAt int64  `json:"awarded_at"`
}

// GetWeeklyShow returns the payload for the Friday projection: class
// progress, the week's top earners and badges earned during the week.
// GET /api/v1/class/show.
func (h *Handler) GetWeeklyShow(c *gin.Context) {
	state := h.classService.State()

	top, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), "week", "xp", 3)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build weekly leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to build weekly show")
		return
	}

	cutoff := time.Now().Add(-7 * 24 * time.Hour).UnixMilli()
	newBadges := make([]weeklyBadge, 0)
	for _, student := range state.Students {
		for _, badge := range student.Badges {
			if badge.AwardedAt >= cutoff {
				newBadges = append(newBadges, weeklyBadge{
					StudentID: student.ID,
					Alias:     student.Alias,
					BadgeID:   badge.ID,
					BadgeName: badge.Name,
					AwardedAt: badge.AwardedAt,
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"class_name":   state.Settings.ClassName,
		"progress":     state.Progress,
		"top_earners":  top,
		"new_badges":   newBadges,
		"generated_at": time.Now().UTC(),
	})
}

// ExportState streams the full class state as JSON for backup.
// GET /api/v1/class/export.
func (h *Handler) ExportState(c *gin.Context) {
	payload, err := h.classService.Export()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to export state")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to export state")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="classquest-export.json"`)
	c.Data(http.StatusOK, "application/json", payload)
}

// ImportState replaces the class state with an uploaded backup.
// POST /api/v1/class/import.
func (h *Handler) ImportState(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 10<<20))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.classService.Import(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to import state")
		h.errorResponse(c, http.StatusBadRequest, "Invalid state payload")
		return
	}

	state := h.classService.State()
	h.log.Info().Int("students", len(state.Students)).Msg("State imported via API")
	c.JSON(http.StatusOK, gin.H{
		"imported": true,
		"counts": gin.H{
			"students": len(state.Students),
			"awards":   len(state.Log),
		},
	})
}

// GetLeaderboard returns the class leaderboard.
// GET /api/v1/leaderboard?period=week&metric=xp&limit=10.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	period := c.DefaultQuery("period", "all_time")
	metric := c.DefaultQuery("metric", "xp")
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validatePeriod(period); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validateMetric(metric); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), period, metric, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":   entries,
		"period":        period,
		"metric":        metric,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}

// GetTeamLeaderboard returns the leaderboard for a specific team.
// GET /api/v1/leaderboard/:team?period=week&metric=xp&limit=10.
func (h *Handler) GetTeamLeaderboard(c *gin.Context) {
	teamID := c.Param("team")
	if h.classService.State().TeamByID(teamID) == nil {
		h.errorResponse(c, http.StatusNotFound, "Team not found")
		return
	}

	period := c.DefaultQuery("period", "all_time")
	metric := c.DefaultQuery("metric", "xp")
	limit, err := h.parseLimit(c, 10)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validatePeriod(period); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validateMetric(metric); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetTeamLeaderboard(c.Request.Context(), teamID, period, metric, limit)
	if err != nil {
		h.log.Error().Err(err).Str("team_id", teamID).Msg("Failed to get team leaderboard")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve team leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team_id":       teamID,
		"leaderboard":   entries,
		"period":        period,
		"metric":        metric,
		"total_entries": len(entries),
		"generated_at":  time.Now().UTC(),
	})
}
