package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createAwardRequest struct {
	StudentID string `json:"student_id"`
	TeamID    string `json:"team_id"`
	QuestID   string `json:"quest_id" binding:"required"`
	Note      string `json:"note"`
}

// CreateAward applies a quest award to a student or a team.
// POST /api/v1/awards.
func (h *Handler) CreateAward(c *gin.Context) {
	var req createAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := h.classService.Award(c.Request.Context(), req.StudentID, req.TeamID, req.QuestID, req.Note)
	if err != nil {
		h.log.Error().Err(err).Str("quest_id", req.QuestID).Msg("Failed to apply award")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to apply award")
		return
	}

	state := h.classService.State()
	if !changed {
		// Inactive quest, unknown recipient, daily already taken today and
		// the like. Not an error, the client just sees nothing was applied.
		c.JSON(http.StatusOK, gin.H{
			"applied":  false,
			"progress": state.Progress,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applied":    true,
		"entry":      state.Log[len(state.Log)-1],
		"progress":   state.Progress,
		"applied_at": time.Now().UTC(),
	})
}

// UndoAward reverses the most recent award.
// POST /api/v1/awards/undo.
func (h *Handler) UndoAward(c *gin.Context) {
	changed, err := h.classService.Undo(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to undo award")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to undo award")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"undone":   changed,
		"progress": h.classService.State().Progress,
	})
}

// ListAwards returns the most recent award log entries, newest first.
// GET /api/v1/awards?limit=50.
func (h *Handler) ListAwards(c *gin.Context) {
	limit, err := h.parseLimit(c, 50)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.history.RecentAwards(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list awards")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve award log")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"awards":       records,
		"total_awards": len(records),
	})
}
