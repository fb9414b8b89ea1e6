package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abontemps/classquest/internal/models"
)

type createQuestRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" binding:"required"`
	XP         int    `json:"xp"`
	Type       string `json:"type" binding:"required"`
	Target     string `json:"target"`
	PersonalTo string `json:"personal_to"`
	Category   string `json:"category"`
	Active     *bool  `json:"active"`
}

// ListQuests returns the quest catalog.
// GET /api/v1/quests?active=true.
func (h *Handler) ListQuests(c *gin.Context) {
	state := h.classService.State()

	quests := state.Quests
	if c.Query("active") == "true" {
		active := make([]*models.Quest, 0, len(quests))
		for _, q := range quests {
			if q.Active {
				active = append(active, q)
			}
		}
		quests = active
	}

	c.JSON(http.StatusOK, gin.H{
		"quests":       quests,
		"total_quests": len(quests),
	})
}

// CreateQuest adds a quest to the catalog.
// POST /api/v1/quests.
func (h *Handler) CreateQuest(c *gin.Context) {
	var req createQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Type {
	case models.QuestDaily, models.QuestRepeatable, models.QuestOneoff:
	default:
		h.errorResponse(c, http.StatusBadRequest, "type must be daily, repeatable or oneoff")
		return
	}

	target := req.Target
	switch target {
	case "":
		target = models.TargetIndividual
	case models.TargetIndividual, models.TargetTeam:
	default:
		h.errorResponse(c, http.StatusBadRequest, "target must be individual or team")
		return
	}

	if req.ID == "" {
		req.ID = h.ids.NewID()
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	changed, err := h.classService.AddQuest(models.Quest{
		ID:         req.ID,
		Name:       req.Name,
		XP:         req.XP,
		Type:       req.Type,
		Target:     target,
		PersonalTo: req.PersonalTo,
		Category:   req.Category,
		Active:     active,
	})
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to add quest")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to add quest")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusConflict, "Quest already exists")
		return
	}

	h.log.Info().Str("quest_id", req.ID).Str("name", req.Name).Msg("Quest added")
	c.JSON(http.StatusCreated, gin.H{
		"quest":      h.classService.State().QuestByID(req.ID),
		"created_at": time.Now().UTC(),
	})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetQuestActive toggles whether a quest can be awarded.
// PUT /api/v1/quests/:id/active.
func (h *Handler) SetQuestActive(c *gin.Context) {
	id := c.Param("id")

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := h.classService.SetQuestActive(id, *req.Active)
	if err != nil {
		h.log.Error().Err(err).Str("quest_id", id).Msg("Failed to toggle quest")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to toggle quest")
		return
	}
	if !changed && h.classService.State().QuestByID(id) == nil {
		h.errorResponse(c, http.StatusNotFound, "Quest not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"quest": h.classService.State().QuestByID(id)})
}

// DeleteQuest removes a quest from the catalog. The award log keeps its
// entries; only future awards are affected.
// DELETE /api/v1/quests/:id.
func (h *Handler) DeleteQuest(c *gin.Context) {
	id := c.Param("id")
	changed, err := h.classService.RemoveQuest(id)
	if err != nil {
		h.log.Error().Err(err).Str("quest_id", id).Msg("Failed to remove quest")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to remove quest")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusNotFound, "Quest not found")
		return
	}

	h.log.Info().Str("quest_id", id).Msg("Quest removed")
	c.Status(http.StatusNoContent)
}

type createBadgeRequest struct {
	ID       string            `json:"id"`
	Name     string            `json:"name" binding:"required"`
	Category string            `json:"category"`
	Rule     *models.BadgeRule `json:"rule"`
}

// ListBadges returns the badge catalog.
// GET /api/v1/badges.
func (h *Handler) ListBadges(c *gin.Context) {
	state := h.classService.State()
	c.JSON(http.StatusOK, gin.H{
		"badges":       state.Badges,
		"total_badges": len(state.Badges),
	})
}

// CreateBadge adds a badge definition to the catalog.
// POST /api/v1/badges.
func (h *Handler) CreateBadge(c *gin.Context) {
	var req createBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Rule != nil {
		switch req.Rule.Type {
		case models.RuleTotalXP, models.RuleCategoryXP:
		default:
			h.errorResponse(c, http.StatusBadRequest, "rule type must be total_xp or category_xp")
			return
		}
		if req.Rule.Threshold <= 0 {
			h.errorResponse(c, http.StatusBadRequest, "rule threshold must be positive")
			return
		}
	}

	if req.ID == "" {
		req.ID = h.ids.NewID()
	}

	changed, err := h.classService.AddBadgeDefinition(models.BadgeDefinition{
		ID:       req.ID,
		Name:     req.Name,
		Category: req.Category,
		Rule:     req.Rule,
	})
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to add badge")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to add badge")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusConflict, "Badge already exists")
		return
	}

	h.log.Info().Str("badge_id", req.ID).Str("name", req.Name).Msg("Badge definition added")
	c.JSON(http.StatusCreated, gin.H{
		"badge":      h.classService.State().BadgeByID(req.ID),
		"created_at": time.Now().UTC(),
	})
}
