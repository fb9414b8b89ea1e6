package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abontemps/classquest/internal/models"
)

type createStudentRequest struct {
	ID    string `json:"id"`
	Alias string `json:"alias" binding:"required"`
	XP    int    `json:"xp"`
	Team  string `json:"team_id"`
}

// ListStudents returns the roster.
// GET /api/v1/students.
func (h *Handler) ListStudents(c *gin.Context) {
	state := h.classService.State()
	c.JSON(http.StatusOK, gin.H{
		"students":       state.Students,
		"total_students": len(state.Students),
	})
}

// GetStudent returns a single student.
// GET /api/v1/students/:id.
func (h *Handler) GetStudent(c *gin.Context) {
	student := h.classService.State().StudentByID(c.Param("id"))
	if student == nil {
		h.errorResponse(c, http.StatusNotFound, "Student not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student})
}

// CreateStudent adds a student to the roster.
// POST /api/v1/students.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.ID == "" {
		req.ID = h.ids.NewID()
	}

	changed, err := h.classService.AddStudent(models.Student{
		ID:     req.ID,
		Alias:  req.Alias,
		XP:     req.XP,
		TeamID: req.Team,
	})
	if err != nil {
		h.log.Error().Err(err).Str("alias", req.Alias).Msg("Failed to add student")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to add student")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusConflict, "Student already exists")
		return
	}

	h.log.Info().Str("student_id", req.ID).Str("alias", req.Alias).Msg("Student added")
	c.JSON(http.StatusCreated, gin.H{
		"student":    h.classService.State().StudentByID(req.ID),
		"created_at": time.Now().UTC(),
	})
}

// DeleteStudent removes a student and their award history.
// DELETE /api/v1/students/:id.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	changed, err := h.classService.RemoveStudent(id)
	if err != nil {
		h.log.Error().Err(err).Str("student_id", id).Msg("Failed to remove student")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to remove student")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusNotFound, "Student not found")
		return
	}

	h.log.Info().Str("student_id", id).Msg("Student removed")
	c.Status(http.StatusNoContent)
}

type assignTeamRequest struct {
	TeamID string `json:"team_id"`
}

// AssignTeam moves a student to a team, or detaches them when team_id is empty.
// PUT /api/v1/students/:id/team.
func (h *Handler) AssignTeam(c *gin.Context) {
	id := c.Param("id")

	var req assignTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := h.classService.AssignStudentToTeam(id, req.TeamID)
	if err != nil {
		h.log.Error().Err(err).Str("student_id", id).Msg("Failed to assign team")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to assign team")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusNotFound, "Student or team not found, or nothing to change")
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": h.classService.State().StudentByID(id)})
}

// GetStudentStats returns statistics for a specific student.
// GET /api/v1/students/:id/stats?period=month.
func (h *Handler) GetStudentStats(c *gin.Context) {
	id := c.Param("id")

	period := c.DefaultQuery("period", "all_time")
	if err := h.validatePeriod(period); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.leaderboardService.GetStudentStats(c.Request.Context(), id, period)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Student not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"generated_at": time.Now().UTC(),
	})
}

type createTeamRequest struct {
	ID      string   `json:"id"`
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"member_ids"`
}

// ListTeams returns all teams.
// GET /api/v1/teams.
func (h *Handler) ListTeams(c *gin.Context) {
	state := h.classService.State()
	c.JSON(http.StatusOK, gin.H{
		"teams":       state.Teams,
		"total_teams": len(state.Teams),
	})
}

// CreateTeam adds a team.
// POST /api/v1/teams.
func (h *Handler) CreateTeam(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.ID == "" {
		req.ID = h.ids.NewID()
	}

	changed, err := h.classService.AddTeam(models.Team{
		ID:        req.ID,
		Name:      req.Name,
		MemberIDs: req.Members,
	})
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to add team")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to add team")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusConflict, "Team already exists")
		return
	}

	h.log.Info().Str("team_id", req.ID).Str("name", req.Name).Msg("Team added")
	c.JSON(http.StatusCreated, gin.H{
		"team":       h.classService.State().TeamByID(req.ID),
		"created_at": time.Now().UTC(),
	})
}

// DeleteTeam removes a team, detaching its members.
// DELETE /api/v1/teams/:id.
func (h *Handler) DeleteTeam(c *gin.Context) {
	id := c.Param("id")
	changed, err := h.classService.RemoveTeam(id)
	if err != nil {
		h.log.Error().Err(err).Str("team_id", id).Msg("Failed to remove team")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to remove team")
		return
	}
	if !changed {
		h.errorResponse(c, http.StatusNotFound, "Team not found")
		return
	}

	h.log.Info().Str("team_id", id).Msg("Team removed")
	c.Status(http.StatusNoContent)
}
