package leaderboard

import (
	"context"
	"fmt"

	"github.com/abontemps/classquest/internal/engine"
	"github.com/abontemps/classquest/internal/models"
)

// StudentStats represents comprehensive statistics for a student.
type StudentStats struct {
	StudentID  string                `json:"student_id"`
	Alias      string                `json:"alias"`
	Team       string                `json:"team"`
	Period     string                `json:"period"`
	XP         int                   `json:"xp"`
	Level      int                   `json:"level"`
	Badges     []models.AwardedBadge `json:"badges"`
	Streaks    map[string]int        `json:"streaks"`
	GlobalRank int                   `json:"global_rank"`
	TeamRank   int                   `json:"team_rank"`
	XPToNext   int                   `json:"xp_to_next_level"`
	CategoryXP map[string]int        `json:"category_xp"`
}

// GetStudentStats returns comprehensive statistics for a student.
func (s *Service) GetStudentStats(ctx context.Context, studentID, period string) (*StudentStats, error) {
	state := s.states.State()

	student := state.StudentByID(studentID)
	if student == nil {
		return nil, fmt.Errorf("student %s not found", studentID)
	}

	stats := &StudentStats{
		StudentID:  studentID,
		Alias:      student.Alias,
		Team:       s.teamName(state, student.TeamID),
		Period:     period,
		XP:         student.XP,
		Level:      student.Level,
		Badges:     student.Badges,
		Streaks:    student.Streaks,
		XPToNext:   xpToNextLevel(student.XP, state.Settings.XPPerLevel),
		CategoryXP: engine.StudentCategoryXP(state, student),
	}

	rank, err := s.GetStudentRank(ctx, studentID, period, "xp")
	if err == nil {
		stats.GlobalRank = rank
	}

	if student.TeamID != "" {
		teamBoard, err := s.GetTeamLeaderboard(ctx, student.TeamID, period, "xp", 0)
		if err == nil {
			for _, entry := range teamBoard {
				if entry.StudentID == studentID {
					stats.TeamRank = entry.Rank
					break
				}
			}
		}
	}

	return stats, nil
}

func xpToNextLevel(xp, xpPerLevel int) int {
	if xpPerLevel <= 0 {
		return 0
	}
	if xp < 0 {
		xp = 0
	}
	return xpPerLevel - xp%xpPerLevel
}
