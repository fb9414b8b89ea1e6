package store

import (
	"github.com/abontemps/classquest/internal/engine"
	"github.com/abontemps/classquest/internal/models"
)

// Sanitize repairs a persisted or imported state into a snapshot that
// satisfies the engine's invariants: normalized settings, non-nil
// collections, recomputed levels, a bidirectional student<->team relation,
// no log entries referencing unknown students, and recomputed class
// progress. The engine assumes its inputs already pass through here.
func Sanitize(state *models.AppState) *models.AppState {
	out := &models.AppState{
		Version:  models.CurrentStateVersion,
		Settings: engine.NormalizeSettings(state.Settings),
	}

	byID := make(map[string]bool, len(state.Students))
	out.Students = make([]*models.Student, 0, len(state.Students))
	for _, s := range state.Students {
		if s == nil || s.ID == "" || byID[s.ID] {
			continue
		}
		byID[s.ID] = true
		fixed := *s
		if !out.Settings.AllowNegativeXP && fixed.XP < 0 {
			fixed.XP = 0
		}
		fixed.Level = engine.LevelFromXP(fixed.XP, out.Settings.XPPerLevel)
		if fixed.Streaks == nil {
			fixed.Streaks = map[string]int{}
		}
		if fixed.LastAwardedDay == nil {
			fixed.LastAwardedDay = map[string]string{}
		}
		if fixed.Badges == nil {
			fixed.Badges = []models.AwardedBadge{}
		}
		out.Students = append(out.Students, &fixed)
	}

	// Teams: drop dangling/duplicate members, then re-derive every student's
	// back-reference from the surviving member sets.
	teamIDs := make(map[string]bool, len(state.Teams))
	teamOf := make(map[string]string)
	out.Teams = make([]*models.Team, 0, len(state.Teams))
	for _, t := range state.Teams {
		if t == nil || t.ID == "" || teamIDs[t.ID] {
			continue
		}
		teamIDs[t.ID] = true
		fixed := models.Team{ID: t.ID, Name: t.Name, MemberIDs: []string{}}
		for _, memberID := range t.MemberIDs {
			if !byID[memberID] {
				continue
			}
			if _, taken := teamOf[memberID]; taken {
				continue // a student belongs to at most one team
			}
			teamOf[memberID] = t.ID
			fixed.MemberIDs = append(fixed.MemberIDs, memberID)
		}
		out.Teams = append(out.Teams, &fixed)
	}
	for _, s := range out.Students {
		s.TeamID = teamOf[s.ID]
	}

	questIDs := make(map[string]bool, len(state.Quests))
	out.Quests = make([]*models.Quest, 0, len(state.Quests))
	for _, q := range state.Quests {
		if q == nil || q.ID == "" || questIDs[q.ID] {
			continue
		}
		questIDs[q.ID] = true
		fixed := *q
		out.Quests = append(out.Quests, &fixed)
	}

	badgeIDs := make(map[string]bool, len(state.Badges))
	out.Badges = make([]*models.BadgeDefinition, 0, len(state.Badges))
	for _, b := range state.Badges {
		if b == nil || b.ID == "" || badgeIDs[b.ID] {
			continue
		}
		badgeIDs[b.ID] = true
		fixed := *b
		out.Badges = append(out.Badges, &fixed)
	}

	out.Log = make([]*models.LogEntry, 0, len(state.Log))
	for _, entry := range state.Log {
		if entry == nil || entry.ID == "" || !byID[entry.StudentID] {
			continue
		}
		fixed := *entry
		out.Log = append(out.Log, &fixed)
	}

	out.Progress = engine.ComputeClassProgress(out.Students, out.Settings)
	return out
}
