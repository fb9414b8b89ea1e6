package engine

import (
	"fmt"

	"github.com/abontemps/classquest/internal/models"
)

// Engine applies quest awards. It owns the two injected capabilities the core
// needs: a clock for day keys/timestamps and an id generator for the records
// it creates (log entries, badge awards).
type Engine struct {
	clock Clock
	ids   IDGenerator
}

// New creates an award engine with the given clock and id generator.
func New(clock Clock, ids IDGenerator) *Engine {
	return &Engine{clock: clock, ids: ids}
}

// StreakBadgeID returns the id of the auto-awarded streak badge for a quest.
func StreakBadgeID(questID string) string {
	return "streak-" + questID
}

// ApplyQuestAward applies one quest award to one student.
//
// Returns the input state unchanged (same pointer) when the award is illegal:
// unknown student, inactive quest, daily quest already awarded today, or
// oneoff quest already used. Otherwise returns a new snapshot with updated
// XP/level, streak bookkeeping, any newly crossed streak badge, a fresh log
// entry and recomputed class progress.
func (e *Engine) ApplyQuestAward(st *models.AppState, studentID string, quest *models.Quest, note string) *models.AppState {
	if quest == nil || !quest.Active {
		return st
	}
	student := st.StudentByID(studentID)
	if student == nil {
		return st
	}

	today := e.clock.Today()
	switch quest.Type {
	case models.QuestDaily:
		if student.LastAwardedDay[quest.ID] == today {
			return st
		}
	case models.QuestOneoff:
		// The streak counter doubles as the has-been-awarded flag.
		if student.Streaks[quest.ID] > 0 {
			return st
		}
	}

	settings := st.Settings
	newXP := student.XP + quest.XP
	if !settings.AllowNegativeXP && newXP < 0 {
		newXP = 0
	}

	updated := cloneStudent(student)
	updated.XP = newXP
	updated.Level = LevelFromXP(newXP, settings.XPPerLevel)

	if quest.Type == models.QuestDaily {
		yesterday := DayKey(e.clock.Now().AddDate(0, 0, -1))
		if updated.LastAwardedDay[quest.ID] == yesterday {
			updated.Streaks[quest.ID]++
		} else {
			updated.Streaks[quest.ID] = 1
		}
		e.maybeAwardStreakBadge(updated, quest, settings.StreakThresholdForBadge)
	} else {
		updated.Streaks[quest.ID]++
	}
	updated.LastAwardedDay[quest.ID] = today

	entry := &models.LogEntry{
		ID:        e.ids.NewID(),
		Timestamp: e.clock.Now().UnixMilli(),
		StudentID: student.ID,
		QuestID:   quest.ID,
		QuestName: quest.Name,
		XP:        newXP - student.XP, // amount actually applied, after clamp
		Note:      note,
		Category:  quest.Category,
	}

	out := cloneState(st)
	replaceStudent(out.Students, updated)
	out.Log = append(out.Log, entry)
	out.Progress = ComputeClassProgress(out.Students, settings)
	return out
}

// maybeAwardStreakBadge appends the per-quest streak badge when the streak
// reaches the configured threshold and the student does not hold it yet. The
// badge is awarded once per crossing, not re-awarded on later days.
func (e *Engine) maybeAwardStreakBadge(s *models.Student, quest *models.Quest, threshold int) {
	if s.Streaks[quest.ID] < threshold {
		return
	}
	badgeID := StreakBadgeID(quest.ID)
	if s.HasBadge(badgeID) {
		return
	}
	s.Badges = append(s.Badges, models.AwardedBadge{
		ID:        badgeID,
		Name:      fmt.Sprintf("%s %der Streak", quest.Name, threshold),
		AwardedAt: e.clock.Now().UnixMilli(),
	})
}

// AwardQuest resolves a quest's target and applies the award.
//
// Individual quests go to studentID, falling back to the quest's PersonalTo
// restriction when no student is given; a recipient that conflicts with
// PersonalTo is a no-op. Team quests go to every member of the team resolved
// from teamID, or from the given student's team when teamID is empty;
// PersonalTo skips non-matching members rather than aborting the batch. The
// input pointer comes back only when no member changed.
func (e *Engine) AwardQuest(st *models.AppState, studentID, teamID string, quest *models.Quest, note string) *models.AppState {
	if quest == nil || !quest.Active {
		return st
	}

	if quest.Target != models.TargetTeam {
		recipient := studentID
		if recipient == "" {
			recipient = quest.PersonalTo
		}
		if quest.PersonalTo != "" && recipient != quest.PersonalTo {
			return st
		}
		return e.ApplyQuestAward(st, recipient, quest, note)
	}

	team := st.TeamByID(teamID)
	if team == nil && studentID != "" {
		if s := st.StudentByID(studentID); s != nil && s.TeamID != "" {
			team = st.TeamByID(s.TeamID)
		}
	}
	if team == nil {
		return st
	}

	out := st
	for _, memberID := range team.MemberIDs {
		if quest.PersonalTo != "" && memberID != quest.PersonalTo {
			continue
		}
		out = e.ApplyQuestAward(out, memberID, quest, note)
	}
	return out
}

// UndoLastAward pops the most recent log entry and reverses exactly its XP
// delta on the affected student, re-clamping and recomputing the level.
//
// Known limitation: streaks, last-awarded days and badges earned by the undone
// award are left in place, so undo is an approximate inverse of an award, not
// an exact one. An empty log is a no-op.
func (e *Engine) UndoLastAward(st *models.AppState) *models.AppState {
	if len(st.Log) == 0 {
		return st
	}
	last := st.Log[len(st.Log)-1]

	out := cloneState(st)
	out.Log = out.Log[:len(out.Log)-1]

	if student := st.StudentByID(last.StudentID); student != nil {
		newXP := student.XP - last.XP
		if !st.Settings.AllowNegativeXP && newXP < 0 {
			newXP = 0
		}
		updated := cloneStudent(student)
		updated.XP = newXP
		updated.Level = LevelFromXP(newXP, st.Settings.XPPerLevel)
		replaceStudent(out.Students, updated)
	}

	out.Progress = ComputeClassProgress(out.Students, st.Settings)
	return out
}
