package engine

import "github.com/abontemps/classquest/internal/models"

// Roster mutation helpers. All of them follow the engine's no-op contract:
// the identical input pointer comes back when nothing changed, and every
// mutation path recomputes class progress and keeps the student<->team
// membership relation bidirectional.

// AddStudent adds a student to the roster. Duplicate or empty ids are no-ops.
// Initial XP passes through the same clamp policy as awards and the level is
// computed, never trusted from the input. A supplied TeamID is honored only
// when the team exists; otherwise the student starts unattached.
func AddStudent(st *models.AppState, student models.Student) *models.AppState {
	if student.ID == "" || st.StudentByID(student.ID) != nil {
		return st
	}

	added := cloneStudent(&student)
	if !st.Settings.AllowNegativeXP && added.XP < 0 {
		added.XP = 0
	}
	added.Level = LevelFromXP(added.XP, st.Settings.XPPerLevel)

	out := cloneState(st)
	if added.TeamID != "" {
		team := st.TeamByID(added.TeamID)
		if team == nil {
			added.TeamID = ""
		} else {
			joined := cloneTeam(team)
			joined.MemberIDs = append(joined.MemberIDs, added.ID)
			replaceTeam(out.Teams, joined)
		}
	}
	out.Students = append(out.Students, added)
	out.Progress = ComputeClassProgress(out.Students, st.Settings)
	return out
}

// AddTeam adds a team. Duplicate or empty ids are no-ops. Supplied member ids
// are filtered to existing students and de-duplicated; each surviving member
// is detached from its previous team (a student belongs to at most one) and
// attached to the new one, both sides updated in the same transition.
func AddTeam(st *models.AppState, team models.Team) *models.AppState {
	if team.ID == "" || st.TeamByID(team.ID) != nil {
		return st
	}

	out := cloneState(st)

	seen := make(map[string]bool, len(team.MemberIDs))
	members := make([]string, 0, len(team.MemberIDs))
	for _, id := range team.MemberIDs {
		student := st.StudentByID(id)
		if student == nil || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)

		if student.TeamID != "" {
			detachMember(out, student.TeamID, id)
		}
		moved := cloneStudent(student)
		moved.TeamID = team.ID
		replaceStudent(out.Students, moved)
	}

	out.Teams = append(out.Teams, &models.Team{ID: team.ID, Name: team.Name, MemberIDs: members})
	return out
}

// AssignStudentToTeam moves a student's team link. An unknown student, or a
// non-empty target team id that does not exist, is a no-op. An empty teamID
// detaches the student from any team.
func AssignStudentToTeam(st *models.AppState, studentID, teamID string) *models.AppState {
	student := st.StudentByID(studentID)
	if student == nil || student.TeamID == teamID {
		return st
	}
	if teamID != "" && st.TeamByID(teamID) == nil {
		return st
	}

	out := cloneState(st)
	if student.TeamID != "" {
		detachMember(out, student.TeamID, studentID)
	}
	if teamID != "" {
		target := cloneTeam(out.TeamByID(teamID))
		target.MemberIDs = append(target.MemberIDs, studentID)
		replaceTeam(out.Teams, target)
	}

	moved := cloneStudent(student)
	moved.TeamID = teamID
	replaceStudent(out.Students, moved)
	return out
}

// AddQuest adds a quest. Duplicate or empty ids are no-ops.
func AddQuest(st *models.AppState, quest models.Quest) *models.AppState {
	if quest.ID == "" || st.QuestByID(quest.ID) != nil {
		return st
	}
	added := quest
	out := cloneState(st)
	out.Quests = append(out.Quests, &added)
	return out
}

// SetQuestActive toggles a quest's active gate. Unknown quest ids and no-op
// toggles return the state unchanged.
func SetQuestActive(st *models.AppState, questID string, active bool) *models.AppState {
	quest := st.QuestByID(questID)
	if quest == nil || quest.Active == active {
		return st
	}
	toggled := *quest
	toggled.Active = active

	out := cloneState(st)
	for i, q := range out.Quests {
		if q.ID == questID {
			out.Quests[i] = &toggled
			break
		}
	}
	return out
}

// AddBadgeDefinition adds a badge definition to the catalog. Duplicate or
// empty ids are no-ops.
func AddBadgeDefinition(st *models.AppState, def models.BadgeDefinition) *models.AppState {
	if def.ID == "" || st.BadgeByID(def.ID) != nil {
		return st
	}
	added := def
	out := cloneState(st)
	out.Badges = append(out.Badges, &added)
	return out
}

// RemoveStudent removes a student, detaches it from its team and
// cascade-deletes every log entry referencing it, so the log never points at
// a nonexistent student.
func RemoveStudent(st *models.AppState, studentID string) *models.AppState {
	student := st.StudentByID(studentID)
	if student == nil {
		return st
	}

	out := cloneState(st)
	out.Students = removeStudentByID(out.Students, studentID)
	if student.TeamID != "" {
		detachMember(out, student.TeamID, studentID)
	}

	kept := make([]*models.LogEntry, 0, len(out.Log))
	for _, entry := range out.Log {
		if entry.StudentID != studentID {
			kept = append(kept, entry)
		}
	}
	out.Log = kept
	out.Progress = ComputeClassProgress(out.Students, st.Settings)
	return out
}

// RemoveTeam removes a team and detaches all its members. Log entries are
// untouched: they reference students, not teams.
func RemoveTeam(st *models.AppState, teamID string) *models.AppState {
	team := st.TeamByID(teamID)
	if team == nil {
		return st
	}

	out := cloneState(st)
	kept := make([]*models.Team, 0, len(out.Teams))
	for _, t := range out.Teams {
		if t.ID != teamID {
			kept = append(kept, t)
		}
	}
	out.Teams = kept

	for _, memberID := range team.MemberIDs {
		if student := st.StudentByID(memberID); student != nil {
			detached := cloneStudent(student)
			detached.TeamID = ""
			replaceStudent(out.Students, detached)
		}
	}
	return out
}

// RemoveQuest removes a quest from the catalog. Existing log entries keep
// their denormalized quest-name and category snapshots; category resolution
// for orphaned entries falls back to the uncategorized bucket.
func RemoveQuest(st *models.AppState, questID string) *models.AppState {
	if st.QuestByID(questID) == nil {
		return st
	}
	out := cloneState(st)
	kept := make([]*models.Quest, 0, len(out.Quests))
	for _, q := range out.Quests {
		if q.ID != questID {
			kept = append(kept, q)
		}
	}
	out.Quests = kept
	return out
}

// detachMember removes a student id from a team's member set in an already
// cloned state.
func detachMember(out *models.AppState, teamID, studentID string) {
	team := out.TeamByID(teamID)
	if team == nil {
		return
	}
	shrunk := cloneTeam(team)
	members := make([]string, 0, len(shrunk.MemberIDs))
	for _, id := range shrunk.MemberIDs {
		if id != studentID {
			members = append(members, id)
		}
	}
	shrunk.MemberIDs = members
	replaceTeam(out.Teams, shrunk)
}

func removeStudentByID(students []*models.Student, id string) []*models.Student {
	kept := make([]*models.Student, 0, len(students))
	for _, s := range students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	return kept
}
