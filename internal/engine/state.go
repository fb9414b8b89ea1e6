package engine

import "github.com/abontemps/classquest/internal/models"

// NormalizeSettings fills every missing or degenerate settings field with its
// documented default. The award engine assumes settings passed through here
// are complete and does not re-validate them.
func NormalizeSettings(s models.Settings) models.Settings {
	if s.ClassName == "" {
		s.ClassName = models.DefaultClassName
	}
	if s.XPPerLevel <= 0 {
		s.XPPerLevel = models.DefaultXPPerLevel
	}
	if s.StreakThresholdForBadge <= 0 {
		s.StreakThresholdForBadge = models.DefaultStreakThreshold
	}
	s.ClassMilestoneStep = NormalizeClassMilestoneStep(s.ClassMilestoneStep)
	return s
}

// NewState builds a fresh application state: supplied settings merged over
// defaults, empty rosters and log, zeroed class progress. This is the single
// entry point guaranteeing a consistent snapshot before any engine call.
func NewState(overrides models.Settings) *models.AppState {
	settings := NormalizeSettings(overrides)
	return &models.AppState{
		Version:  models.CurrentStateVersion,
		Settings: settings,
		Students: []*models.Student{},
		Teams:    []*models.Team{},
		Quests:   []*models.Quest{},
		Badges:   []*models.BadgeDefinition{},
		Log:      []*models.LogEntry{},
		Progress: CalculateClassProgress(0, settings.ClassMilestoneStep),
	}
}

// cloneState makes a shallow copy of the state with fresh top-level slices.
// Element pointers are shared; mutating an element requires cloning it first.
func cloneState(st *models.AppState) *models.AppState {
	out := *st
	out.Students = append([]*models.Student(nil), st.Students...)
	out.Teams = append([]*models.Team(nil), st.Teams...)
	out.Quests = append([]*models.Quest(nil), st.Quests...)
	out.Badges = append([]*models.BadgeDefinition(nil), st.Badges...)
	out.Log = append([]*models.LogEntry(nil), st.Log...)
	return &out
}

// cloneStudent deep-copies a student so bookkeeping maps and the badge list
// can be mutated without touching the original snapshot.
func cloneStudent(s *models.Student) *models.Student {
	out := *s
	out.Streaks = make(map[string]int, len(s.Streaks)+1)
	for k, v := range s.Streaks {
		out.Streaks[k] = v
	}
	out.LastAwardedDay = make(map[string]string, len(s.LastAwardedDay)+1)
	for k, v := range s.LastAwardedDay {
		out.LastAwardedDay[k] = v
	}
	out.Badges = append([]models.AwardedBadge(nil), s.Badges...)
	return &out
}

// cloneTeam copies a team with a fresh member slice.
func cloneTeam(t *models.Team) *models.Team {
	out := *t
	out.MemberIDs = append([]string(nil), t.MemberIDs...)
	return &out
}

// replaceStudent swaps the student with the same id in a cloned slice.
func replaceStudent(students []*models.Student, s *models.Student) {
	for i, cur := range students {
		if cur.ID == s.ID {
			students[i] = s
			return
		}
	}
}

// replaceTeam swaps the team with the same id in a cloned slice.
func replaceTeam(teams []*models.Team, t *models.Team) {
	for i, cur := range teams {
		if cur.ID == t.ID {
			teams[i] = t
			return
		}
	}
}
