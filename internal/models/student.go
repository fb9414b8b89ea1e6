// Package models defines domain records for the classroom gamification system.
//
// These types are the shapes the pure award engine operates on. They carry JSON
// tags only: the whole application state is persisted as one snapshot document,
// not row-by-row (see internal/store).
package models

// Student represents a tracked class member.
type Student struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
	XP    int    `json:"xp"`
	Level int    `json:"level"`
	// Streaks maps quest id to consecutive-day count. For oneoff quests the
	// counter doubles as a has-been-awarded flag.
	Streaks map[string]int `json:"streaks"`
	// LastAwardedDay maps quest id to the "YYYY-MM-DD" day of the last
	// successful award.
	LastAwardedDay map[string]string `json:"last_awarded_day"`
	Badges         []AwardedBadge    `json:"badges"`
	// TeamID is empty when the student is not on a team. When set, the team's
	// MemberIDs must contain this student's id.
	TeamID string `json:"team_id,omitempty"`
}

// HasBadge reports whether the student already holds a badge with the given id.
func (s *Student) HasBadge(badgeID string) bool {
	for _, b := range s.Badges {
		if b.ID == badgeID {
			return true
		}
	}
	return false
}

// Team represents a named group of students.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// MemberIDs only contains ids of students whose TeamID equals this team's
	// id. Membership is bidirectional and kept synchronized by the roster
	// helpers in internal/engine.
	MemberIDs []string `json:"member_ids"`
}

// HasMember reports whether the team's member set contains the student id.
func (t *Team) HasMember(studentID string) bool {
	for _, id := range t.MemberIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// AwardedBadge is a badge earned by a student. Records are append-only.
type AwardedBadge struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AwardedAt int64  `json:"awarded_at"` // ms since epoch
}
