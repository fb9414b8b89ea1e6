package models

// Settings defaults.
const (
	DefaultXPPerLevel         = 100
	DefaultStreakThreshold    = 5
	DefaultClassMilestoneStep = 1000
	DefaultClassName          = "My Class"
	DefaultAllowNegativeXP    = false
	CurrentStateVersion       = 2
)

// Settings holds the tunables the award engine depends on. NewState in
// internal/engine guarantees every field is populated; the engine itself does
// not re-validate them.
type Settings struct {
	ClassName               string `json:"class_name"`
	XPPerLevel              int    `json:"xp_per_level"`
	StreakThresholdForBadge int    `json:"streak_threshold_for_badge"`
	AllowNegativeXP         bool   `json:"allow_negative_xp"`
	ClassMilestoneStep      int    `json:"class_milestone_step"`
}

// ClassProgress is a projection of the class-wide XP milestone counter. It is
// always recomputable from the student roster and the milestone step alone;
// there is no independent mutation path.
type ClassProgress struct {
	TotalXP     int `json:"total_xp"`
	Stars       int `json:"stars"`
	Step        int `json:"step"`
	StepXP      int `json:"step_xp"`      // progress into the current star
	RemainingXP int `json:"remaining_xp"` // XP left until the next star
}

// AppState is the top-level aggregate snapshot. All engine operations are pure
// transformations over it: they return the identical pointer when nothing
// happened and a fresh copy-on-write snapshot otherwise.
type AppState struct {
	Version  int                `json:"version"`
	Settings Settings           `json:"settings"`
	Students []*Student         `json:"students"`
	Teams    []*Team            `json:"teams"`
	Quests   []*Quest           `json:"quests"`
	Badges   []*BadgeDefinition `json:"badges"`
	Log      []*LogEntry        `json:"log"`
	Progress ClassProgress      `json:"progress"`
}

// StudentByID returns the student with the given id, or nil.
func (st *AppState) StudentByID(id string) *Student {
	for _, s := range st.Students {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// TeamByID returns the team with the given id, or nil.
func (st *AppState) TeamByID(id string) *Team {
	for _, t := range st.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// QuestByID returns the quest with the given id, or nil.
func (st *AppState) QuestByID(id string) *Quest {
	for _, q := range st.Quests {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// BadgeByID returns the badge definition with the given id, or nil.
func (st *AppState) BadgeByID(id string) *BadgeDefinition {
	for _, b := range st.Badges {
		if b.ID == id {
			return b
		}
	}
	return nil
}
