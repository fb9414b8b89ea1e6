package models

// Quest types.
const (
	QuestDaily      = "daily"      // legal at most once per calendar day
	QuestRepeatable = "repeatable" // always legal while active
	QuestOneoff     = "oneoff"     // legal at most once ever
)

// Quest targets.
const (
	TargetIndividual = "individual"
	TargetTeam       = "team"
)

// Quest represents an awardable activity.
type Quest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// XP may be negative to model penalties.
	XP     int    `json:"xp"`
	Type   string `json:"type"`   // QuestDaily, QuestRepeatable or QuestOneoff
	Target string `json:"target"` // TargetIndividual or TargetTeam
	// Active gates awarding. An inactive quest never produces an award.
	Active bool `json:"active"`
	// PersonalTo restricts the quest to a single student (or, for team
	// quests, to a single member of the targeted team). Empty means open.
	PersonalTo string `json:"personal_to,omitempty"`
	Category   string `json:"category,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
}

// LogEntry is the immutable audit record of one applied award. Entries are the
// only input to "undo last award".
type LogEntry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // ms since epoch
	StudentID string `json:"student_id"`
	QuestID   string `json:"quest_id"`
	// QuestName is a snapshot of the quest name at award time; the quest may
	// be renamed or deleted later.
	QuestName string `json:"quest_name"`
	// XP is the signed amount actually applied, after any clamp.
	XP       int    `json:"xp"`
	Note     string `json:"note,omitempty"`
	Category string `json:"category,omitempty"`
}
