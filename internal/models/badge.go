package models

// Badge rule types.
const (
	RuleTotalXP    = "total_xp"
	RuleCategoryXP = "category_xp"
)

// CategoryUncategorized is the sentinel bucket for log entries whose category
// cannot be resolved (no denormalized category and the quest no longer exists).
const CategoryUncategorized = "uncategorized"

// BadgeRule is a declarative predicate evaluated against a student and the
// award log. Rules are advisory: the evaluator never mutates the student.
type BadgeRule struct {
	Type      string `json:"type"` // RuleTotalXP or RuleCategoryXP
	Threshold int    `json:"threshold"`
	// Category/CategoryID select the bucket for RuleCategoryXP rules.
	Category   string `json:"category,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
}

// BadgeDefinition describes a badge that can be earned.
type BadgeDefinition struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	// Rule is nil for badges that are only awarded manually or by the streak
	// mechanic.
	Rule *BadgeRule `json:"rule,omitempty"`
}
