package engine

import "github.com/abontemps/classquest/internal/models"

// StudentCategoryXP folds the award log into per-category XP sums for one
// student. The category of each entry is resolved from the denormalized
// snapshot on the entry first, then from the quest it references, then from
// the quest's category id; entries whose quest has since been deleted land in
// the "uncategorized" bucket.
func StudentCategoryXP(st *models.AppState, student *models.Student) map[string]int {
	sums := make(map[string]int)
	if student == nil {
		return sums
	}
	for _, entry := range st.Log {
		if entry.StudentID != student.ID {
			continue
		}
		sums[resolveCategory(st, entry)] += entry.XP
	}
	return sums
}

func resolveCategory(st *models.AppState, entry *models.LogEntry) string {
	if entry.Category != "" {
		return entry.Category
	}
	if quest := st.QuestByID(entry.QuestID); quest != nil {
		if quest.Category != "" {
			return quest.Category
		}
		if quest.CategoryID != "" {
			return quest.CategoryID
		}
	}
	return models.CategoryUncategorized
}

// GrantBadge appends a defined badge to a student's earned set. Unknown
// students and already-held badges are pointer-identical no-ops. This is the
// mutation counterpart of ShouldAutoAward, invoked by the calling layer once
// it decides a rule (or a manual action) should stick.
func (e *Engine) GrantBadge(st *models.AppState, studentID string, def *models.BadgeDefinition) *models.AppState {
	if def == nil || def.ID == "" {
		return st
	}
	student := st.StudentByID(studentID)
	if student == nil || student.HasBadge(def.ID) {
		return st
	}

	updated := cloneStudent(student)
	updated.Badges = append(updated.Badges, models.AwardedBadge{
		ID:        def.ID,
		Name:      def.Name,
		AwardedAt: e.clock.Now().UnixMilli(),
	})

	out := cloneState(st)
	replaceStudent(out.Students, updated)
	return out
}

// ShouldAutoAward reports whether a student's aggregate XP crosses a badge
// definition's threshold (inclusive). The evaluator is advisory and read-only:
// it never mutates the student, and unknown rule shapes evaluate to false
// rather than erroring. A calling layer decides whether to append the badge.
func ShouldAutoAward(st *models.AppState, student *models.Student, def *models.BadgeDefinition) bool {
	if student == nil || def == nil || def.Rule == nil {
		return false
	}

	switch def.Rule.Type {
	case models.RuleTotalXP:
		return student.XP >= def.Rule.Threshold
	case models.RuleCategoryXP:
		category := def.Rule.Category
		if category == "" {
			category = def.Rule.CategoryID
		}
		if category == "" {
			return false
		}
		return StudentCategoryXP(st, student)[category] >= def.Rule.Threshold
	default:
		return false
	}
}
