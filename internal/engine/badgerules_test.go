package engine

import (
	"testing"
	"time"

	"github.com/abontemps/classquest/internal/models"
)

func badgeTestState(t *testing.T) *models.AppState {
	t.Helper()

	st := NewState(models.Settings{})
	st = AddStudent(st, models.Student{ID: "s1", Alias: "Ada"})
	st = AddQuest(st, models.Quest{ID: "q-math", Name: "Math Drill", XP: 30, Type: models.QuestRepeatable, Target: models.TargetIndividual, Active: true, Category: "math"})
	st = AddQuest(st, models.Quest{ID: "q-read", Name: "Reading", XP: 20, Type: models.QuestRepeatable, Target: models.TargetIndividual, Active: true, Category: "reading"})
	st = AddQuest(st, models.Quest{ID: "q-misc", Name: "Misc", XP: 10, Type: models.QuestRepeatable, Target: models.TargetIndividual, Active: true})

	e := New(FixedClock{T: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)}, &seqIDs{})
	st = e.ApplyQuestAward(st, "s1", st.QuestByID("q-math"), "")
	st = e.ApplyQuestAward(st, "s1", st.QuestByID("q-math"), "")
	st = e.ApplyQuestAward(st, "s1", st.QuestByID("q-read"), "")
	st = e.ApplyQuestAward(st, "s1", st.QuestByID("q-misc"), "")
	return st
}

func TestStudentCategoryXP(t *testing.T) {
	st := badgeTestState(t)
	sums := StudentCategoryXP(st, st.StudentByID("s1"))

	if sums["math"] != 60 {
		t.Errorf("math = %d, want 60", sums["math"])
	}
	if sums["reading"] != 20 {
		t.Errorf("reading = %d, want 20", sums["reading"])
	}
	if sums[models.CategoryUncategorized] != 10 {
		t.Errorf("uncategorized = %d, want 10", sums[models.CategoryUncategorized])
	}
}

func TestStudentCategoryXP_DeletedQuestFallsBack(t *testing.T) {
	st := badgeTestState(t)

	// Strip the denormalized category and delete the quest: resolution must
	// land in the sentinel bucket without erroring.
	st = cloneState(st)
	for i, entry := range st.Log {
		if entry.QuestID == "q-math" {
			bare := *entry
			bare.Category = ""
			st.Log[i] = &bare
		}
	}
	st = RemoveQuest(st, "q-math")

	sums := StudentCategoryXP(st, st.StudentByID("s1"))
	if sums["math"] != 0 {
		t.Errorf("math = %d, want 0 after quest deletion", sums["math"])
	}
	if sums[models.CategoryUncategorized] != 70 {
		t.Errorf("uncategorized = %d, want 70", sums[models.CategoryUncategorized])
	}
}

func TestShouldAutoAward_TotalXP(t *testing.T) {
	st := badgeTestState(t) // s1 holds 90 XP
	s := st.StudentByID("s1")

	reached := &models.BadgeDefinition{ID: "b1", Name: "Rising Star", Rule: &models.BadgeRule{Type: models.RuleTotalXP, Threshold: 90}}
	if !ShouldAutoAward(st, s, reached) {
		t.Error("threshold comparison must be inclusive")
	}

	notYet := &models.BadgeDefinition{ID: "b2", Name: "Century", Rule: &models.BadgeRule{Type: models.RuleTotalXP, Threshold: 100}}
	if ShouldAutoAward(st, s, notYet) {
		t.Error("below-threshold student must not qualify")
	}
}

func TestShouldAutoAward_CategoryXP(t *testing.T) {
	st := badgeTestState(t)
	s := st.StudentByID("s1")

	mathBadge := &models.BadgeDefinition{ID: "b-math", Name: "Mathlete", Rule: &models.BadgeRule{Type: models.RuleCategoryXP, Category: "math", Threshold: 60}}
	if !ShouldAutoAward(st, s, mathBadge) {
		t.Error("category sum at threshold must qualify")
	}

	readBadge := &models.BadgeDefinition{ID: "b-read", Name: "Bookworm", Rule: &models.BadgeRule{Type: models.RuleCategoryXP, Category: "reading", Threshold: 50}}
	if ShouldAutoAward(st, s, readBadge) {
		t.Error("category below threshold must not qualify")
	}

	// CategoryID is the fallback selector.
	idBadge := &models.BadgeDefinition{ID: "b-id", Name: "By ID", Rule: &models.BadgeRule{Type: models.RuleCategoryXP, CategoryID: "math", Threshold: 10}}
	if !ShouldAutoAward(st, s, idBadge) {
		t.Error("category id fallback must be honored")
	}
}

func TestGrantBadge(t *testing.T) {
	st := badgeTestState(t)
	e := New(FixedClock{T: time.Date(2025, time.March, 4, 9, 0, 0, 0, time.Local)}, &seqIDs{})
	def := &models.BadgeDefinition{ID: "b1", Name: "Rising Star"}

	out := e.GrantBadge(st, "s1", def)
	if out == st {
		t.Fatal("expected a new state")
	}
	if !out.StudentByID("s1").HasBadge("b1") {
		t.Error("badge not appended")
	}

	if again := e.GrantBadge(out, "s1", def); again != out {
		t.Error("already-held badge must be a pointer-identical no-op")
	}
	if ghost := e.GrantBadge(out, "ghost", def); ghost != out {
		t.Error("unknown student must be a pointer-identical no-op")
	}
}

func TestShouldAutoAward_Defensive(t *testing.T) {
	st := badgeTestState(t)
	s := st.StudentByID("s1")

	if ShouldAutoAward(st, s, &models.BadgeDefinition{ID: "b", Name: "No Rule"}) {
		t.Error("definition without a rule must evaluate to false")
	}
	if ShouldAutoAward(st, s, &models.BadgeDefinition{ID: "b", Rule: &models.BadgeRule{Type: "phase_of_moon", Threshold: 1}}) {
		t.Error("unknown rule shape must evaluate to false, not error")
	}
	if ShouldAutoAward(st, s, &models.BadgeDefinition{ID: "b", Rule: &models.BadgeRule{Type: models.RuleCategoryXP, Threshold: 1}}) {
		t.Error("category rule without a category must evaluate to false")
	}
	if ShouldAutoAward(st, nil, &models.BadgeDefinition{ID: "b", Rule: &models.BadgeRule{Type: models.RuleTotalXP}}) {
		t.Error("nil student must evaluate to false")
	}
}
