package engine

import (
	"testing"
	"time"

	"github.com/abontemps/classquest/internal/models"
)

func TestAddStudent(t *testing.T) {
	st := NewState(models.Settings{})

	out := AddStudent(st, models.Student{ID: "s1", Alias: "Ada", XP: 120})
	if out == st {
		t.Fatal("expected a new state")
	}
	s := out.StudentByID("s1")
	if s.XP != 120 || s.Level != 2 {
		t.Errorf("student = xp %d level %d, want 120/2", s.XP, s.Level)
	}
	if s.Streaks == nil || s.LastAwardedDay == nil {
		t.Error("bookkeeping maps must be initialized")
	}
	if out.Progress.TotalXP != 120 {
		t.Errorf("progress TotalXP = %d, want 120", out.Progress.TotalXP)
	}

	// Duplicate id is a pointer-identical no-op.
	if dup := AddStudent(out, models.Student{ID: "s1", Alias: "Impostor"}); dup != out {
		t.Error("duplicate id must return the identical state")
	}

	// Initial XP goes through the award clamp policy.
	out = AddStudent(out, models.Student{ID: "s2", Alias: "Grace", XP: -40})
	if got := out.StudentByID("s2").XP; got != 0 {
		t.Errorf("clamped initial XP = %d, want 0", got)
	}
}

func TestAddStudent_TeamLink(t *testing.T) {
	st := NewState(models.Settings{})
	st = AddStudent(st, models.Student{ID: "s1", Alias: "Ada"})
	st = AddTeam(st, models.Team{ID: "t1", Name: "Red"})

	out := AddStudent(st, models.Student{ID: "s2", Alias: "Grace", TeamID: "t1"})
	if !out.TeamByID("t1").HasMember("s2") {
		t.Error("team member set must include the new student")
	}
	if out.StudentByID("s2").TeamID != "t1" {
		t.Error("student must back-reference the team")
	}

	// A nonexistent team never gets created; the link is dropped instead.
	out = AddStudent(out, models.Student{ID: "s3", Alias: "Alan", TeamID: "ghost"})
	if got := out.StudentByID("s3").TeamID; got != "" {
		t.Errorf("TeamID = %q, want dropped link", got)
	}
}

func TestAddTeam_MovesMembersAtomically(t *testing.T) {
	st := NewState(models.Settings{})
	st = AddStudent(st, models.Student{ID: "s1", Alias: "Ada"})
	st = AddStudent(st, models.Student{ID: "s2", Alias: "Grace"})
	st = AddTeam(st, models.Team{ID: "t1", Name: "Red", MemberIDs: []string{"s1"}})

	// s1 moves from Red to Blue; dangling and duplicate ids are dropped.
	out := AddTeam(st, models.Team{ID: "t2", Name: "Blue", MemberIDs: []string{"s1", "s2", "s2", "ghost"}})
	blue := out.TeamByID("t2")
	if len(blue.MemberIDs) != 2 {
		t.Fatalf("member count = %d, want 2 (deduped, dangling dropped)", len(blue.MemberIDs))
	}
	if out.TeamByID("t1").HasMember("s1") {
		t.Error("old team must release the moved student")
	}
	if out.StudentByID("s1").TeamID != "t2" || out.StudentByID("s2").TeamID != "t2" {
		t.Error("both sides of the membership relation must be updated")
	}

	if dup := AddTeam(out, models.Team{ID: "t1", Name: "Shadow"}); dup != out {
		t.Error("duplicate team id must return the identical state")
	}
}

func TestAssignStudentToTeam(t *testing.T) {
	st := NewState(models.Settings{})
	st = AddStudent(st, models.Student{ID: "s1", Alias: "Ada"})
	st = AddTeam(st, models.Team{ID: "t1", Name: "Red", MemberIDs: []string{"s1"}})
	st = AddTeam(st, models.Team{ID: "t2", Name: "Blue"})

	out := AssignStudentToTeam(st, "s1", "t2")
	if out.TeamByID("t1").HasMember("s1") || !out.TeamByID("t2").HasMember("s1") {
		t.Error("assignment must move the member between both team sets")
	}
	if out.StudentByID("s1").TeamID != "t2" {
		t.Error("student back-reference not updated")
	}

	// Empty team id detaches entirely.
	out = AssignStudentToTeam(out, "s1", "")
	if out.StudentByID("s1").TeamID != "" || out.TeamByID("t2").HasMember("s1") {
		t.Error("empty target must detach the student")
	}

	if noop := AssignStudentToTeam(out, "ghost", "t1"); noop != out {
		t.Error("unknown student must return the identical state")
	}
	if noop := AssignStudentToTeam(out, "s1", "ghost"); noop != out {
		t.Error("unknown target team must return the identical state")
	}
}

func TestQuestHelpers(t *testing.T) {
	st := NewState(models.Settings{})

	out := AddQuest(st, models.Quest{ID: "q1", Name: "Homework", XP: 10, Type: models.QuestDaily, Target: models.TargetIndividual, Active: true})
	if out == st || out.QuestByID("q1") == nil {
		t.Fatal("expected quest to be added")
	}
	if dup := AddQuest(out, models.Quest{ID: "q1", Name: "Homework Again"}); dup != out {
		t.Error("duplicate quest id must return the identical state")
	}

	toggled := SetQuestActive(out, "q1", false)
	if toggled == out || toggled.QuestByID("q1").Active {
		t.Error("expected the quest to be deactivated")
	}
	if same := SetQuestActive(toggled, "q1", false); same != toggled {
		t.Error("no-op toggle must return the identical state")
	}
	if same := SetQuestActive(toggled, "ghost", true); same != toggled {
		t.Error("unknown quest must return the identical state")
	}
}

func TestRemoveStudent_CascadesLog(t *testing.T) {
	st := NewState(models.Settings{})
	st = AddStudent(st, models.Student{ID: "s1", Alias: "Ada"})
	st = AddStudent(st, models.Student{ID: "s2", Alias: "Grace"})
	st = AddTeam(st, models.Team{ID: "t1", Name: "Red", MemberIDs: []string{"s1", "s2"}})
	st = AddQuest(st, models.Quest{ID: "q1", Name: "Homework", XP: 10, Type: models.QuestRepeatable, Target: models.TargetIndividual, Active: true})

	e := New(FixedClock{T: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local)}, &seqIDs{})
	st = e.ApplyQuestAward(st, "s1", st.QuestByID("q1"), "")
	st = e.ApplyQuestAward(st, "s2", st.QuestByID("q1"), "")

	out := RemoveStudent(st, "s1")
	if out.StudentByID("s1") != nil {
		t.Fatal("student still present")
	}
	if out.TeamByID("t1").HasMember("s1") {
		t.Error("team member set must release the removed student")
	}
	for _, entry := range out.Log {
		if entry.StudentID == "s1" {
			t.Error("log entries of a removed student must be cascade-deleted")
		}
	}
	if len(out.Log) != 1 {
		t.Errorf("log length = %d, want 1", len(out.Log))
	}
	if out.Progress.TotalXP != 10 {
		t.Errorf("progress TotalXP = %d, want 10", out.Progress.TotalXP)
	}

	if noop := RemoveStudent(out, "ghost"); noop != out {
		t.Error("unknown student must return the identical state")
	}
}

func TestRemoveTeam_DetachesMembers(t *testing.T) {
	st := NewState(models.Settings{})
	st = AddStudent(st, models.Student{ID: "s1", Alias: "Ada"})
	st = AddTeam(st, models.Team{ID: "t1", Name: "Red", MemberIDs: []string{"s1"}})

	out := RemoveTeam(st, "t1")
	if out.TeamByID("t1") != nil {
		t.Fatal("team still present")
	}
	if out.StudentByID("s1").TeamID != "" {
		t.Error("members must be detached when their team is removed")
	}

	if noop := RemoveTeam(out, "t1"); noop != out {
		t.Error("unknown team must return the identical state")
	}
}

func TestAddBadgeDefinition(t *testing.T) {
	st := NewState(models.Settings{})
	out := AddBadgeDefinition(st, models.BadgeDefinition{ID: "b1", Name: "Rising Star", Rule: &models.BadgeRule{Type: models.RuleTotalXP, Threshold: 100}})
	if out == st || out.BadgeByID("b1") == nil {
		t.Fatal("expected badge definition to be added")
	}
	if dup := AddBadgeDefinition(out, models.BadgeDefinition{ID: "b1", Name: "Copy"}); dup != out {
		t.Error("duplicate badge id must return the identical state")
	}
}
