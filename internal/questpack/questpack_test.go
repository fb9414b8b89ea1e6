package questpack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abontemps/classquest/internal/engine"
	"github.com/abontemps/classquest/internal/models"
)

const samplePack = `
name: starter
quests:
  - id: homework
    name: Homework done
    xp: 10
    type: daily
    category: diligence
  - id: presentation
    name: Class presentation
    xp: 50
    type: oneoff
    target: individual
  - id: cleanup
    name: Classroom cleanup
    xp: 20
    type: repeatable
    target: team
    active: false
badges:
  - id: first-steps
    name: First Steps
    rule:
      type: total_xp
      threshold: 50
  - id: diligent
    name: Diligent Worker
    rule:
      type: category_xp
      threshold: 100
      category: diligence
`

func TestParse(t *testing.T) {
	pack, err := Parse([]byte(samplePack))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pack.Name != "starter" {
		t.Errorf("name = %q, want starter", pack.Name)
	}
	if len(pack.Quests) != 3 || len(pack.Badges) != 2 {
		t.Fatalf("quests = %d badges = %d, want 3 and 2", len(pack.Quests), len(pack.Badges))
	}
	if pack.Quests[2].Active == nil || *pack.Quests[2].Active {
		t.Error("cleanup quest should be parsed as inactive")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "quests:\n  - id: a\n    name: A\n    typ: daily\n", "field typ not found"},
		{"missing id", "quests:\n  - name: A\n    type: daily\n", "missing id"},
		{"duplicate id", "quests:\n  - id: a\n    name: A\n    type: daily\n  - id: a\n    name: B\n    type: daily\n", "duplicate id"},
		{"bad quest type", "quests:\n  - id: a\n    name: A\n    type: weekly\n", "unknown type"},
		{"bad target", "quests:\n  - id: a\n    name: A\n    type: daily\n    target: school\n", "unknown target"},
		{"bad rule type", "badges:\n  - id: b\n    name: B\n    rule:\n      type: attendance\n      threshold: 5\n", "unknown rule type"},
		{"zero threshold", "badges:\n  - id: b\n    name: B\n    rule:\n      type: total_xp\n      threshold: 0\n", "threshold must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(samplePack), 0o644); err != nil {
		t.Fatal(err)
	}

	pack, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pack.Quests) != 3 {
		t.Errorf("quests = %d, want 3", len(pack.Quests))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApply(t *testing.T) {
	pack, err := Parse([]byte(samplePack))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	st := engine.NewState(models.Settings{})
	st = pack.Apply(st)

	if len(st.Quests) != 3 || len(st.Badges) != 2 {
		t.Fatalf("quests = %d badges = %d, want 3 and 2", len(st.Quests), len(st.Badges))
	}

	hw := st.QuestByID("homework")
	if !hw.Active || hw.Target != models.TargetIndividual {
		t.Errorf("homework defaults wrong: %+v", hw)
	}
	if st.QuestByID("cleanup").Active {
		t.Error("cleanup should stay inactive")
	}

	// re-applying is a no-op
	again := pack.Apply(st)
	if len(again.Quests) != 3 || len(again.Badges) != 2 {
		t.Errorf("re-apply changed catalog sizes: quests = %d badges = %d", len(again.Quests), len(again.Badges))
	}
}
