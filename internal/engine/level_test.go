package engine

import "testing"

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		name       string
		xp         int
		xpPerLevel int
		want       int
	}{
		{"zero xp", 0, 100, 1},
		{"just below level 2", 99, 100, 1},
		{"exact boundary", 100, 100, 2},
		{"mid level", 250, 100, 3},
		{"negative xp treated as zero", -500, 100, 1},
		{"zero rate is level 1", 0, 0, 1},
		{"negative rate is level 1", 500, -10, 1},
		{"small rate", 10, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelFromXP(tt.xp, tt.xpPerLevel); got != tt.want {
				t.Errorf("LevelFromXP(%d, %d) = %d, want %d", tt.xp, tt.xpPerLevel, got, tt.want)
			}
		})
	}
}

func TestLevelFromXP_Monotonic(t *testing.T) {
	prev := 0
	for xp := -50; xp <= 1000; xp += 7 {
		level := LevelFromXP(xp, 100)
		if level < prev {
			t.Fatalf("level decreased at xp=%d: %d -> %d", xp, prev, level)
		}
		if level < 1 {
			t.Fatalf("level below 1 at xp=%d", xp)
		}
		prev = level
	}
}
