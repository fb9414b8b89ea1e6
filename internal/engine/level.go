package engine

// LevelFromXP maps total XP to a level number given the configured XP-per-level
// rate. Negative XP counts as zero for leveling purposes only; a degenerate
// rate (<= 0) yields level 1 rather than an error. Total over all inputs.
func LevelFromXP(xp, xpPerLevel int) int {
	if xpPerLevel <= 0 {
		return 1
	}
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}
