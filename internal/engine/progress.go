package engine

import "github.com/abontemps/classquest/internal/models"

// NormalizeClassMilestoneStep coerces a milestone step to a positive value,
// falling back to the documented default when the input is missing or <= 0.
func NormalizeClassMilestoneStep(step int) int {
	if step <= 0 {
		return models.DefaultClassMilestoneStep
	}
	return step
}

// CalculateClassProgress derives the milestone star counter from aggregate
// class XP. totalXP is clamped to >= 0. Invariants:
//
//	stars   = totalXP / step
//	stepXP  = totalXP % step
//	stepXP + step*stars == totalXP
//	remainingXP + stepXP == step
func CalculateClassProgress(totalXP, step int) models.ClassProgress {
	if totalXP < 0 {
		totalXP = 0
	}
	step = NormalizeClassMilestoneStep(step)

	stepXP := totalXP % step
	return models.ClassProgress{
		TotalXP:     totalXP,
		Stars:       totalXP / step,
		Step:        step,
		StepXP:      stepXP,
		RemainingXP: step - stepXP,
	}
}

// ComputeClassProgress recomputes class progress from the student roster.
// Per-student XP is clamped to >= 0 before summing, so penalty-driven negative
// balances never drag the class counter below zero.
func ComputeClassProgress(students []*models.Student, settings models.Settings) models.ClassProgress {
	total := 0
	for _, s := range students {
		if s.XP > 0 {
			total += s.XP
		}
	}
	return CalculateClassProgress(total, settings.ClassMilestoneStep)
}
