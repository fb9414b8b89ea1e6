package awards

import (
	"github.com/abontemps/classquest/internal/engine"
	"github.com/abontemps/classquest/internal/models"
)

// Roster and catalog mutations. Each follows the same shape: run the engine
// transition under the mutex, persist only when something actually changed.

func (s *Service) AddStudent(student models.Student) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.AddStudent(st, student)
	})
}

func (s *Service) RemoveStudent(studentID string) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.RemoveStudent(st, studentID)
	})
}

func (s *Service) AddTeam(team models.Team) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.AddTeam(st, team)
	})
}

func (s *Service) RemoveTeam(teamID string) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.RemoveTeam(st, teamID)
	})
}

func (s *Service) AssignStudentToTeam(studentID, teamID string) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.AssignStudentToTeam(st, studentID, teamID)
	})
}

func (s *Service) AddQuest(quest models.Quest) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.AddQuest(st, quest)
	})
}

func (s *Service) SetQuestActive(questID string, active bool) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.SetQuestActive(st, questID, active)
	})
}

func (s *Service) RemoveQuest(questID string) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.RemoveQuest(st, questID)
	})
}

func (s *Service) AddBadgeDefinition(def models.BadgeDefinition) (bool, error) {
	return s.apply(func(st *models.AppState) *models.AppState {
		return engine.AddBadgeDefinition(st, def)
	})
}

// apply runs a transition under the mutex and commits when the snapshot
// identity changed.
func (s *Service) apply(fn func(*models.AppState) *models.AppState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state)
	if next == s.state {
		return false, nil
	}
	if err := s.commit(next); err != nil {
		return false, err
	}
	return true, nil
}
