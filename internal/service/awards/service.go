// Package awards orchestrates the pure award engine: it serializes state
// transitions, evaluates auto-award badge rules after successful awards,
// persists the resulting snapshots and records metrics.
package awards

import (
	"context"
	"fmt"
	"sync"

	"github.com/abontemps/classquest/internal/engine"
	prommetrics "github.com/abontemps/classquest/internal/metrics"
	"github.com/abontemps/classquest/internal/models"
	"github.com/abontemps/classquest/internal/store"
	"github.com/abontemps/classquest/pkg/logger"
)

// StateStore interface for snapshot persistence.
type StateStore interface {
	Save(state *models.AppState) error
	Load() (*models.AppState, error)
}

// Service owns the current state snapshot. Every transition goes through its
// mutex, the Go rendition of the single update queue the engine's
// no-interleaving contract assumes: one award is fully applied and persisted
// before the next is considered.
type Service struct {
	mu     sync.Mutex
	state  *models.AppState
	engine *engine.Engine
	store  StateStore
	log    *logger.Logger
}

// NewService loads the persisted state (or creates a fresh one from settings)
// and returns the ready service.
func NewService(eng *engine.Engine, st StateStore, settings models.Settings, log *logger.Logger) (*Service, error) {
	state, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if state == nil {
		state = engine.NewState(settings)
		if err := st.Save(state); err != nil {
			return nil, fmt.Errorf("failed to save initial state: %w", err)
		}
		log.Info().Str("class", state.Settings.ClassName).Msg("Created fresh class state")
	} else {
		log.Info().
			Str("class", state.Settings.ClassName).
			Int("students", len(state.Students)).
			Int("log_entries", len(state.Log)).
			Msg("Loaded class state")
	}

	s := &Service{state: state, engine: eng, store: st, log: log}
	s.publishGauges()
	return s, nil
}

// State returns the current immutable snapshot. Callers must not mutate it;
// transitions produce fresh snapshots, so a held reference stays valid.
func (s *Service) State() *models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Award applies a quest award, runs the auto-badge rules for the recipients
// and persists the result. Returns false when the engine decided there was
// nothing to do.
//
func (s *Service) Award(ctx context.Context, studentID, teamID, questID, note string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quest := s.state.QuestByID(questID)
	if quest == nil {
		s.log.Debug().Str("quest_id", questID).Msg("Award for unknown quest ignored")
		prommetrics.RecordAwardRejected("unknown")
		return false, nil
	}

	next := s.engine.AwardQuest(s.state, studentID, teamID, quest, note)
	if next == s.state {
		s.log.Debug().
			Str("quest", quest.Name).
			Str("student_id", studentID).
			Str("team_id", teamID).
			Msg("Award was a no-op")
		prommetrics.RecordAwardRejected(quest.Type)
		return false, nil
	}

	applied := next.Log[len(next.Log)-1]
	next = s.evaluateAutoBadges(next, changedStudents(s.state, next))

	if err := s.commit(next); err != nil {
		return false, err
	}

	prommetrics.RecordAwardApplied(quest.Type, quest.Target, applied.XP)
	s.log.Info().
		Str("quest", quest.Name).
		Str("student_id", applied.StudentID).
		Int("xp", applied.XP).
		Int("class_total_xp", next.Progress.TotalXP).
		Int("class_stars", next.Progress.Stars).
		Msg("Quest awarded")
	return true, nil
}

// Undo reverses the XP delta of the most recent log entry. Streaks and badges
// earned by the undone award stay in place; see the engine for the rationale.
//
func (s *Service) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.engine.UndoLastAward(s.state)
	if next == s.state {
		return false, nil
	}
	if err := s.commit(next); err != nil {
		return false, err
	}
	prommetrics.RecordUndo()
	s.log.Info().Int("log_entries", len(next.Log)).Msg("Last award undone")
	return true, nil
}

// RunBadgeSweep evaluates every badge rule for every student, appending any
// newly earned badges. Returns the number of badges awarded. Run nightly by
// the scheduler to catch rules added after the XP that satisfies them.
//
func (s *Service) RunBadgeSweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	awarded := 0
	for _, student := range next.Students {
		before := next
		next = s.evaluateAutoBadges(next, []string{student.ID})
		if next != before {
			awarded += len(next.StudentByID(student.ID).Badges) - len(before.StudentByID(student.ID).Badges)
		}
	}

	if next == s.state {
		return 0, nil
	}
	if err := s.commit(next); err != nil {
		return 0, err
	}
	s.log.Info().Int("badges_awarded", awarded).Msg("Badge sweep complete")
	return awarded, nil
}

// evaluateAutoBadges applies every qualifying rule badge for the given
// students. Must be called with the mutex held.
func (s *Service) evaluateAutoBadges(st *models.AppState, studentIDs []string) *models.AppState {
	for _, id := range studentIDs {
		for _, def := range st.Badges {
			student := st.StudentByID(id)
			if student == nil || student.HasBadge(def.ID) {
				continue
			}
			if !engine.ShouldAutoAward(st, student, def) {
				continue
			}
			next := s.engine.GrantBadge(st, id, def)
			if next != st {
				st = next
				prommetrics.RecordBadgeAwarded(def.Name, "rule")
				s.log.Info().
					Str("student_id", id).
					Str("badge", def.Name).
					Msg("Badge auto-awarded")
			}
		}
	}
	return st
}

// commit persists a new snapshot and publishes the class gauges. Must be
// called with the mutex held; the in-memory state only advances when the
// store accepted the snapshot.
func (s *Service) commit(next *models.AppState) error {
	if err := s.store.Save(next); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	s.state = next
	s.publishGauges()
	return nil
}

func (s *Service) publishGauges() {
	prommetrics.SetClassProgress(s.state.Progress.TotalXP, s.state.Progress.Stars)
	prommetrics.SetRosterSize(len(s.state.Students))
}

// changedStudents lists ids of students whose record identity changed between
// two snapshots. Structural sharing makes this a cheap pointer comparison.
func changedStudents(before, after *models.AppState) []string {
	var ids []string
	for _, s := range after.Students {
		if before.StudentByID(s.ID) != s {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Export serializes the current state for backup.
func (s *Service) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Export(s.state)
}

// Import replaces the current state with a sanitized imported payload.
func (s *Service) Import(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := store.Import(payload)
	if err != nil {
		return err
	}
	if err := s.commit(state); err != nil {
		return err
	}
	s.log.Info().
		Int("students", len(state.Students)).
		Int("log_entries", len(state.Log)).
		Msg("State imported")
	return nil
}
