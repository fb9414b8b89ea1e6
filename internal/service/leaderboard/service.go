// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/abontemps/classquest/internal/cache"
	"github.com/abontemps/classquest/internal/models"
	"github.com/abontemps/classquest/internal/store"
	"github.com/abontemps/classquest/pkg/logger"
)

// StateProvider exposes the current class snapshot.
type StateProvider interface {
	State() *models.AppState
}

// AwardLogRepository interface for award history queries.
type AwardLogRepository interface {
	AwardsSince(since time.Time) ([]store.AwardLogRecord, error)
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	StudentID  string `json:"student_id"`
	Alias      string `json:"alias"`
	Team       string `json:"team"`
	XP         int    `json:"xp"`
	Level      int    `json:"level"`
	BadgeCount int    `json:"badge_count"`
	MaxStreak  int    `json:"max_streak"`
	Rank       int    `json:"rank"`
}

// Service builds leaderboards from the class state and the award history.
// Results are cached for the configured TTL; staleness is bounded by it.
type Service struct {
	states StateProvider
	awards AwardLogRepository
	cache  cache.Cache
	ttl    time.Duration
	log    *logger.Logger
}

// NewService creates a new leaderboard service. The cache is optional; pass
// nil to build every leaderboard from scratch.
func NewService(states StateProvider, awards AwardLogRepository, c cache.Cache, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		states: states,
		awards: awards,
		cache:  c,
		ttl:    ttl,
		log:    log,
	}
}

// GetLeaderboard returns the class leaderboard for a given period and metric.
func (s *Service) GetLeaderboard(ctx context.Context, period, metric string, limit int) ([]Entry, error) {
	return s.getLeaderboard(ctx, "", period, metric, limit)
}

// GetTeamLeaderboard returns the leaderboard restricted to a single team.
func (s *Service) GetTeamLeaderboard(ctx context.Context, teamID, period, metric string, limit int) ([]Entry, error) {
	return s.getLeaderboard(ctx, teamID, period, metric, limit)
}

func (s *Service) getLeaderboard(ctx context.Context, teamID, period, metric string, limit int) ([]Entry, error) {
	cacheKey := fmt.Sprintf("leaderboard:%s:%s:%s:%d", teamID, period, metric, limit)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	state := s.states.State()

	periodXP, err := s.periodXP(state, period)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(state.Students))
	for _, student := range state.Students {
		if teamID != "" && student.TeamID != teamID {
			continue
		}

		xp := student.XP
		if periodXP != nil {
			xp = periodXP[student.ID]
		}

		entries = append(entries, Entry{
			StudentID:  student.ID,
			Alias:      student.Alias,
			Team:       s.teamName(state, student.TeamID),
			XP:         xp,
			Level:      student.Level,
			BadgeCount: len(student.Badges),
			MaxStreak:  maxStreak(student),
		})
	}

	s.sortLeaderboard(entries, metric)

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	s.toCache(ctx, cacheKey, entries)
	return entries, nil
}

// GetStudentRank returns the rank of a student for a specific metric in a period.
func (s *Service) GetStudentRank(ctx context.Context, studentID, period, metric string) (int, error) {
	leaderboard, err := s.GetLeaderboard(ctx, period, metric, 0)
	if err != nil {
		return 0, err
	}

	for _, entry := range leaderboard {
		if entry.StudentID == studentID {
			return entry.Rank, nil
		}
	}

	return 0, fmt.Errorf("student not found in leaderboard")
}

// periodXP sums XP per student from the award history for bounded periods.
// Returns nil for all-time, meaning the caller should use the roster totals.
func (s *Service) periodXP(state *models.AppState, period string) (map[string]int, error) {
	since, allTime := periodStart(period)
	if allTime {
		return nil, nil
	}

	records, err := s.awards.AwardsSince(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get award history: %w", err)
	}

	totals := make(map[string]int, len(state.Students))
	for _, r := range records {
		totals[r.StudentID] += r.XP
	}
	return totals, nil
}

// sortLeaderboard sorts leaderboard entries by the specified metric,
// descending. Ties break on alias so ranks are stable across rebuilds.
func (s *Service) sortLeaderboard(entries []Entry, metric string) {
	key := func(e Entry) int { return e.XP }

	switch metric {
	case "badges":
		key = func(e Entry) int { return e.BadgeCount }
	case "streak":
		key = func(e Entry) int { return e.MaxStreak }
	case "level":
		key = func(e Entry) int { return e.Level }
	default:
		// Default to xp
	}

	sort.Slice(entries, func(i, j int) bool {
		if key(entries[i]) != key(entries[j]) {
			return key(entries[i]) > key(entries[j])
		}
		return entries[i].Alias < entries[j].Alias
	})
}

func (s *Service) teamName(state *models.AppState, teamID string) string {
	if teamID == "" {
		return ""
	}
	if team := state.TeamByID(teamID); team != nil {
		return team.Name
	}
	return ""
}

func (s *Service) fromCache(ctx context.Context, key string) ([]Entry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached leaderboard")
		return nil, false
	}
	return entries, true
}

func (s *Service) toCache(ctx context.Context, key string, entries []Entry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache leaderboard")
	}
}

func maxStreak(student *models.Student) int {
	best := 0
	for _, n := range student.Streaks {
		if n > best {
			best = n
		}
	}
	return best
}

// periodStart resolves a period name to its start time. The second return is
// true when the period covers all history.
func periodStart(period string) (time.Time, bool) {
	now := time.Now()
	switch period {
	case "day":
		return now.Add(-24 * time.Hour), false
	case "week":
		return now.Add(-7 * 24 * time.Hour), false
	case "month":
		return now.Add(-30 * 24 * time.Hour), false
	default:
		return time.Time{}, true
	}
}
