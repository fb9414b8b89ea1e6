package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/abontemps/classquest/internal/cache"
	"github.com/abontemps/classquest/internal/engine"
	"github.com/abontemps/classquest/internal/models"
	"github.com/abontemps/classquest/internal/store"
	"github.com/abontemps/classquest/pkg/logger"
	"github.com/abontemps/classquest/test/mocks"
)

// Mock dependencies for testing
type mockStateProvider struct {
	state *models.AppState
}

func (m *mockStateProvider) State() *models.AppState { return m.state }

type mockAwardLog struct {
	records []store.AwardLogRecord
}

func (m *mockAwardLog) AwardsSince(since time.Time) ([]store.AwardLogRecord, error) {
	var out []store.AwardLogRecord
	for _, r := range m.records {
		if r.Timestamp >= since.UnixMilli() {
			out = append(out, r)
		}
	}
	return out, nil
}

func setupTestService(t *testing.T) (*Service, *mockStateProvider, *mockAwardLog) {
	t.Helper()

	st := engine.NewState(models.Settings{})
	st = engine.AddTeam(st, models.Team{ID: "t1", Name: "Red"})
	st = engine.AddStudent(st, models.Student{ID: "s1", Alias: "Ada", XP: 250, TeamID: "t1"})
	st = engine.AddStudent(st, models.Student{ID: "s2", Alias: "Grace", XP: 120})
	st = engine.AddStudent(st, models.Student{ID: "s3", Alias: "Linus", XP: 120})
	st.StudentByID("s1").Badges = []models.AwardedBadge{{ID: "b1", Name: "First"}}
	st.StudentByID("s2").Streaks = map[string]int{"q1": 7}

	states := &mockStateProvider{state: st}
	awards := &mockAwardLog{}
	log := logger.New("disabled", "console", "stderr")

	return NewService(states, awards, nil, time.Minute, log), states, awards
}

func TestGetLeaderboard_AllTimeXP(t *testing.T) {
	service, _, _ := setupTestService(t)

	entries, err := service.GetLeaderboard(context.Background(), "all_time", "xp", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	if entries[0].StudentID != "s1" || entries[0].Rank != 1 {
		t.Errorf("first entry = %+v, want s1 at rank 1", entries[0])
	}
	// XP tie between s2 and s3 breaks on alias
	if entries[1].Alias != "Grace" || entries[2].Alias != "Linus" {
		t.Errorf("tie break wrong: got %s then %s", entries[1].Alias, entries[2].Alias)
	}
	if entries[0].Team != "Red" {
		t.Errorf("team name = %q, want Red", entries[0].Team)
	}
}

func TestGetLeaderboard_Limit(t *testing.T) {
	service, _, _ := setupTestService(t)

	entries, err := service.GetLeaderboard(context.Background(), "all_time", "xp", 2)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}
}

func TestGetLeaderboard_PeriodUsesHistory(t *testing.T) {
	service, _, awards := setupTestService(t)

	now := time.Now()
	awards.records = []store.AwardLogRecord{
		{ID: "l1", StudentID: "s2", XP: 30, Timestamp: now.Add(-time.Hour).UnixMilli()},
		{ID: "l2", StudentID: "s1", XP: 5, Timestamp: now.Add(-2 * time.Hour).UnixMilli()},
		{ID: "l3", StudentID: "s1", XP: 100, Timestamp: now.Add(-40 * 24 * time.Hour).UnixMilli()},
	}

	entries, err := service.GetLeaderboard(context.Background(), "week", "xp", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}

	if entries[0].StudentID != "s2" || entries[0].XP != 30 {
		t.Errorf("weekly leader = %+v, want s2 with 30", entries[0])
	}
	if entries[1].StudentID != "s1" || entries[1].XP != 5 {
		t.Errorf("second = %+v, want s1 with 5 (old award excluded)", entries[1])
	}
}

func TestGetLeaderboard_Metrics(t *testing.T) {
	service, _, _ := setupTestService(t)

	entries, err := service.GetLeaderboard(context.Background(), "all_time", "badges", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if entries[0].StudentID != "s1" {
		t.Errorf("badge leader = %s, want s1", entries[0].StudentID)
	}

	entries, err = service.GetLeaderboard(context.Background(), "all_time", "streak", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if entries[0].StudentID != "s2" || entries[0].MaxStreak != 7 {
		t.Errorf("streak leader = %+v, want s2 with 7", entries[0])
	}
}

func TestGetTeamLeaderboard(t *testing.T) {
	service, _, _ := setupTestService(t)

	entries, err := service.GetTeamLeaderboard(context.Background(), "t1", "all_time", "xp", 0)
	if err != nil {
		t.Fatalf("GetTeamLeaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].StudentID != "s1" {
		t.Errorf("team board = %+v, want only s1", entries)
	}
}

func TestGetStudentRank(t *testing.T) {
	service, _, _ := setupTestService(t)

	rank, err := service.GetStudentRank(context.Background(), "s2", "all_time", "xp")
	if err != nil {
		t.Fatalf("GetStudentRank: %v", err)
	}
	if rank != 2 {
		t.Errorf("rank = %d, want 2", rank)
	}

	if _, err := service.GetStudentRank(context.Background(), "nope", "all_time", "xp"); err == nil {
		t.Error("expected error for unknown student")
	}
}

func TestGetStudentStats(t *testing.T) {
	service, _, _ := setupTestService(t)

	stats, err := service.GetStudentStats(context.Background(), "s2", "all_time")
	if err != nil {
		t.Fatalf("GetStudentStats: %v", err)
	}
	if stats.Alias != "Grace" {
		t.Errorf("alias = %q, want Grace", stats.Alias)
	}
	if stats.GlobalRank != 2 {
		t.Errorf("global rank = %d, want 2", stats.GlobalRank)
	}
	if stats.XPToNext != 80 {
		t.Errorf("xp to next level = %d, want 80", stats.XPToNext)
	}

	if _, err := service.GetStudentStats(context.Background(), "nope", "all_time"); err == nil {
		t.Error("expected error for unknown student")
	}
}

func TestGetLeaderboard_CacheHit(t *testing.T) {
	c := mocks.NewMockCache()

	st := engine.NewState(models.Settings{})
	st = engine.AddStudent(st, models.Student{ID: "s1", Alias: "Ada", XP: 50})
	states := &mockStateProvider{state: st}
	log := logger.New("disabled", "console", "stderr")
	service := NewService(states, &mockAwardLog{}, c, time.Minute, log)

	ctx := context.Background()
	if _, err := service.GetLeaderboard(ctx, "all_time", "xp", 0); err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("cached boards = %d, want 1", c.Len())
	}

	// A state change is invisible until the cache entry expires.
	states.state = engine.AddStudent(st, models.Student{ID: "s2", Alias: "Grace", XP: 999})
	entries, err := service.GetLeaderboard(ctx, "all_time", "xp", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected the cached board with 1 entry, got %d", len(entries))
	}
}

func TestGetLeaderboard_CacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewRedisCacheFromClient(client)

	st := engine.NewState(models.Settings{})
	st = engine.AddStudent(st, models.Student{ID: "s1", Alias: "Ada", XP: 50})
	states := &mockStateProvider{state: st}
	log := logger.New("disabled", "console", "stderr")
	service := NewService(states, &mockAwardLog{}, c, time.Minute, log)

	ctx := context.Background()
	entries, err := service.GetLeaderboard(ctx, "all_time", "xp", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if entries[0].XP != 50 {
		t.Fatalf("XP = %d, want 50", entries[0].XP)
	}

	// Roster changes but the cached board is still served until the TTL.
	states.state = engine.AddStudent(st, models.Student{ID: "s2", Alias: "Grace", XP: 999})
	entries, err = service.GetLeaderboard(ctx, "all_time", "xp", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected cached board with 1 entry, got %d", len(entries))
	}

	mr.FastForward(2 * time.Minute)
	entries, err = service.GetLeaderboard(ctx, "all_time", "xp", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected rebuilt board with 2 entries, got %d", len(entries))
	}
}
