package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/abontemps/classquest/internal/models"
	"github.com/abontemps/classquest/pkg/logger"
)

// Snapshot is one persisted revision of the full application state. The
// latest row wins on load; older rows are kept for a while as a recovery
// trail and pruned by the scheduler.
type Snapshot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Version   int       `gorm:"not null" json:"version"`
	Payload   []byte    `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Snapshot.
func (Snapshot) TableName() string {
	return "snapshots"
}

// AwardLogRecord mirrors one immutable engine log entry for reporting
// queries. The snapshot payload stays the source of truth.
type AwardLogRecord struct {
	ID        string `gorm:"primaryKey;size:64" json:"id"`
	Timestamp int64  `gorm:"not null;index" json:"timestamp"`
	StudentID string `gorm:"not null;index;size:64" json:"student_id"`
	QuestID   string `gorm:"size:64" json:"quest_id"`
	QuestName string `gorm:"size:255" json:"quest_name"`
	XP        int    `gorm:"not null" json:"xp"`
	Note      string `gorm:"type:text" json:"note"`
	Category  string `gorm:"size:100;index" json:"category"`
}

// TableName specifies the table name for AwardLogRecord.
func (AwardLogRecord) TableName() string {
	return "award_log"
}

// StateStore saves and loads application state snapshots.
type StateStore struct {
	db  *DB
	log *logger.Logger
}

// NewStateStore creates a state store.
func NewStateStore(db *DB, log *logger.Logger) *StateStore {
	return &StateStore{db: db, log: log}
}

// Save persists the state as a new snapshot revision and re-mirrors the award
// log. The mirror is replaced wholesale inside the transaction: the log is
// small at classroom scale and undo/cascade deletions make incremental
// syncing not worth the bookkeeping.
func (s *StateStore) Save(state *models.AppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&Snapshot{Version: state.Version, Payload: payload}).Error; err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		if err := tx.Where("1 = 1").Delete(&AwardLogRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear award log mirror: %w", err)
		}
		if len(state.Log) == 0 {
			return nil
		}

		records := make([]AwardLogRecord, 0, len(state.Log))
		for _, entry := range state.Log {
			records = append(records, AwardLogRecord{
				ID:        entry.ID,
				Timestamp: entry.Timestamp,
				StudentID: entry.StudentID,
				QuestID:   entry.QuestID,
				QuestName: entry.QuestName,
				XP:        entry.XP,
				Note:      entry.Note,
				Category:  entry.Category,
			})
		}
		if err := tx.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("failed to mirror award log: %w", err)
		}
		return nil
	})
}

// Load returns the most recent snapshot, sanitized, or nil when the store is
// empty.
func (s *StateStore) Load() (*models.AppState, error) {
	var snap Snapshot
	err := s.db.Order("id DESC").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var state models.AppState
	if err := json.Unmarshal(snap.Payload, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %d: %w", snap.ID, err)
	}

	return Sanitize(&state), nil
}

// Prune deletes all but the most recent keep snapshots.
func (s *StateStore) Prune(keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}

	var cutoff Snapshot
	err := s.db.Order("id DESC").Offset(keep - 1).First(&cutoff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find prune cutoff: %w", err)
	}

	res := s.db.Where("id < ?", cutoff.ID).Delete(&Snapshot{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RecentAwards returns the newest mirrored log records, most recent first.
func (s *StateStore) RecentAwards(limit int) ([]AwardLogRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []AwardLogRecord
	err := s.db.Order("timestamp DESC, id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query award log: %w", err)
	}
	return records, nil
}

// AwardsSince returns mirrored log records with a timestamp at or after the
// given instant, used for period-filtered leaderboards.
func (s *StateStore) AwardsSince(since time.Time) ([]AwardLogRecord, error) {
	var records []AwardLogRecord
	err := s.db.Where("timestamp >= ?", since.UnixMilli()).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query award log: %w", err)
	}
	return records, nil
}

// Export serializes the state for download/backup.
func Export(state *models.AppState) ([]byte, error) {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export state: %w", err)
	}
	return payload, nil
}

// Import parses an exported payload and returns the sanitized state. The
// caller decides whether to persist it.
func Import(payload []byte) (*models.AppState, error) {
	var state models.AppState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to parse imported state: %w", err)
	}
	return Sanitize(&state), nil
}
