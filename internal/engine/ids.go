package engine

import "github.com/google/uuid"

// IDGenerator produces unique ids for log entries and badge awards. Entity ids
// (students, teams, quests) arrive already generated by the caller; the engine
// only generates ids for the records it creates itself.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random UUID v4 ids.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }
