// Package store defines the persistence contract for the two collections
// the service keeps: participants (keyed by name) and messages (keyed by
// generated id).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
)

var (
	ErrParticipantExists   = errors.New("participant already exists")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMessageNotFound     = errors.New("message not found")
)

// ParticipantStore tracks active participants and their heartbeat clocks.
type ParticipantStore interface {
	// Insert registers a participant. Returns ErrParticipantExists if an
	// active participant with the same name exists; concurrent inserts of
	// the same name yield exactly one success.
	Insert(ctx context.Context, p domain.Participant) error

	// UpdateLastStatus renews the heartbeat clock. The update is keyed
	// strictly by name so it cannot race a concurrent sweep into touching
	// the wrong record. Returns ErrParticipantNotFound if absent.
	UpdateLastStatus(ctx context.Context, name string, lastStatus int64) error

	// List returns all active participants, order not significant.
	List(ctx context.Context) ([]domain.Participant, error)

	// SweepStale removes and returns every participant whose lastStatus is
	// older than cutoff. Removal is keyed on (name, snapshotted
	// lastStatus): a heartbeat landing between snapshot and removal keeps
	// the participant.
	SweepStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error)

	Close() error
}

// MessageStore is the append-only log of chat events.
type MessageStore interface {
	// Append stores the message, assigning its id and display time.
	Append(ctx context.Context, m domain.Message) (domain.Message, error)

	// VisibleTo returns the messages the named participant may see:
	// broadcasts, messages addressed to them, and their own. Most recent
	// first; limit > 0 truncates the result.
	VisibleTo(ctx context.Context, name string, limit int) ([]domain.Message, error)

	// GetByID returns a message or ErrMessageNotFound.
	GetByID(ctx context.Context, id string) (domain.Message, error)

	// Delete removes a message permanently or returns ErrMessageNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}
