package service

import (
	"context"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
)

// ChatService owns the presence and messaging rules of the room.
type ChatService interface {
	// Join registers a participant and records the "entered" status
	// message. Returns ErrNameTaken if the name is in use.
	Join(ctx context.Context, name string) error

	// ListParticipants returns all active participants.
	ListParticipants(ctx context.Context) ([]domain.Participant, error)

	// Heartbeat renews the participant's staleness clock. Returns
	// ErrParticipantNotFound for unknown names; it never creates one.
	Heartbeat(ctx context.Context, name string) error

	// PostMessage appends a chat message authored by from. Returns
	// ErrUnknownParticipant if from is not an active participant.
	PostMessage(ctx context.Context, from string, req domain.PostMessageRequest) (domain.Message, error)

	// ListMessages returns the messages visible to user, most recent
	// first, truncated to limit when limit > 0. Returns
	// ErrUnknownParticipant if user is not active.
	ListMessages(ctx context.Context, user string, limit int) ([]domain.Message, error)

	// DeleteMessage removes a message. Returns ErrMessageNotFound if no
	// such message exists and ErrNotMessageAuthor if requester did not
	// write it.
	DeleteMessage(ctx context.Context, id, requester string) error
}
