package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/store"
)

var (
	ErrNameTaken           = errors.New("participant name already taken")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrUnknownParticipant  = errors.New("unknown participant identity")
	ErrMessageNotFound     = errors.New("message not found")
	ErrNotMessageAuthor    = errors.New("requester is not the message author")
)

type chatServiceImpl struct {
	participants store.ParticipantStore
	messages     store.MessageStore
	now          func() time.Time
}

// NewChatService creates the chat service over the given stores.
func NewChatService(participants store.ParticipantStore, messages store.MessageStore) ChatService {
	return &chatServiceImpl{
		participants: participants,
		messages:     messages,
		now:          time.Now,
	}
}

func (s *chatServiceImpl) Join(ctx context.Context, name string) error {
	p := domain.Participant{
		Name:       name,
		LastStatus: s.now().UnixMilli(),
	}

	if err := s.participants.Insert(ctx, p); err != nil {
		if errors.Is(err, store.ErrParticipantExists) {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to register participant: %w", err)
	}

	// Cross-component invariant: a successful join always records the
	// arrival in the message log.
	_, err := s.messages.Append(ctx, domain.Message{
		From: name,
		To:   domain.RecipientEveryone,
		Text: domain.StatusEntered,
		Type: domain.TypeStatus,
	})
	if err != nil {
		return fmt.Errorf("failed to record arrival: %w", err)
	}
	return nil
}

func (s *chatServiceImpl) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	return s.participants.List(ctx)
}

func (s *chatServiceImpl) Heartbeat(ctx context.Context, name string) error {
	err := s.participants.UpdateLastStatus(ctx, name, s.now().UnixMilli())
	if err != nil {
		if errors.Is(err, store.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to renew heartbeat: %w", err)
	}
	return nil
}

func (s *chatServiceImpl) PostMessage(ctx context.Context, from string, req domain.PostMessageRequest) (domain.Message, error) {
	active, err := s.isActive(ctx, from)
	if err != nil {
		return domain.Message{}, err
	}
	if !active {
		return domain.Message{}, ErrUnknownParticipant
	}

	msg, err := s.messages.Append(ctx, domain.Message{
		From: from,
		To:   req.To,
		Text: req.Text,
		Type: req.Type,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

func (s *chatServiceImpl) ListMessages(ctx context.Context, user string, limit int) ([]domain.Message, error) {
	active, err := s.isActive(ctx, user)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrUnknownParticipant
	}

	return s.messages.VisibleTo(ctx, user, limit)
}

func (s *chatServiceImpl) DeleteMessage(ctx context.Context, id, requester string) error {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to load message: %w", err)
	}

	if msg.From != requester {
		return ErrNotMessageAuthor
	}

	if err := s.messages.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *chatServiceImpl) isActive(ctx context.Context, name string) (bool, error) {
	participants, err := s.participants.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	for _, p := range participants {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}
