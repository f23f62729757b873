package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
)

func TestMemoryStore_Insert_Duplicate(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	req.NoError(s.Insert(ctx, domain.Participant{Name: "Ana", LastStatus: 1000}))

	err := s.Insert(ctx, domain.Participant{Name: "Ana", LastStatus: 2000})
	req.ErrorIs(err, ErrParticipantExists)

	participants, err := s.List(ctx)
	req.NoError(err)
	req.Len(participants, 1)
	req.Equal(int64(1000), participants[0].LastStatus)
}

func TestMemoryStore_Insert_ConcurrentSameName(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	const attempts = 32
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Insert(ctx, domain.Participant{Name: "Ana", LastStatus: int64(i)})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			req.ErrorIs(err, ErrParticipantExists)
		}
	}
	req.Equal(1, successes)
}

func TestMemoryStore_UpdateLastStatus(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	req.NoError(s.Insert(ctx, domain.Participant{Name: "Ana", LastStatus: 1000}))
	req.NoError(s.UpdateLastStatus(ctx, "Ana", 5000))

	participants, err := s.List(ctx)
	req.NoError(err)
	req.Equal(int64(5000), participants[0].LastStatus)
}

func TestMemoryStore_UpdateLastStatus_Unknown(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()

	err := s.UpdateLastStatus(context.Background(), "Bob", 5000)
	req.ErrorIs(err, ErrParticipantNotFound)

	// It must never create the participant.
	participants, err := s.List(context.Background())
	req.NoError(err)
	req.Empty(participants)
}

func TestMemoryStore_SweepStale(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC)
	req.NoError(s.Insert(ctx, domain.Participant{Name: "stale", LastStatus: base.UnixMilli()}))
	req.NoError(s.Insert(ctx, domain.Participant{Name: "fresh", LastStatus: base.Add(9 * time.Second).UnixMilli()}))

	cutoff := base.Add(11 * time.Second).Add(-10 * time.Second)
	removed, err := s.SweepStale(ctx, cutoff)
	req.NoError(err)
	req.Len(removed, 1)
	req.Equal("stale", removed[0].Name)

	participants, err := s.List(ctx)
	req.NoError(err)
	req.Len(participants, 1)
	req.Equal("fresh", participants[0].Name)

	// A second sweep with the same cutoff removes nothing.
	removed, err = s.SweepStale(ctx, cutoff)
	req.NoError(err)
	req.Empty(removed)
}

func TestMemoryStore_Append_AssignsIDAndTime(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	s.SetClock(func() time.Time {
		return time.Date(2023, 5, 10, 20, 4, 37, 0, time.UTC)
	})

	msg, err := s.Append(context.Background(), domain.Message{
		From: "Ana", To: domain.RecipientEveryone, Text: "hi", Type: domain.TypeMessage,
	})
	req.NoError(err)
	req.NotEmpty(msg.ID)
	req.Equal("20:04:37", msg.Time)

	other, err := s.Append(context.Background(), domain.Message{
		From: "Ana", To: domain.RecipientEveryone, Text: "again", Type: domain.TypeMessage,
	})
	req.NoError(err)
	req.NotEqual(msg.ID, other.ID)
}

func TestMemoryStore_VisibleTo(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	mustAppend := func(from, to, typ string) domain.Message {
		m, err := s.Append(ctx, domain.Message{From: from, To: to, Text: "x", Type: typ})
		req.NoError(err)
		return m
	}

	broadcast := mustAppend("Ana", domain.RecipientEveryone, domain.TypeMessage)
	toBob := mustAppend("Ana", "Bob", domain.TypePrivate)
	toCarol := mustAppend("Ana", "Carol", domain.TypePrivate)
	fromBob := mustAppend("Bob", "Carol", domain.TypePrivate)

	visible, err := s.VisibleTo(ctx, "Bob", 0)
	req.NoError(err)

	ids := make([]string, len(visible))
	for i, m := range visible {
		ids[i] = m.ID
	}
	req.Contains(ids, broadcast.ID)
	req.Contains(ids, toBob.ID)
	req.Contains(ids, fromBob.ID) // sender sees their own private message
	req.NotContains(ids, toCarol.ID)

	// Most recent first.
	req.Equal(fromBob.ID, visible[0].ID)
}

func TestMemoryStore_VisibleTo_Limit(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	var last domain.Message
	for i := 0; i < 5; i++ {
		m, err := s.Append(ctx, domain.Message{
			From: "Ana", To: domain.RecipientEveryone, Text: "x", Type: domain.TypeMessage,
		})
		req.NoError(err)
		last = m
	}

	visible, err := s.VisibleTo(ctx, "Bob", 2)
	req.NoError(err)
	req.Len(visible, 2)
	req.Equal(last.ID, visible[0].ID)
}

func TestMemoryStore_Delete(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	m, err := s.Append(ctx, domain.Message{
		From: "Ana", To: domain.RecipientEveryone, Text: "x", Type: domain.TypeMessage,
	})
	req.NoError(err)

	req.NoError(s.Delete(ctx, m.ID))

	_, err = s.GetByID(ctx, m.ID)
	req.ErrorIs(err, ErrMessageNotFound)

	req.ErrorIs(s.Delete(ctx, m.ID), ErrMessageNotFound)

	visible, err := s.VisibleTo(ctx, "Ana", 0)
	req.NoError(err)
	req.Empty(visible)
}
