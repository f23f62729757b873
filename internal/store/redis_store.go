package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore is a Redis-backed implementation of both collections.
// Suitable for deployments where state must survive the process.
//
// Key layout ({prefix} defaults to "chat:"):
//
//	{prefix}participants     HASH name -> lastStatus (unix millis)
//	{prefix}messages         HASH id -> message JSON
//	{prefix}messages:order   LIST of ids in insertion order
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// heartbeatScript renews lastStatus only for an existing participant, so a
// heartbeat can never resurrect an evicted name.
var heartbeatScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// sweepScript deletes a participant only if its lastStatus still matches
// the snapshot taken when staleness was computed. A heartbeat that lands
// in between changes the value and wins the race.
var sweepScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) == ARGV[2] then
	redis.call('HDEL', KEYS[1], ARGV[1])
	return 1
end
return 0
`)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "chat:"
	}

	return &RedisStore{client: client, keyPrefix: prefix}, nil
}

func (s *RedisStore) participantsKey() string {
	return s.keyPrefix + "participants"
}

func (s *RedisStore) messagesKey() string {
	return s.keyPrefix + "messages"
}

func (s *RedisStore) messageOrderKey() string {
	return s.keyPrefix + "messages:order"
}

func (s *RedisStore) Insert(ctx context.Context, p domain.Participant) error {
	ok, err := s.client.HSetNX(ctx, s.participantsKey(), p.Name, p.LastStatus).Result()
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	if !ok {
		return ErrParticipantExists
	}
	return nil
}

func (s *RedisStore) UpdateLastStatus(ctx context.Context, name string, lastStatus int64) error {
	updated, err := heartbeatScript.Run(ctx, s.client,
		[]string{s.participantsKey()}, name, lastStatus).Int()
	if err != nil {
		return fmt.Errorf("failed to renew lastStatus: %w", err)
	}
	if updated == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]domain.Participant, error) {
	entries, err := s.client.HGetAll(ctx, s.participantsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	result := make([]domain.Participant, 0, len(entries))
	for name, raw := range entries {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt lastStatus for %q: %w", name, err)
		}
		result = append(result, domain.Participant{Name: name, LastStatus: ts})
	}
	return result, nil
}

func (s *RedisStore) SweepStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	entries, err := s.client.HGetAll(ctx, s.participantsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot participants: %w", err)
	}

	cutoffMillis := cutoff.UnixMilli()

	var removed []domain.Participant
	for name, raw := range entries {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt lastStatus for %q: %w", name, err)
		}
		if ts >= cutoffMillis {
			continue
		}

		// Compare-and-delete against the snapshot value; a concurrent
		// heartbeat keeps the participant.
		deleted, err := sweepScript.Run(ctx, s.client,
			[]string{s.participantsKey()}, name, raw).Int()
		if err != nil {
			return removed, fmt.Errorf("failed to evict %q: %w", name, err)
		}
		if deleted == 1 {
			removed = append(removed, domain.Participant{Name: name, LastStatus: ts})
		}
	}
	return removed, nil
}

func (s *RedisStore) Append(ctx context.Context, m domain.Message) (domain.Message, error) {
	m.ID = uuid.NewString()
	m.Time = time.Now().Format(domain.TimeLayout)

	data, err := json.Marshal(m)
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.messagesKey(), m.ID, data)
	pipe.RPush(ctx, s.messageOrderKey(), m.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	return m, nil
}

func (s *RedisStore) VisibleTo(ctx context.Context, name string, limit int) ([]domain.Message, error) {
	ids, err := s.client.LRange(ctx, s.messageOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read message order: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	raw, err := s.client.HMGet(ctx, s.messagesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	// Walk newest-first; entries missing from the hash were deleted
	// between the two reads and are skipped.
	var result []domain.Message
	for i := len(raw) - 1; i >= 0; i-- {
		data, ok := raw[i].(string)
		if !ok {
			continue
		}
		var m domain.Message
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return nil, fmt.Errorf("corrupt message %q: %w", ids[i], err)
		}
		if m.To == domain.RecipientEveryone || m.To == name || m.From == name {
			result = append(result, m)
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (s *RedisStore) GetByID(ctx context.Context, id string) (domain.Message, error) {
	data, err := s.client.HGet(ctx, s.messagesKey(), id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.Message{}, ErrMessageNotFound
		}
		return domain.Message{}, fmt.Errorf("failed to get message: %w", err)
	}

	var m domain.Message
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.Message{}, fmt.Errorf("corrupt message %q: %w", id, err)
	}
	return m, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	deleted, err := s.client.HDel(ctx, s.messagesKey(), id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if deleted == 0 {
		return ErrMessageNotFound
	}
	// Drop the id from the order list as well; VisibleTo tolerates a
	// dangling id if this fails between the two commands.
	if err := s.client.LRem(ctx, s.messageOrderKey(), 1, id).Err(); err != nil {
		return fmt.Errorf("failed to remove message from order list: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var (
	_ ParticipantStore = (*RedisStore)(nil)
	_ MessageStore     = (*RedisStore)(nil)
)
