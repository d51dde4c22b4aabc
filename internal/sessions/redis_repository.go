package sessions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps each session in a hash under prefix+token that
// expires together with the session.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based session repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(token string) string {
	return r.prefix + token
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	if !s.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("session %s already expired", s.ID)
	}
	key := r.key(s.SessionToken)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"id", s.ID,
			"user_id", s.UserID,
			"expires_at", s.ExpiresAt.UnixMilli(),
			"created_at", s.CreatedAt.UnixMilli(),
		)
		p.ExpireAt(ctx, key, s.ExpiresAt)
		return nil
	})
	return err
}

func (r *RedisRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(token)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session hash expires_at: %w", err)
	}
	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	return &Session{
		ID:           fields["id"],
		SessionToken: token,
		UserID:       fields["user_id"],
		ExpiresAt:    time.UnixMilli(expires).UTC(),
		CreatedAt:    time.UnixMilli(created).UTC(),
	}, nil
}

func (r *RedisRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}
