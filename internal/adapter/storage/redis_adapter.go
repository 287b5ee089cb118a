package storage

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps one session per profile in a Redis hash.
type RedisSessionStore struct {
	client *redis.Client
	key    string
}

var _ port.SessionStore = (*RedisSessionStore)(nil)

func NewRedisSessionStore(client *redis.Client, profile string) *RedisSessionStore {
	return &RedisSessionStore{client: client, key: sessionKeyPrefix + profile}
}

func (r *RedisSessionStore) Load(ctx context.Context) (domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return domain.Session{}, err
	}

	isAdmin, _ := strconv.ParseBool(fields["is_admin"])
	return domain.Session{
		Token:   fields["token"],
		Email:   fields["email"],
		IsAdmin: isAdmin,
	}, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, session domain.Session) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		pipe.HSet(ctx, r.key,
			"token", session.Token,
			"email", session.Email,
			"is_admin", strconv.FormatBool(session.IsAdmin),
		)
		return nil
	})
	return err
}

func (r *RedisSessionStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
