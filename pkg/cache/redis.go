package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/google/uuid"
	rds "github.com/redis/go-redis/v9"
)

type Redis struct {
	Client *rds.Client
	Logger *logger.Logger
}

var ErrCacheMiss = errors.New("cache miss")

const lockRetryInterval = 25 * time.Millisecond

// releaseLock deletes the lock only while it still carries our token, so an
// expired lock taken over by someone else is left alone.
var releaseLock = rds.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func New(url string, logger *logger.Logger) (*Redis, func(), error) {
	ops, err := rds.ParseURL(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	redis := &Redis{
		Client: rds.NewClient(ops),
		Logger: logger,
	}

	if err := redis.Ping(); err != nil {
		_ = redis.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	cleanUp := func() {
		_ = redis.Close()
	}

	return redis, cleanUp, nil
}

func (r *Redis) Ping() error {
	return r.Client.Ping(context.Background()).Err()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func (r *Redis) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}

	r.Logger.Debug().Str("key", key).Msg("setting cache value")
	return r.Client.Set(ctx, key, v, expiration).Err()
}

func (r *Redis) Get(ctx context.Context, key string, dest any) error {
	r.Logger.Debug().Str("key", key).Msg("getting cache value")
	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rds.Nil) {
			r.Logger.Debug().Str("key", key).Msg("cache miss")
			return ErrCacheMiss
		}
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	r.Logger.Debug().Str("key", key).Msg("deleting cache value")
	return r.Client.Del(ctx, key).Err()
}

// Lock acquires key with SET NX, polling until ctx is done. The lock expires
// after ttl if it is never released.
func (r *Redis) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := r.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	return func() {
		if err := releaseLock.Run(context.Background(), r.Client, []string{key}, token).Err(); err != nil {
			r.Logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}, nil
}
