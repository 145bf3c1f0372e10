package remotestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds the optimistic retry loop. The store's WATCH/EXEC
// primitive retries against a fresh read on every conflict; a loop that
// never wins within this many rounds is reported as unreachable.
const maxTxRetries = 16

// RedisStore implements Store on a Redis keyspace. Record paths map
// directly to keys, and values round-trip as strings, which is why all
// readers coerce (see inventory.CoerceStock).
type RedisStore struct {
	client *redis.Client

	// OnConflict, when set, is invoked once per optimistic-transaction
	// retry. Used for metrics.
	OnConflict func(path string)
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, path string) (any, error) {
	val, err := s.client.Get(ctx, path).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnreachable, path, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, path string, value any) error {
	if err := s.client.Set(ctx, path, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrUnreachable, path, err)
	}
	return nil
}

func (s *RedisStore) AtomicUpdate(ctx context.Context, path string, fn UpdateFunc) (bool, any, error) {
	var (
		committed bool
		result    any
	)

	txf := func(tx *redis.Tx) error {
		var current any
		val, err := tx.Get(ctx, path).Result()
		switch {
		case err == nil:
			current = val
		case errors.Is(err, redis.Nil):
			current = nil
		default:
			return err
		}

		next, err := fn(current)
		if err != nil {
			if errors.Is(err, ErrAbort) {
				committed = false
				result = current
				return nil
			}
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, path, next, 0)
			return nil
		})
		if err != nil {
			return err
		}
		committed = true
		result = next
		return nil
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, path)
		if err == nil {
			return committed, result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Lost the race; go around with a fresh read.
			if s.OnConflict != nil {
				s.OnConflict(path)
			}
			continue
		}
		return false, nil, fmt.Errorf("%w: update %s: %v", ErrUnreachable, path, err)
	}
	return false, nil, fmt.Errorf("%w: update %s: conflict retries exhausted", ErrUnreachable, path)
}
