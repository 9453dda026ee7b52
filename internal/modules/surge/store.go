// README: Surge counters backed by Redis, one key per kind/cell/window.
package surge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(client *redis.Client, window time.Duration) *Store {
	return &Store{redis: client, ttl: 2 * window}
}

func counterKey(kind Kind, cell string, bucket int64) string {
	return fmt.Sprintf("surge:%s:%s:%d", kind, cell, bucket)
}

func (s *Store) Incr(ctx context.Context, kind Kind, cell string, bucket int64) error {
	key := counterKey(kind, cell, bucket)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *Store) Counts(ctx context.Context, cell string, bucket int64) (Counts, error) {
	vals, err := s.redis.MGet(ctx,
		counterKey(KindDemand, cell, bucket),
		counterKey(KindSupply, cell, bucket),
	).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Counts{}, err
	}
	var c Counts
	if len(vals) == 2 {
		c.Demand = parseCount(vals[0])
		c.Supply = parseCount(vals[1])
	}
	return c, nil
}

func parseCount(v any) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
