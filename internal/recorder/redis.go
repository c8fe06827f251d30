package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"TrendSentinel/internal/model"
)

// RedisRecorder keeps the latest report per symbol in Redis with a TTL.
type RedisRecorder struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisRecorder(addr, password string, db int, ttl time.Duration) *RedisRecorder {
	return &RedisRecorder{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "trendsentinel:report:",
		ttl:    ttl,
	}
}

// Ping checks connectivity.
func (r *RedisRecorder) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRecorder) key(symbol string) string {
	return r.prefix + model.NormalizeSymbol(symbol)
}

func (r *RedisRecorder) RecordReport(ctx context.Context, rep *model.TrendReport) error {
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := r.client.Set(ctx, r.key(rep.Symbol), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisRecorder) LatestReport(ctx context.Context, symbol string) (*model.TrendReport, error) {
	data, err := r.client.Get(ctx, r.key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var rep model.TrendReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &rep, nil
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
