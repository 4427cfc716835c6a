package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/busbooking/config"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

const schedulesGenerationKey = "cache:schedules:gen"

// RedisCache stores schedule search results. Entries are keyed by a
// generation counter, so bumping the counter drops every cached search at once.
type RedisCache struct {
	client       *redis.Client
	schedulesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, schedulesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:       redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		schedulesTTL: schedulesTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetSchedules returns the cached result for filter and the generation it
// was looked up under. ok is false on a miss; gen is still valid then and
// must be handed back to SetSchedules.
func (c *RedisCache) GetSchedules(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, schedulesKey(gen, filter)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, false, nil
		}
		return nil, gen, false, fmt.Errorf("get schedules: %w", err)
	}

	var schedules []domain.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, gen, false, fmt.Errorf("decode schedules: %w", err)
	}
	return schedules, gen, true, nil
}

// SetSchedules stores schedules under gen, the generation observed before
// they were read from the store. If an invalidation happened in between the
// entry lands under a dead generation and is never served.
func (c *RedisCache) SetSchedules(ctx context.Context, gen int64, filter domain.ScheduleFilter, schedules []domain.Schedule) error {
	payload, err := json.Marshal(schedules)
	if err != nil {
		return fmt.Errorf("encode schedules: %w", err)
	}
	return c.client.Set(ctx, schedulesKey(gen, filter), payload, c.schedulesTTL).Err()
}

// InvalidateSchedules makes every cached search stale. Old entries expire by TTL.
func (c *RedisCache) InvalidateSchedules(ctx context.Context) error {
	return c.client.Incr(ctx, schedulesGenerationKey).Err()
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, schedulesGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get schedules generation: %w", err)
	}
	return gen, nil
}

func schedulesKey(gen int64, f domain.ScheduleFilter) string {
	date := "-"
	if f.Date != nil {
		date = f.Date.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("cache:schedules:%d:%s:%s:%s", gen, strings.ToLower(f.From), strings.ToLower(f.To), date)
}
