package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cashflow-forecast/internal/model"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each plan under Key(country) and lets Redis expire it at
// the plan's ExpiresAt.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// DialRedis connects and pings. addr may be a redis:// URL or host:port.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "redis://" + addr
	}
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Save(ctx context.Context, plan *model.ProjectionPlan) error {
	raw, err := encode(plan)
	if err != nil {
		return err
	}
	ttl := plan.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, Key(plan.Country), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", Key(plan.Country), err)
	}
	log.Printf("[RedisStore] saved %s (ttl %v)", plan.ID, ttl.Round(time.Second))
	return nil
}

func (s *RedisStore) Load(ctx context.Context, country model.Country) (*model.ProjectionPlan, error) {
	raw, err := s.client.Get(ctx, Key(country)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", Key(country), err)
	}
	return decode(raw)
}
