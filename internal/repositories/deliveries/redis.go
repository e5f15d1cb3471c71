package deliveries

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	eventsKey = "deliveries:events"

	fieldPublishes       = "publishes"
	fieldDeliveries      = "deliveries"
	fieldFailures        = "failures"
	fieldLastPublishedAt = "last_published_at"
)

func statKey(event string) string {
	return fmt.Sprintf("deliveries:event:%s", event)
}

type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// RedisConfig holds the dependencies of the redis repository
type RedisConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
}

// NewRedisRepository creates a Redis-backed delivery statistics repository
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, errors.InvalidArgument("redis client is required")
	}

	timeProvider := cfg.TimeProvider
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}

	return &redisRepo{
		client:       cfg.Client,
		timeProvider: timeProvider,
	}, nil
}

// NewRedis creates a Redis-backed repository with the real clock
func NewRedis(client redis.UniversalClient) Repository {
	repo, err := NewRedisRepository(&RedisConfig{Client: client})
	if err != nil {
		// This should never happen with a non-nil client
		panic(err)
	}
	return repo
}

func (r *redisRepo) Record(ctx context.Context, event string, delta Delta) error {
	if event == "" {
		return errors.InvalidArgument("event is required")
	}
	if delta.IsZero() {
		return nil
	}

	key := statKey(event)
	pipe := r.client.Pipeline()
	pipe.HIncrBy(ctx, key, fieldPublishes, delta.Publishes)
	pipe.HIncrBy(ctx, key, fieldDeliveries, delta.Deliveries)
	pipe.HIncrBy(ctx, key, fieldFailures, delta.Failures)
	if delta.Publishes > 0 {
		pipe.HSet(ctx, key, fieldLastPublishedAt, r.timeProvider.Now().UnixNano())
	}
	pipe.SAdd(ctx, eventsKey, event)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Unavailable(err, "failed to record deliveries in Redis").WithMeta("event", event)
	}

	return nil
}

func (r *redisRepo) Get(ctx context.Context, event string) (*Stat, error) {
	fields, err := r.client.HGetAll(ctx, statKey(event)).Result()
	if err != nil {
		return nil, errors.Unavailable(err, "failed to get deliveries from Redis").WithMeta("event", event)
	}
	if len(fields) == 0 {
		return nil, errors.NotFoundf("no deliveries recorded for event %q", event)
	}

	return toStat(event, fields)
}

func (r *redisRepo) List(ctx context.Context) ([]*Stat, error) {
	events, err := r.client.SMembers(ctx, eventsKey).Result()
	if err != nil {
		return nil, errors.Unavailable(err, "failed to list delivery events from Redis")
	}

	stats := make([]*Stat, len(events))

	g, ctx := errgroup.WithContext(ctx)
	for i, event := range events {
		g.Go(func() error {
			stat, err := r.Get(ctx, event)
			if errors.IsNotFound(err) {
				// reset between SMembers and HGetAll
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "failed to get deliveries for %s", event)
			}
			stats[i] = stat
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats = slices.DeleteFunc(stats, func(s *Stat) bool { return s == nil })
	slices.SortFunc(stats, func(a, b *Stat) int { return strings.Compare(a.Event, b.Event) })
	return stats, nil
}

func (r *redisRepo) Reset(ctx context.Context, event string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, statKey(event))
	pipe.SRem(ctx, eventsKey, event)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Unavailable(err, "failed to reset deliveries in Redis").WithMeta("event", event)
	}

	return nil
}

func toStat(event string, fields map[string]string) (*Stat, error) {
	stat := &Stat{Event: event}

	counters := map[string]*int64{
		fieldPublishes:  &stat.Publishes,
		fieldDeliveries: &stat.Deliveries,
		fieldFailures:   &stat.Failures,
	}
	for field, dst := range counters {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInternal, "corrupt delivery counter").
				WithMeta("event", event).
				WithMeta("field", field)
		}
		*dst = n
	}

	if raw, ok := fields[fieldLastPublishedAt]; ok {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInternal, "corrupt last published time").
				WithMeta("event", event)
		}
		stat.LastPublishedAt = time.Unix(0, nanos).UTC()
	}

	return stat, nil
}
