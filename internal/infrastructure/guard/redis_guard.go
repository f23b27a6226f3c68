package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jan-server/services/report-api/internal/domain/generation"
)

const keyPrefix = "report-api:generating:"

// RedisGuard shares the per-conversation generation slot across replicas.
// Slots expire after ttl so a crashed replica cannot hold one forever.
type RedisGuard struct {
	client redis.UniversalClient
	rs     *redsync.Redsync
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisGuard connects to Redis and verifies the connection.
func NewRedisGuard(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) (*RedisGuard, error) {
	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Msg("Ignoring non-zero DB when using Redis Cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Msg("Successfully connected to Redis generation guard")
	return &RedisGuard{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		log:    log.With().Str("component", "redis-guard").Logger(),
	}, nil
}

// TryAcquire implements generation.Guard with a single lock attempt.
func (g *RedisGuard) TryAcquire(ctx context.Context, conversationID string) (generation.Lease, bool, error) {
	mutex := g.rs.NewMutex(keyPrefix+conversationID,
		redsync.WithExpiry(g.ttl),
		redsync.WithTries(1),
	)

	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}
		if held, heldErr := g.IsHeld(ctx, conversationID); heldErr == nil && held {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &redisLease{mutex: mutex, log: g.log}, true, nil
}

// IsHeld implements generation.Guard.
func (g *RedisGuard) IsHeld(ctx context.Context, conversationID string) (bool, error) {
	n, err := g.client.Exists(ctx, keyPrefix+conversationID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks that Redis is reachable.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (g *RedisGuard) Close() error {
	return g.client.Close()
}

type redisLease struct {
	mutex *redsync.Mutex
	log   zerolog.Logger
}

func (l *redisLease) Release(ctx context.Context) error {
	ok, err := l.mutex.UnlockContext(ctx)
	if err != nil {
		var expired *redsync.ErrTaken
		if errors.Is(err, redsync.ErrLockAlreadyExpired) || errors.As(err, &expired) {
			l.log.Warn().Str("key", l.mutex.Name()).Msg("generation slot expired before release")
			return nil
		}
		return err
	}
	if !ok {
		l.log.Warn().Str("key", l.mutex.Name()).Msg("generation slot expired before release")
	}
	return nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no Redis addresses provided")
	}
	return opts, nil
}
