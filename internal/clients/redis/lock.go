package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

// TurnLocker serializes voice turns per conversation. The lock is
// advisory: correctness is guaranteed by the conditional turn-count
// update, the lock just keeps concurrent submitters from both paying
// for transcription and generation.
type TurnLocker interface {
	// Acquire returns a release func, or ok=false when another turn
	// holds the lock.
	Acquire(ctx context.Context, conversationID uuid.UUID, ttl time.Duration) (release func(), ok bool, err error)
	Close() error
}

type turnLocker struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewTurnLocker connects to REDIS_ADDR. When the variable is unset it
// returns (nil, nil) and callers skip locking entirely.
func NewTurnLocker(log *logger.Logger) (TurnLocker, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &turnLocker{
		log: log.With("service", "TurnLocker"),
		rdb: rdb,
	}, nil
}

func (l *turnLocker) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`

func lockKey(conversationID uuid.UUID) string {
	return "turn_lock:" + conversationID.String()
}

func (l *turnLocker) Acquire(ctx context.Context, conversationID uuid.UUID, ttl time.Duration) (func(), bool, error) {
	key := lockKey(conversationID)
	owner := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.rdb.Eval(ctx2, releaseScript, []string{key}, owner).Err(); err != nil && err != goredis.Nil {
			l.log.Warn("turn lock release failed", "key", key, "error", err.Error())
		}
	}
	return release, true, nil
}
