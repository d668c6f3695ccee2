package lockStore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/adevara/docqa/internal/config"
	"github.com/adevara/docqa/pkg/logger_i"
)

const keyPrefix = "reindex-lock:"

// releaseScript deletes the lease only when the caller still owns it, so a
// lease that expired and was re-acquired elsewhere is never released twice.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger_i.Logger
}

// GetRedisLocker connects to Redis and returns the lease store, or nil if
// Redis is offline so the caller can fall back to the in-memory locker.
func GetRedisLocker(ctx context.Context, addr string) *RedisLocker {
	logger := logger_i.NewLogger("Reindex Lock Store")

	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		DB:                    config.RedisLockStore,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline: ", "error", err.Error())
		return nil
	}

	logger.Info("Redis lock store init successfully")
	locker := &RedisLocker{client: client, ttl: config.ReindexLockTTL, logger: logger}
	go locker.closeOnDone(ctx)
	return locker
}

func (l *RedisLocker) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	l.logger.Info("Closing redis lock store")
	if err := l.client.Close(); err != nil {
		l.logger.Error("Error closing redis client", "error", err)
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, docName string) (func(), error) {
	key := keyPrefix + docName
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			release := func() {
				if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
					l.logger.Error("Failed to release reindex lease", "doc", docName, "error", err)
				}
			}
			return release, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// NewTestLocker is only for _test.go files.
func NewTestLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, logger: logger_i.NewLogger("test lock store")}
}
