package service

import (
	"context"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const generationLockPrefix = "goal_pilot:generation:"

// GenerationLocker 同一目标同时只允许一个生成流程
type GenerationLocker interface {
	// Acquire 获取锁；已被占用时返回 util.ErrGenerationInProgress
	Acquire(ctx context.Context, goalID string) (release func(), err error)
}

// 只有持有者的 token 匹配时才删除，避免误删过期后被他人获取的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, goalID string) (func(), error) {
	key := generationLockPrefix + goalID
	token := uuid.New().String()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrGenerationInProgress
	}

	return func() { l.release(key, token) }, nil
}

// release 请求 ctx 可能已取消，释放使用独立的短超时；失败时锁保留到 TTL 到期
func (l *RedisLocker) release(key, token string) {
	releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err(); err != nil {
		logger.L().Warn("Failed to release generation lock",
			zap.String("key", key),
			zap.Duration("expires_within", l.ttl),
			zap.Error(err),
		)
	}
}

// MemoryLocker 进程内实现，用于测试和单实例部署
type MemoryLocker struct {
	mu      sync.Mutex
	holders map[string]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{holders: make(map[string]bool)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, goalID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holders[goalID] {
		return nil, util.ErrGenerationInProgress
	}
	l.holders[goalID] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.holders, goalID)
			l.mu.Unlock()
		})
	}, nil
}
