package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"listing-directory/internal/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript faz trim -> count -> add condicional -> expire de forma
// atômica. Scores em milissegundos.
//
// Retorna {allowed(0|1), count, retryAfterMs}.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  local retry = 0
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  return {0, count, retry}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`)

// RedisWindow é a janela deslizante compartilhada: sobrevive a restart e vale
// para todas as instâncias que apontam para o mesmo Redis.
type RedisWindow struct {
	rdb    redis.Scripter
	prefix string
}

type RedisWindowOption func(*RedisWindow)

func WithRedisPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindow) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisWindow(rdb redis.Scripter, opts ...RedisWindowOption) *RedisWindow {
	s := &RedisWindow{
		rdb:    rdb,
		prefix: "ratelimit:window",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow implementa domain.WindowStore.
func (s *RedisWindow) Allow(ctx context.Context, key domain.Key, limit int, window time.Duration, now time.Time) (domain.Decision, error) {
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, s.rdb,
		[]string{s.prefix + ":" + string(key)},
		nowMs, window.Milliseconds(), limit, member,
	).Int64Slice()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("ratelimit: redis window: %w", err)
	}
	if len(res) != 3 {
		return domain.Decision{}, fmt.Errorf("ratelimit: redis window: unexpected reply %v", res)
	}

	count := int(res[1])
	if res[0] == 0 {
		return domain.Decision{
			Allowed:    false,
			Limit:      limit,
			RetryAfter: time.Duration(res[2]) * time.Millisecond,
		}, nil
	}
	return domain.Decision{Allowed: true, Limit: limit, Remaining: limit - count}, nil
}
