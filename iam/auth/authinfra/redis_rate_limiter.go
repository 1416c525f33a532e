package authinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/craftable/errx"
	"github.com/go-redis/redis/v8"
	"github.com/nexaedu/campus/iam/auth"
)

const rateLimitKeyPrefix = "login_limite:"

// RedisRateLimiter limita tentativas de login por janela fixa em Redis.
// A chave já chega montada (identificador normalizado + endereço do
// cliente); aqui só se conta e expira.
type RedisRateLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRedisRateLimiter cria um novo rate limiter em Redis
func NewRedisRateLimiter(client *redis.Client, maxAttempts int, window time.Duration) auth.RateLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow conta a tentativa e responde se ela ainda cabe na janela
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rateLimitKeyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, errx.Wrap(err, "failed to increment rate limit counter", errx.TypeInternal)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, errx.Wrap(err, "failed to set rate limit window", errx.TypeInternal)
		}
	}

	return count <= int64(l.maxAttempts), nil
}

// Reset zera o contador da chave após um login bem-sucedido
func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, rateLimitKeyPrefix+key).Err(); err != nil {
		return errx.Wrap(err, "failed to reset rate limit counter", errx.TypeInternal)
	}
	return nil
}
