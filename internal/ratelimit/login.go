package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carnefacil/carnefacil/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyLogin         = "ratelimit:login:%s"
	keyPaymentReturn = "ratelimit:pagamento:%s"
)

// LoginLimiter throttles credential guessing on /auth/login and token
// guessing on the public payment return, keyed by client IP.
// A nil limiter allows everything; it stays nil when Redis is not
// configured.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewLoginLimiter(cfg config.Config) (*LoginLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.LoginRate <= 0 || limitCfg.LoginBurst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   limitCfg.LoginRate,
		burst:  limitCfg.LoginBurst,
	}, nil
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *LoginLimiter) AllowLogin(ctx context.Context, clientIP string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyLogin, strings.TrimSpace(clientIP)), l.rate, l.burst)
}

func (l *LoginLimiter) AllowPaymentReturn(ctx context.Context, clientIP string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPaymentReturn, strings.TrimSpace(clientIP)), l.rate, l.burst)
}
