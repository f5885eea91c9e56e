package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smart-faculty/auth-service/internal/domain"
	apperrors "github.com/smart-faculty/auth-service/pkg/util"
)

const (
	blacklistPrefix = "blacklist:"
	otpPrefix       = "otp:"
	cacheDependency = "revocation cache"
)

// consumeOTPScript deletes the code only when it matches, atomically, so a
// code can be consumed at most once even under concurrent verification.
var consumeOTPScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RevocationCache records blacklisted access tokens and pending OTP codes.
// Every entry carries a store-level expiry, so storage stays bounded.
type RevocationCache interface {
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	PutOTP(ctx context.Context, email, code string, ttl time.Duration) error
	ConsumeOTP(ctx context.Context, email, code string) (bool, error)
	Ping(ctx context.Context) error
}

type redisRevocationCache struct {
	client *redis.Client
}

// NewRevocationCache returns a Redis-backed implementation.
func NewRevocationCache(client *redis.Client) RevocationCache {
	return &redisRevocationCache{client: client}
}

func (c *redisRevocationCache) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *redisRevocationCache) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := c.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return n > 0, nil
}

func (c *redisRevocationCache) PutOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("otp ttl must be positive, got %s", ttl)
	}
	if err := c.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *redisRevocationCache) ConsumeOTP(ctx context.Context, email, code string) (bool, error) {
	deleted, err := consumeOTPScript.Run(ctx, c.client, []string{otpKey(email)}, code).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, unavailable(err)
	}
	return deleted == 1, nil
}

func (c *redisRevocationCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func blacklistKey(token string) string {
	return blacklistPrefix + token
}

func otpKey(email string) string {
	return otpPrefix + domain.NormalizeEmail(email)
}

func unavailable(err error) error {
	return apperrors.DependencyUnavailable(cacheDependency, err)
}
