package captchaverify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "recaptcha:token:"

// RedisReplayGuard remembers verification tokens in Redis for ttl.
type RedisReplayGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisReplayGuard(client redis.Cmdable, ttl time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, ttl: ttl}
}

// Claim stores the token's hash with SETNX. Raw tokens are never written.
func (g *RedisReplayGuard) Claim(ctx context.Context, token string) (bool, error) {
	fresh, err := g.client.SetNX(ctx, ReplayKey(token), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim verification token: %w", err)
	}
	return fresh, nil
}

func ReplayKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return replayKeyPrefix + hex.EncodeToString(sum[:])
}
