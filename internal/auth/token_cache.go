package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// TokenCache 把 JWT 解析结果缓存到 Redis，避免每个请求都做签名校验。
// 缓存值损坏时静默清除并退回正常解析。
type TokenCache struct {
	redis radix.Client
	ttl   time.Duration
}

// NewTokenCache 构建缓存器
func NewTokenCache(redis radix.Client, ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{
		redis: redis,
		ttl:   ttl,
	}
}

func cacheKey(token string) string {
	sum := sha1.Sum([]byte(token))
	return fmt.Sprintf("auth:jwt:%s", hex.EncodeToString(sum[:]))
}

// Get 尝试命中缓存的 claims
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool, error) {
	if c.redis == nil {
		return nil, false, nil
	}
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", cacheKey(token))); err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}
	var claims Claims
	if err := json.Unmarshal([]byte(raw), &claims); err != nil {
		_ = c.redis.Do(radix.Cmd(nil, "DEL", cacheKey(token)))
		return nil, false, nil
	}
	// 已过期的 token 不再从缓存放行
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		_ = c.redis.Do(radix.Cmd(nil, "DEL", cacheKey(token)))
		return nil, false, nil
	}
	return &claims, true, nil
}

// Set 缓存解析结果
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) error {
	if c.redis == nil || claims == nil {
		return nil
	}
	body, _ := json.Marshal(claims)
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", cacheKey(token), int64(c.ttl/time.Second), body))
}
