package app

import (
	"strings"

	"github.com/sitecms/sitecms/internal/cache"
)

// RedisClientConfig maps cache settings onto the Redis store. A URL overrides
// the discrete connection fields.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	r := c.Redis
	cfg := cache.RedisConfig{URL: strings.TrimSpace(r.URL), Timeout: r.Timeout}
	if cfg.URL != "" {
		return cfg
	}
	cfg.Address = strings.TrimSpace(r.Address)
	cfg.Username = strings.TrimSpace(r.Username)
	cfg.Password = r.Password
	cfg.DB = r.DB
	cfg.TLS = r.TLS
	return cfg
}

// RedisTarget names the Redis endpoint for log output without leaking credentials.
func (c CacheConfig) RedisTarget() string {
	if c.Redis.URL == "" {
		return c.Redis.Address
	}
	if _, rest, ok := strings.Cut(c.Redis.URL, "@"); ok {
		return rest
	}
	return c.Redis.URL
}
