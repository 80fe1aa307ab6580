package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/school"
)

const settingsKey = "ada:settings"

// SettingsCache keeps the school settings in redis. A nil client disables it.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ school.Cache = (*SettingsCache)(nil)

func NewSettingsCache(client *redis.Client, ttl time.Duration, logger core.Logger) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl, logger: logger}
}

// Connect returns a client for the configured redis, or nil when redis is not configured or unreachable.
func Connect(ctx context.Context, conf core.RedisConfig, logger core.Logger) *redis.Client {
	if conf.Address == "" {
		logger.Info("cache.Connect: redis address not set, caching disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("cache.Connect: redis unreachable, caching disabled", err)
		_ = client.Close()
		return nil
	}
	return client
}

func (c *SettingsCache) enabled() bool {
	return c != nil && c.client != nil
}

// GetSettings reports a miss on any redis error.
func (c *SettingsCache) GetSettings(ctx context.Context) (school.Settings, bool) {
	if !c.enabled() {
		return school.Settings{}, false
	}
	data, err := c.client.Get(ctx, settingsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache.GetSettings", errors.Wrap(err, "reading settings"))
		}
		return school.Settings{}, false
	}
	var s school.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		c.logger.Warn("cache.GetSettings", errors.Wrap(err, "decoding settings"))
		return school.Settings{}, false
	}
	return s, true
}

func (c *SettingsCache) SetSettings(ctx context.Context, s school.Settings) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		c.logger.Warn("cache.SetSettings", errors.Wrap(err, "encoding settings"))
		return
	}
	if err := c.client.Set(ctx, settingsKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache.SetSettings", errors.Wrap(err, "writing settings"))
	}
}

func (c *SettingsCache) DeleteSettings(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		c.logger.Warn("cache.DeleteSettings", errors.Wrap(err, "deleting settings"))
	}
}
