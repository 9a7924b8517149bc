package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/internal/config"
)

// releaseScript apaga a chave somente se o valor ainda for o token de quem
// adquiriu o lock (compare-and-delete atômico)
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisCache struct {
	client *redis.Client
}

func NewRedisCache(ctx context.Context, cfg config.Redis) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("erro ao conectar no redis: %w", err)
	}

	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("erro ao ler a chave %s: %w", key, err)
	}

	return value, true, nil
}

func (c *redisCache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("erro ao gravar a chave %s: %w", key, err)
	}

	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("erro ao remover a chave %s: %w", key, err)
	}

	return nil
}

func (c *redisCache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("erro ao adquirir o lock %s: %w", key, err)
	}

	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

func (c *redisCache) ReleaseLock(ctx context.Context, key, token string) error {
	released, err := releaseScript.Run(ctx, c.client, []string{key}, token).Int()
	if err != nil {
		return fmt.Errorf("erro ao liberar o lock %s: %w", key, err)
	}

	if released == 0 {
		// O lock expirou antes da liberação; outro processo pode tê-lo adquirido
		logrus.WithField("key", key).Warn("Lock já não pertencia a este processo ao liberar")
	}

	return nil
}
