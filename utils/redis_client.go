package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/famfit/config"
)

// NewRedisClient builds a Redis client from config. It returns nil when Redis is disabled.
// A failed ping is logged but not fatal: cache callers fail open.
func NewRedisClient(cfg config.AppConfig) *redis.Client {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil && Sugar != nil {
		Sugar.Warnf("redis ping failed addr=%s err=%v", client.Options().Addr, err)
	}
	return client
}
