package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis caches responses in a shared Redis instance so multiple storefront
// replicas share one freshness window. Failures degrade to cache misses.
type Redis struct {
	client *redis.Client
}

// ConnectRedis builds a Redis cache from a URL ("redis://...") or a plain
// address. Returns nil if the connection cannot be established; callers fall
// back to another cache.
func ConnectRedis(redisURL, addr, password string) *Redis {
	var opt *redis.Options
	if redisURL != "" {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Println("[Cache] Failed to parse Redis URL:", err)
			return nil
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}
	}

	client := redis.NewClient(opt)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Println("[Cache] Redis connection failed:", err)
		client.Close()
		return nil
	}

	log.Println("[Cache] Redis connected")
	return &Redis{client: client}
}

func (r *Redis) Get(key string) ([]byte, bool) {
	data, err := r.client.Get(context.Background(), key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (r *Redis) Set(key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(context.Background(), key, value, ttl).Err(); err != nil {
		log.Println("[Cache] Redis set failed:", err)
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
