package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQuotaStore tracks per-author daily post counters. Creating a post
// bumps the counter for (author, calendar date); the creation path rejects
// the post when the counter exceeds the daily quota.
type RedisQuotaStore struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

const (
	// Counter keys expire after two days, long enough to cover the calendar
	// date they belong to in any timezone skew.
	quotaKeyExpiration = 48 * time.Hour
)

var ctx = context.Background()

func GetRedisQuotaStore() (*RedisQuotaStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return &RedisQuotaStore{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) MustEncodeQuotaKey(authorId string, date string) string {
	if !r.ValidateId(authorId) {
		panic(fmt.Errorf("invalid authorId with delimiter: %s, %s", authorId, r.delimiter))
	}
	return fmt.Sprintf("%s%s%s", authorId, r.delimiter, date)
}

// IncrDailyPostCount bumps the author's counter for the given calendar date
// and returns the new value. The first increment sets the key expiration.
func (r *RedisQuotaStore) IncrDailyPostCount(authorId string, date string) (int64, error) {
	key := r.keyParser.MustEncodeQuotaKey(authorId, date)
	count, err := r.inner.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		r.inner.Expire(ctx, key, quotaKeyExpiration)
	}
	return count, nil
}

// DecrDailyPostCount undoes one increment, used when post creation fails
// after the quota was consumed.
func (r *RedisQuotaStore) DecrDailyPostCount(authorId string, date string) error {
	key := r.keyParser.MustEncodeQuotaKey(authorId, date)
	return r.inner.Decr(ctx, key).Err()
}
