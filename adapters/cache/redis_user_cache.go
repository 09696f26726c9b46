package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/user-management/internal/application/service"
	"github.com/khoahotran/user-management/internal/domain/user"
)

const (
	snapshotPrefix = "user:snapshot:"
	versionPrefix  = "user:version:"

	// versionTTL outlives any in-flight read by a wide margin.
	versionTTL = 24 * time.Hour
)

// setIfVersion writes the snapshot only while the version key still holds the
// value the reader saw. KEYS: snapshot, version. ARGV: payload, version, ttl ms.
var setIfVersion = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[2] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
else
  redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// RedisUserCache stores JSON user snapshots with a TTL, guarded by a
// per-user version counter.
type RedisUserCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ service.UserCache = (*RedisUserCache)(nil)

func NewRedisUserCache(client redis.UniversalClient, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl}
}

// Key returns the snapshot key. The braces keep both keys of a user in one
// cluster hash slot.
func Key(id int64) string {
	return snapshotPrefix + "{" + strconv.FormatInt(id, 10) + "}"
}

func VersionKey(id int64) string {
	return versionPrefix + "{" + strconv.FormatInt(id, 10) + "}"
}

func (c *RedisUserCache) Get(ctx context.Context, id int64) (*user.User, bool, error) {
	payload, err := c.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}

	var u user.User
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &u, true, nil
}

func (c *RedisUserCache) Version(ctx context.Context, id int64) (int64, error) {
	v, err := c.client.Get(ctx, VersionKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("load snapshot version: %w", err)
	}
	return v, nil
}

func (c *RedisUserCache) Set(ctx context.Context, u *user.User, version int64) (bool, error) {
	payload, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("marshal snapshot: %w", err)
	}
	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{Key(u.ID), VersionKey(u.ID)},
		payload, strconv.FormatInt(version, 10), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("persist snapshot: %w", err)
	}
	return stored == 1, nil
}

// Delete evicts the snapshot and bumps the version in one transaction.
func (c *RedisUserCache) Delete(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, Key(id))
		pipe.Incr(ctx, VersionKey(id))
		pipe.Expire(ctx, VersionKey(id), versionTTL)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
