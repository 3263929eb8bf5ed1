package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "invoicedesk:cache:"
	redisTagPrefix     = "invoicedesk:tag:"
	redisVersionPrefix = "invoicedesk:tagver:"
)

// KEYS holds n tag sets followed by their n version counters. Drops every
// key listed in each tag set and the set itself, then bumps the version.
const invalidateTagsScript = `
local n = #KEYS / 2
local removed = 0
for i = 1, n do
  local members = redis.call("SMEMBERS", KEYS[i])
  for _, member in ipairs(members) do
    removed = removed + redis.call("DEL", member)
  end
  redis.call("DEL", KEYS[i])
  redis.call("INCR", KEYS[n + i])
end
return removed
`

// KEYS: entry key, n tag sets, n version counters.
// ARGV: value, ttl in milliseconds, then the n expected versions.
// Returns 0 without writing when any version moved.
const setIfCurrentScript = `
local n = (#KEYS - 1) / 2
for i = 1, n do
  local current = tonumber(redis.call("GET", KEYS[1 + n + i]) or "0")
  if current ~= tonumber(ARGV[2 + i]) then
    return 0
  end
end
if tonumber(ARGV[2]) > 0 then
  redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
  redis.call("SET", KEYS[1], ARGV[1])
end
for i = 1, n do
  redis.call("SADD", KEYS[1 + i], KEYS[1])
end
return 1
`

// RedisStore shares cached entries across replicas.
type RedisStore struct {
	client       *redis.Client
	script       *redis.Script
	setIfCurrent *redis.Script
}

func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("cache redis client not configured")
	}
	return &RedisStore{
		client:       client,
		script:       redis.NewScript(invalidateTagsScript),
		setIfCurrent: redis.NewScript(setIfCurrentScript),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if key == "" {
		return ErrEmptyKey
	}
	fullKey := redisKeyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, fullKey, value, ttl)
		for _, tag := range tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			pipe.SAdd(ctx, redisTagPrefix+tag, fullKey)
		}
		return nil
	})
	return err
}

func (s *RedisStore) InvalidateTags(ctx context.Context, tags ...string) error {
	tags = cleanTags(tags)
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(tags))
	for _, tag := range tags {
		keys = append(keys, redisTagPrefix+tag)
	}
	for _, tag := range tags {
		keys = append(keys, redisVersionPrefix+tag)
	}
	return s.script.Run(ctx, s.client, keys).Err()
}

func (s *RedisStore) TagVersions(ctx context.Context, tags ...string) ([]int64, error) {
	versions := make([]int64, len(tags))
	if len(tags) == 0 {
		return versions, nil
	}
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = redisVersionPrefix + strings.TrimSpace(tag)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		versions[i] = parsed
	}
	return versions, nil
}

func (s *RedisStore) SetIfCurrent(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string, versions []int64) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if len(versions) != len(tags) {
		return false, ErrVersionMismatch
	}
	keys := make([]string, 0, 1+2*len(tags))
	keys = append(keys, redisKeyPrefix+key)
	for _, tag := range tags {
		keys = append(keys, redisTagPrefix+strings.TrimSpace(tag))
	}
	for _, tag := range tags {
		keys = append(keys, redisVersionPrefix+strings.TrimSpace(tag))
	}
	args := make([]any, 0, 2+len(versions))
	args = append(args, value, ttl.Milliseconds())
	for _, version := range versions {
		args = append(args, version)
	}
	stored, err := s.setIfCurrent.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return cleaned
}
