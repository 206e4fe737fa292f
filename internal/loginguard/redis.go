package loginguard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login_attempt:"

// casScript swaps the stored record only if it still equals the expected
// serialization. An empty ARGV[1] matches an absent key, an empty ARGV[2]
// deletes it, and ARGV[3] is an optional TTL in milliseconds.
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur == false then cur = '' end
if cur ~= ARGV[1] then
	return 0
end
if ARGV[2] == '' then
	redis.call('DEL', KEYS[1])
elseif tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// RedisStore shares attempt records between instances. Non-permanent
// records carry a TTL so abandoned counters age out of Redis; permanent
// blocks are stored without expiry and survive until an operator reset.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt record: %v", ErrStoreUnavailable, err)
	}
	return &rec, nil
}

func (s *RedisStore) CompareAndSet(ctx context.Context, key string, expected, newRecord *Record) (bool, error) {
	expectedRaw, err := encodeRecord(expected)
	if err != nil {
		return false, err
	}
	newRaw, err := encodeRecord(newRecord)
	if err != nil {
		return false, err
	}

	var ttlMillis int64
	if newRecord != nil && !newRecord.PermanentlyBlocked {
		ttlMillis = s.ttl.Milliseconds()
	}

	res, err := casScript.Run(ctx, s.client, []string{keyPrefix + key}, expectedRaw, newRaw, ttlMillis).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res == 1, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func encodeRecord(rec *Record) (string, error) {
	if rec == nil {
		return "", nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode attempt record: %w", err)
	}
	return string(raw), nil
}
