package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// popAndLeaseScript 需要 Redis 6.2+（LPOP 帶 count）
// lease key 由 ARGV 組出、未列在 KEYS，只適用單一 Redis 節點；
// Redis Cluster 下這些 key 可能不在 KEYS[1] 的 slot
const popAndLeaseScript = `
local items = redis.call('LPOP', KEYS[1], ARGV[1])
if not items then
	return {}
end
for _, uid in ipairs(items) do
	redis.call('SET', ARGV[2] .. uid, ARGV[3], 'PX', ARGV[4])
end
return items
`

type RedisWaitingRoomStore struct {
	client *redis.Client
}

func NewRedisWaitingRoomStore(client *redis.Client) *RedisWaitingRoomStore {
	return &RedisWaitingRoomStore{client: client}
}

func (s *RedisWaitingRoomStore) Push(ctx context.Context, listKey, value string) (int64, error) {
	return s.client.RPush(ctx, listKey, value).Result()
}

func (s *RedisWaitingRoomStore) PopN(ctx context.Context, listKey string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	items, err := s.client.LPopCount(ctx, listKey, n).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RedisWaitingRoomStore) PositionOf(ctx context.Context, listKey, value string) (int64, bool, error) {
	pos, err := s.client.LPos(ctx, listKey, value, redis.LPosArgs{}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return pos, true, nil
}

func (s *RedisWaitingRoomStore) Len(ctx context.Context, listKey string) (int64, error) {
	return s.client.LLen(ctx, listKey).Result()
}

func (s *RedisWaitingRoomStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisWaitingRoomStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisWaitingRoomStore) Delete(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisWaitingRoomStore) PopAndLease(ctx context.Context, listKey string, n int, leaseKeyPrefix, value string, ttl time.Duration) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	items, err := s.client.Eval(ctx, popAndLeaseScript,
		[]string{listKey}, n, leaseKeyPrefix, value, ttl.Milliseconds(),
	).StringSlice()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}
