package queue

import (
	"context"
	"slices"
	"sync"
	"time"
)

type leaseEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryWaitingRoomStore 單機版實作，用於開發與測試；重啟後資料消失
type MemoryWaitingRoomStore struct {
	mu     sync.Mutex
	lists  map[string][]string
	leases map[string]leaseEntry
	now    func() time.Time
}

type MemoryStoreOption func(*MemoryWaitingRoomStore)

// WithClock 注入時鐘，測試 TTL 時使用
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryWaitingRoomStore) {
		s.now = now
	}
}

func NewMemoryWaitingRoomStore(opts ...MemoryStoreOption) *MemoryWaitingRoomStore {
	s := &MemoryWaitingRoomStore{
		lists:  make(map[string][]string),
		leases: make(map[string]leaseEntry),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryWaitingRoomStore) Push(ctx context.Context, listKey, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[listKey] = append(s.lists[listKey], value)
	return int64(len(s.lists[listKey])), nil
}

func (s *MemoryWaitingRoomStore) PopN(ctx context.Context, listKey string, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.popLocked(listKey, n), nil
}

func (s *MemoryWaitingRoomStore) popLocked(listKey string, n int) []string {
	list := s.lists[listKey]
	if n <= 0 || len(list) == 0 {
		return []string{}
	}
	n = min(n, len(list))

	popped := slices.Clone(list[:n])
	if n == len(list) {
		delete(s.lists, listKey)
	} else {
		s.lists[listKey] = list[n:]
	}
	return popped
}

func (s *MemoryWaitingRoomStore) PositionOf(ctx context.Context, listKey, value string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.lists[listKey], value)
	if idx < 0 {
		return 0, false, nil
	}
	return int64(idx), true, nil
}

func (s *MemoryWaitingRoomStore) Len(ctx context.Context, listKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.lists[listKey])), nil
}

func (s *MemoryWaitingRoomStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leases[key] = leaseEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryWaitingRoomStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.aliveLocked(key), nil
}

func (s *MemoryWaitingRoomStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existed := s.aliveLocked(key)
	delete(s.leases, key)
	return existed, nil
}

// PopAndLease 在同一把鎖內取出並發放 lease
func (s *MemoryWaitingRoomStore) PopAndLease(ctx context.Context, listKey string, n int, leaseKeyPrefix, value string, ttl time.Duration) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	popped := s.popLocked(listKey, n)
	expiresAt := s.now().Add(ttl)
	for _, member := range popped {
		s.leases[leaseKeyPrefix+member] = leaseEntry{value: value, expiresAt: expiresAt}
	}
	return popped, nil
}

// aliveLocked 順便清掉已過期的鍵
func (s *MemoryWaitingRoomStore) aliveLocked(key string) bool {
	entry, ok := s.leases[key]
	if !ok {
		return false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.leases, key)
		return false
	}
	return true
}
