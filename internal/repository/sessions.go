package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/Jidetireni/firstcare-registration/pkg/cache"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("wizard session not found")

const (
	sessionKeyPrefix = "wizard:session:"
	lockKeyPrefix    = "wizard:lock:"

	// lockTTL outlives any single load-modify-save; lockWait bounds how long a
	// request queues behind another on the same session.
	lockTTL  = 10 * time.Second
	lockWait = 5 * time.Second
)

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

// RedisSessionRepository keeps wizard snapshots in Redis so sessions survive
// restarts and are shared between instances.
type RedisSessionRepository struct {
	cache *cache.Redis
}

func NewRedisSessionRepository(c *cache.Redis) *RedisSessionRepository {
	return &RedisSessionRepository{cache: c}
}

func (r *RedisSessionRepository) Get(ctx context.Context, id uuid.UUID) (*wizard.Snapshot, error) {
	var snap wizard.Snapshot
	if err := r.cache.Get(ctx, sessionKey(id), &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &snap, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, id uuid.UUID, snap wizard.Snapshot, ttl time.Duration) error {
	if err := r.cache.Set(ctx, sessionKey(id), snap, ttl); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.cache.Delete(ctx, sessionKey(id))
}

// Lock takes the session's lock in Redis so that every instance sharing the
// store serialises on it.
func (r *RedisSessionRepository) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	unlock, err := r.cache.Lock(ctx, lockKeyPrefix+id.String(), lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", id, err)
	}
	return unlock, nil
}

type memorySession struct {
	payload   []byte
	expiresAt time.Time
}

// MemorySessionRepository is the single-instance session store used when no
// Redis is configured. Snapshots are stored encoded so callers never share
// state with the store.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]memorySession
	locks    *keyedMutex
	now      func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[uuid.UUID]memorySession),
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

func (m *MemorySessionRepository) Get(_ context.Context, id uuid.UUID) (*wizard.Snapshot, error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok && !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	var snap wizard.Snapshot
	if err := json.Unmarshal(entry.payload, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &snap, nil
}

func (m *MemorySessionRepository) Save(_ context.Context, id uuid.UUID, snap wizard.Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}

	entry := memorySession{payload: payload}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.sessions[id] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionRepository) Lock(_ context.Context, id uuid.UUID) (func(), error) {
	return m.locks.Lock(id), nil
}
