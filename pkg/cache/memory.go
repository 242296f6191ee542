package cache

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"
)

const defaultMemoryTTL = 7 * 24 * time.Hour

type memoryEntry struct {
	value      any
	expireAt   time.Time
	lastAccess time.Time
}

func (e *memoryEntry) expired() bool {
	return time.Now().After(e.expireAt)
}

// MemoryCache is the in-process L1 layer. Oldest-accessed entries are
// evicted once the cache is full.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	maxSize int
	janitor *time.Ticker
}

// NewMemoryCache creates an in-memory cache and starts its cleanup loop.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	mc := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: cfg.MaxSize,
		janitor: time.NewTicker(cfg.CleanupInterval),
	}
	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.entries) >= mc.maxSize {
		mc.evictOldest()
	}

	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}
	now := time.Now()
	mc.entries[key] = &memoryEntry{value: value, expireAt: now.Add(expiration), lastAccess: now}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest any) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	if !ok || e.expired() {
		if ok {
			delete(mc.entries, key)
		}
		return ErrCacheMiss
	}
	e.lastAccess = time.Now()

	return assign(dest, e.value)
}

// assign copies a cached value into dest. A type mismatch reads as a
// miss so layered callers fall through to Redis instead of failing.
func assign(dest, value any) error {
	if strPtr, ok := dest.(*string); ok {
		if s, ok := value.(string); ok {
			*strPtr = s
			return nil
		}
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("cache: destination must be a non-nil pointer")
	}
	vv := reflect.ValueOf(value)
	if vv.Kind() == reflect.Pointer && vv.Type() == dv.Type() {
		vv = vv.Elem()
	}
	if !vv.IsValid() || !vv.Type().AssignableTo(dv.Elem().Type()) {
		return ErrCacheMiss
	}
	dv.Elem().Set(vv)
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		delete(mc.entries, key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, key := range keys {
		if e, ok := mc.entries[key]; ok && !e.expired() {
			return true, nil
		}
	}
	return false, nil
}

func (mc *MemoryCache) Increment(_ context.Context, key string) (int64, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	if !ok || e.expired() {
		mc.entries[key] = &memoryEntry{value: int64(1), expireAt: time.Now().Add(defaultMemoryTTL)}
		return 1, nil
	}

	n, ok := e.value.(int64)
	if !ok {
		return 0, fmt.Errorf("cache: value at %q is not a counter", key)
	}
	e.value = n + 1
	return n + 1, nil
}

func (mc *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if e, ok := mc.entries[key]; ok {
		e.expireAt = time.Now().Add(expiration)
		return true, nil
	}
	return false, nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if e, ok := mc.entries[key]; ok && !e.expired() {
		return false, nil
	}
	mc.entries[key] = &memoryEntry{value: "locked", expireAt: time.Now().Add(ttl)}
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

// evictOldest removes the least recently accessed entry. Caller holds mu.
func (mc *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time

	for key, e := range mc.entries {
		if oldestKey == "" || e.lastAccess.Before(oldestAt) {
			oldestKey, oldestAt = key, e.lastAccess
		}
	}
	if oldestKey != "" {
		delete(mc.entries, oldestKey)
	}
}

func (mc *MemoryCache) sweep() {
	for range mc.janitor.C {
		mc.mu.Lock()
		for key, e := range mc.entries {
			if e.expired() {
				delete(mc.entries, key)
			}
		}
		mc.mu.Unlock()
	}
}

// Close stops the cleanup loop.
func (mc *MemoryCache) Close() error {
	if mc.janitor != nil {
		mc.janitor.Stop()
	}
	return nil
}
