package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value     float64
	expiresAt time.Time
}

// Memory is an in-process Store. A janitor goroutine evicts expired items
// until Close is called.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]item
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

func NewMemory(cleanupInterval time.Duration) *Memory {
	m := &Memory{
		items:  make(map[string]item),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.janitor(cleanupInterval)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (float64, bool, error) {
	m.mu.RLock()
	it, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(it.expiresAt) {
		return 0, false, nil
	}
	return it.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value float64, ttl time.Duration) error {
	m.mu.Lock()
	m.items[key] = item{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stopCh) })
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) evictExpired() {
	now := m.now()
	m.mu.Lock()
	for k, it := range m.items {
		if !now.Before(it.expiresAt) {
			delete(m.items, k)
		}
	}
	m.mu.Unlock()
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}
