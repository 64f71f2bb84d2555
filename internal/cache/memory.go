package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    string
	expireAt time.Time
}

func (m memoryItem) expired(now time.Time) bool {
	return now.After(m.expireAt)
}

// Memory is an in-process Cache used when no Redis address is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memoryItem

	done    chan struct{}
	closeMu sync.Once
}

// NewMemory creates an in-memory cache. Expired entries are dropped lazily
// on read and swept every sweepInterval.
func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		data: make(map[string]memoryItem),
		done: make(chan struct{}),
	}
	go m.sweep(sweepInterval)
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	if item.expired(time.Now()) {
		delete(m.data, key)
		return "", ErrCacheMiss
	}
	return item.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = memoryItem{value: value, expireAt: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, item := range m.data {
				if item.expired(now) {
					delete(m.data, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Close stops the background sweeper.
func (m *Memory) Close() error {
	m.closeMu.Do(func() { close(m.done) })
	return nil
}
