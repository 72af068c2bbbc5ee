// Package prefs is the key-value store for the few values the catalog view
// remembers between visits, chiefly the preferred manufacturer that drives
// recommendations. Writes are last-write-wins and never expire.
package prefs

import (
	"context"
	"sync"
)

// PreferredManufacturer is the key holding the manufacturer id of the last
// model whose details were shown.
const PreferredManufacturer = "preferredManufacturer"

// Store is a narrow get/set key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	vals map[string]string
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{vals: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

// Scoped namespaces every key of s under scope, so one backend can hold the
// preferences of many visitors. Keys become "<scope>.<key>".
func Scoped(s Store, scope string) Store {
	if scope == "" {
		return s
	}
	return &scoped{inner: s, prefix: scope + "."}
}

type scoped struct {
	inner  Store
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*KV)(nil)
	_ Store = (*Graph)(nil)
)
