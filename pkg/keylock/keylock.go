// Package keylock serializes work per string key (session id, product id).
package keylock

import (
	"sort"
	"sync"
)

// Locker acquires the given keys and returns the function that releases them.
type Locker interface {
	Lock(keys ...string) (unlock func())
}

// Noop never blocks. It is the default and keeps request handling lock-free.
type Noop struct{}

func (Noop) Lock(...string) func() { return func() {} }

type entry struct {
	mu   sync.Mutex
	refs int
}

// Map holds one mutex per live key. Entries are dropped once no caller holds
// or waits on them.
type Map struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Map {
	return &Map{entries: make(map[string]*entry)}
}

// Lock acquires keys in sorted order so callers locking overlapping sets
// cannot deadlock each other. Duplicate keys are collapsed.
func (m *Map) Lock(keys ...string) func() {
	ks := normalize(keys)

	held := make([]*entry, 0, len(ks))
	for _, k := range ks {
		e := m.acquire(k)
		e.mu.Lock()
		held = append(held, e)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				m.release(ks[i])
			}
		})
	}
}

// Len reports the number of keys currently tracked.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Map) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	return e
}

func (m *Map) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func CartKey(sessionID string) string { return "cart:" + sessionID }

func ProductKey(productID string) string { return "product:" + productID }
