package identitymap

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// IsolationLevel controls what the identity map remembers.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota // disabled
	ReadCommitted                         // disabled
	RepeatableReads                       // remembers loaded rows
	Serializable                          // remembers loaded rows and known absences
)

var isolationNames = map[IsolationLevel]string{
	ReadUncommitted: "read_uncommitted",
	ReadCommitted:   "read_committed",
	RepeatableReads: "repeatable_reads",
	Serializable:    "serializable",
}

func (l IsolationLevel) String() string {
	if name, ok := isolationNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseIsolationLevel accepts the names printed by String, case-insensitively.
func ParseIsolationLevel(name string) (IsolationLevel, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for level, n := range isolationNames {
		if n == normalized {
			return level, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownIsolation, "\"%s\"", name)
}

// IdentityMap caches rows loaded within one session so that a row is read
// at most once. It is safe for concurrent use.
type IdentityMap struct {
	mu       sync.Mutex
	cache    *lruCache
	strategy isolationStrategy
}

func New(cacheSize int, level IsolationLevel) *IdentityMap {
	m := &IdentityMap{cache: newLruCache(cacheSize)}
	m.SetIsolationLevel(level)
	return m
}

func (m *IdentityMap) SetIsolationLevel(level IsolationLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch level {
	case ReadUncommitted, ReadCommitted:
		m.strategy = disabledStrategy{}
	case RepeatableReads:
		m.strategy = repeatableReadsStrategy{cache: m.cache}
	default:
		m.strategy = serializableStrategy{cache: m.cache}
	}
}

func (m *IdentityMap) SetSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.setSize(size)
}

// Clear forgets everything, e.g. after a bulk statement changed rows behind
// the map's back.
func (m *IdentityMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.clear()
}

func (m *IdentityMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache.items)
}

// Add remembers a loaded row.
func Add[V any](m *IdentityMap, key IdentityKey[V], value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategy.add(key, value)
}

// AddAbsent remembers that no row exists for key. Only Serializable keeps it.
func AddAbsent[V any](m *IdentityMap, key IdentityKey[V]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategy.addAbsent(key)
}

// Get returns ErrKeyNotFound for an unknown key and ErrObjectNotFound for a
// key remembered as absent.
func Get[V any](m *IdentityMap, key IdentityKey[V]) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, err := m.strategy.get(key)
	if err != nil {
		var zero V
		return zero, err
	}
	return value.(V), nil
}

func Has[V any](m *IdentityMap, key IdentityKey[V]) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strategy.has(key)
}

func Remove[V any](m *IdentityMap, key IdentityKey[V]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.remove(key)
}
