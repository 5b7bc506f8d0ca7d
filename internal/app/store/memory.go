package store

import (
	"errors"
	"maps"
	"sync"
)

// ErrUnavailable is returned by a MemoryKV that has been told to fail.
var ErrUnavailable = errors.New("storage unavailable")

// MemoryKV is an in-process KV for tests.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

// NewMemoryKV returns an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// FailWrites makes every subsequent write return ErrUnavailable.
func (m *MemoryKV) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Get implements KV.
func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements KV.
func (m *MemoryKV) Set(key string, value []byte) error {
	return m.Update(nil, func(map[string][]byte) (map[string][]byte, error) {
		return map[string][]byte{key: value}, nil
	})
}

// Update implements KV. fn runs under the store lock and its writes
// become visible together.
func (m *MemoryKV) Update(keys []string, fn func(current map[string][]byte) (map[string][]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrUnavailable
	}
	current := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			current[k] = append([]byte(nil), v...)
		}
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	data := maps.Clone(m.data)
	for k, v := range next {
		data[k] = append([]byte(nil), v...)
	}
	m.data = data
	return nil
}
