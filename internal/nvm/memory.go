package nvm

import "sync"

// Memory is a volatile Store.
type Memory struct {
	mu     sync.RWMutex
	values [Size]int32
}

// NewMemory returns a store holding the factory defaults.
func NewMemory() *Memory {
	return &Memory{values: Defaults()}
}

// Get returns word i, or 0 for an index outside the block.
func (m *Memory) Get(i Index) int32 {
	if !i.Valid() {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[i]
}

// Set writes word i if it differs from the stored value.
func (m *Memory) Set(i Index, v int32) bool {
	if !i.Valid() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[i] == v {
		return false
	}
	m.values[i] = v
	return true
}
