package store

import (
	"sync"

	"github.com/theirongolddev/ratecalc/internal/currency"
)

// Memory is a process-local store used for tests and throwaway sessions.
type Memory struct {
	mu       sync.Mutex
	values   map[string]string
	table    currency.Table
	hasTable bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) SaveRates(t currency.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table, m.hasTable = t, true
	return nil
}

func (m *Memory) LoadRates() (currency.Table, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table, m.hasTable, nil
}
