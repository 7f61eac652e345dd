// Package cache memoizes calculator results keyed by their exact input.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache stores serialized calculator results. Implementations must be safe
// for concurrent use; a cache miss is never an error.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// Key derives a stable cache key from the calculator name and its canonical
// input JSON.
func Key(calculator string, inputJSON []byte) string {
	h := sha256.New()
	h.Write([]byte(calculator))
	h.Write([]byte{0})
	h.Write(inputJSON)
	return "calc:" + hex.EncodeToString(h.Sum(nil))
}

// Memory is an in-process Cache used in tests and when no redis address is
// configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *Memory) Set(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
