package repository

import (
	"sync"
	"time"

	"github.com/kraftmortgages/calcserv/internal/models"
)

// MemoryStore is an in-memory ScenarioStore for tests and local development.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	scenarios []models.Scenario
}

// NewMemoryStore creates an empty in-memory scenario store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) Save(scenario *models.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	scenario.ID = m.nextID
	m.nextID++
	if scenario.CreatedAt.IsZero() {
		scenario.CreatedAt = time.Now().UTC()
	}
	m.scenarios = append(m.scenarios, *scenario)
	return nil
}

func (m *MemoryStore) FindByID(id int64) (*models.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.scenarios {
		if m.scenarios[i].ID == id {
			s := m.scenarios[i]
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListRecent(limit int) ([]models.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.scenarios)
	if limit > n {
		limit = n
	}
	out := make([]models.Scenario, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.scenarios[i])
	}
	return out, nil
}
