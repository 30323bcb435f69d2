package repositories

import "sync"

// MockCartSnapshotRepository is an in-memory implementation of
// CartSnapshotRepository, used in tests and when no Redis is configured.
type MockCartSnapshotRepository struct {
	snapshots map[string][]byte
	mu        sync.RWMutex
}

// NewMockCartSnapshotRepository creates a new instance of MockCartSnapshotRepository.
func NewMockCartSnapshotRepository() *MockCartSnapshotRepository {
	return &MockCartSnapshotRepository{
		snapshots: make(map[string][]byte),
	}
}

// Load returns the raw snapshot for key, or ok=false if none exists.
func (r *MockCartSnapshotRepository) Load(key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.snapshots[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

// Save overwrites the snapshot for key.
func (r *MockCartSnapshotRepository) Save(key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	r.snapshots[key] = cp
	return nil
}

// Delete removes the snapshot for key; absent keys are not an error.
func (r *MockCartSnapshotRepository) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.snapshots, key)
	return nil
}
