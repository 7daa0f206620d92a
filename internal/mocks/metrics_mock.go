package mocks

import "sync"

// MockMetrics is a mock implementation of the record metrics recorder for testing
type MockMetrics struct {
	mu sync.Mutex

	Operations         map[string]int // "entity/operation/outcome" -> count
	ValidationFailures map[string]int // "entity/schema" -> count
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Operations:         make(map[string]int),
		ValidationFailures: make(map[string]int),
	}
}

func (m *MockMetrics) RecordStoreOperation(entity, operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations[entity+"/"+operation+"/"+outcome]++
}

func (m *MockMetrics) RecordValidationFailure(entity, schema string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationFailures[entity+"/"+schema]++
}

// Count returns how many times an operation outcome was recorded
func (m *MockMetrics) Count(entity, operation, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Operations[entity+"/"+operation+"/"+outcome]
}
