package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/ports"
)

var _ ports.RecordGateway = (*MockRecordGateway)(nil)

// MockRecordGateway is an in-memory implementation of ports.RecordGateway for testing
type MockRecordGateway struct {
	mu sync.Mutex

	// Mock data storage
	Entity  string
	Records map[int64]*domain.Record
	NextID  int64

	// Mock behavior flags
	InsertError   error
	FindAllError  error
	FindByIDError error
	UpdateError   error
	DeleteError   error

	// Call tracking
	InsertCalls   int
	FindAllCalls  int
	FindByIDCalls int
	UpdateCalls   int
	DeleteCalls   int
	LastInput     domain.Input
}

// NewMockRecordGateway creates a new mock gateway
func NewMockRecordGateway(entity string) *MockRecordGateway {
	return &MockRecordGateway{
		Entity:  entity,
		Records: make(map[int64]*domain.Record),
		NextID:  1,
	}
}

func (m *MockRecordGateway) notFound(op string) error {
	return &domain.StoreError{Entity: m.Entity, Op: op, Kind: domain.ErrNotFound}
}

func (m *MockRecordGateway) Insert(ctx context.Context, input domain.Input) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++
	m.LastInput = input

	if m.InsertError != nil {
		return nil, m.InsertError
	}

	now := time.Now().UTC()
	rec := &domain.Record{
		BaseModel: domain.BaseModel{ID: m.NextID, CreatedAt: now, UpdatedAt: now},
		Fields:    make(map[string]any, len(input)),
	}
	for k, v := range input {
		rec.Fields[k] = v
	}
	m.Records[rec.ID] = rec
	m.NextID++
	return copyRecord(rec), nil
}

func (m *MockRecordGateway) FindAll(ctx context.Context) ([]*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindAllCalls++

	if m.FindAllError != nil {
		return nil, m.FindAllError
	}

	out := make([]*domain.Record, 0, len(m.Records))
	for id := int64(1); id < m.NextID; id++ {
		if rec, ok := m.Records[id]; ok {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (m *MockRecordGateway) FindByID(ctx context.Context, id int64) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindByIDCalls++

	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	rec, ok := m.Records[id]
	if !ok {
		return nil, m.notFound("find_by_id")
	}
	return copyRecord(rec), nil
}

func (m *MockRecordGateway) UpdateByID(ctx context.Context, id int64, input domain.Input) (*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	m.LastInput = input

	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	rec, ok := m.Records[id]
	if !ok {
		return nil, m.notFound("update_by_id")
	}
	for k, v := range input {
		rec.Fields[k] = v
	}
	rec.UpdatedAt = time.Now().UTC()
	return copyRecord(rec), nil
}

func (m *MockRecordGateway) DeleteByID(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++

	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.Records[id]; !ok {
		return m.notFound("delete_by_id")
	}
	delete(m.Records, id)
	return nil
}

func copyRecord(rec *domain.Record) *domain.Record {
	cp := *rec
	cp.Fields = make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		cp.Fields[k] = v
	}
	return &cp
}
