package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Olprog59/go-crudstarter/internal/catalog"
	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/metrics"
	"github.com/Olprog59/go-crudstarter/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*RecordService, *mocks.MockRecordGateway, *mocks.MockMetrics) {
	t.Helper()
	gw := mocks.NewMockRecordGateway("categories")
	m := mocks.NewMockMetrics()
	return NewRecordService(catalog.Categories(), gw, m), gw, m
}

func TestRecordService_Create(t *testing.T) {
	svc, gw, m := newTestService(t)

	rec, err := svc.Create(context.Background(), map[string]any{"name": "Salgada"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, 1, gw.InsertCalls)
	assert.Equal(t, domain.Input{"name": "Salgada"}, gw.LastInput)
	assert.Equal(t, 1, m.Count("categories", OpCreate, metrics.OutcomeSuccess))
}

func TestRecordService_CreateInvalidNeverReachesStore(t *testing.T) {
	svc, gw, m := newTestService(t)

	_, err := svc.Create(context.Background(), map[string]any{"name": "Salgada", "color": "red"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("color"))
	assert.Equal(t, 0, gw.InsertCalls)
	assert.Equal(t, 1, m.ValidationFailures["categories/categories"])
	assert.Equal(t, 1, m.Count("categories", OpCreate, metrics.OutcomeInvalid))
}

func TestRecordService_UpdateUsesPartialSchema(t *testing.T) {
	svc, gw, m := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, map[string]any{"name": "Salgada"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, map[string]any{"description": "savory"})
	require.NoError(t, err)
	assert.Equal(t, "Salgada", updated.Fields["name"])
	assert.Equal(t, "savory", updated.Fields["description"])

	_, err = svc.Update(ctx, created.ID, map[string]any{"name": "x"})
	require.Error(t, err)
	assert.Equal(t, 1, gw.UpdateCalls)
	assert.Equal(t, 1, m.ValidationFailures["categories/categories:update"])
}

func TestRecordService_NotFound(t *testing.T) {
	svc, _, m := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, 7, map[string]any{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 1, m.Count("categories", OpGet, metrics.OutcomeNotFound))
	assert.Equal(t, 1, m.Count("categories", OpUpdate, metrics.OutcomeNotFound))
	assert.Equal(t, 1, m.Count("categories", OpDelete, metrics.OutcomeNotFound))
}

func TestRecordService_StoreErrorsPassThrough(t *testing.T) {
	svc, gw, m := newTestService(t)
	ctx := context.Background()

	gw.InsertError = &domain.StoreError{Entity: "categories", Op: "insert", Kind: domain.ErrConflict}
	_, err := svc.Create(ctx, map[string]any{"name": "Salgada"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, m.Count("categories", OpCreate, metrics.OutcomeConflict))

	gw.FindAllError = &domain.StoreError{Entity: "categories", Op: "find_all", Kind: domain.ErrTransient}
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.Equal(t, 1, m.Count("categories", OpList, metrics.OutcomeError))
}

func TestRecordService_ListAndDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Salgada", "Doce"} {
		_, err := svc.Create(ctx, map[string]any{"name": name})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, 1))

	records, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Doce", records[0].Fields["name"])
}

func TestNewRecordService_NilRecorder(t *testing.T) {
	svc := NewRecordService(catalog.Todos(), mocks.NewMockRecordGateway("todos"), nil)

	_, err := svc.Create(context.Background(), map[string]any{"title": "Preheat oven"})
	assert.NoError(t, err)
	assert.Equal(t, "todos", svc.Resource().Name())
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, metrics.OutcomeSuccess},
		{"validation", &domain.ValidationError{}, metrics.OutcomeInvalid},
		{"not found", &domain.StoreError{Kind: domain.ErrNotFound}, metrics.OutcomeNotFound},
		{"conflict", &domain.StoreError{Kind: domain.ErrConflict}, metrics.OutcomeConflict},
		{"transient", &domain.StoreError{Kind: domain.ErrTransient}, metrics.OutcomeError},
		{"unclassified", errors.New("boom"), metrics.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}
