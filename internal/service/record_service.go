package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Olprog59/go-crudstarter/internal/catalog"
	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/metrics"
	"github.com/Olprog59/go-crudstarter/internal/ports"
	"github.com/Olprog59/go-crudstarter/internal/validation"
)

// Operation names used in metrics and logs / Noms d'opérations pour métriques et logs
const (
	OpCreate = "create"
	OpList   = "list"
	OpGet    = "get"
	OpUpdate = "update"
	OpDelete = "delete"
)

// OperationRecorder records record metrics / Enregistre les métriques des enregistrements
type OperationRecorder interface {
	RecordStoreOperation(entity, operation, outcome string)
	RecordValidationFailure(entity, schema string)
}

type noopRecorder struct{}

func (noopRecorder) RecordStoreOperation(string, string, string) {}
func (noopRecorder) RecordValidationFailure(string, string)      {}

// RecordService runs validation then storage for one resource / Enchaîne validation puis stockage pour une ressource
type RecordService struct {
	resource *catalog.Resource
	gateway  ports.RecordGateway
	metrics  OperationRecorder
}

// NewRecordService creates a record service instance / Crée une instance de service d'enregistrements
func NewRecordService(resource *catalog.Resource, gateway ports.RecordGateway, recorder OperationRecorder) *RecordService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &RecordService{
		resource: resource,
		gateway:  gateway,
		metrics:  recorder,
	}
}

// Resource returns the served resource / Retourne la ressource servie
func (s *RecordService) Resource() *catalog.Resource {
	return s.resource
}

// Create validates raw input and stores a new record / Valide l'entrée brute et insère un enregistrement
func (s *RecordService) Create(ctx context.Context, raw map[string]any) (*domain.Record, error) {
	input, err := s.validate(raw, s.resource.Create)
	if err != nil {
		s.observe(ctx, OpCreate, err)
		return nil, err
	}

	rec, err := s.gateway.Insert(ctx, input)
	s.observe(ctx, OpCreate, err)
	return rec, err
}

// List returns every record / Retourne tous les enregistrements
func (s *RecordService) List(ctx context.Context) ([]*domain.Record, error) {
	records, err := s.gateway.FindAll(ctx)
	s.observe(ctx, OpList, err)
	return records, err
}

// Get retrieves a record by ID / Récupère un enregistrement par ID
func (s *RecordService) Get(ctx context.Context, id int64) (*domain.Record, error) {
	rec, err := s.gateway.FindByID(ctx, id)
	s.observe(ctx, OpGet, err)
	return rec, err
}

// Update validates a partial input and applies it / Valide une entrée partielle et l'applique
func (s *RecordService) Update(ctx context.Context, id int64, raw map[string]any) (*domain.Record, error) {
	input, err := s.validate(raw, s.resource.Update)
	if err != nil {
		s.observe(ctx, OpUpdate, err)
		return nil, err
	}

	rec, err := s.gateway.UpdateByID(ctx, id, input)
	s.observe(ctx, OpUpdate, err)
	return rec, err
}

// Delete removes a record / Supprime un enregistrement
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	err := s.gateway.DeleteByID(ctx, id)
	s.observe(ctx, OpDelete, err)
	return err
}

func (s *RecordService) validate(raw map[string]any, schema *validation.Schema) (domain.Input, error) {
	input, err := validation.Validate(raw, schema)
	if err != nil {
		s.metrics.RecordValidationFailure(s.resource.Name(), schema.Name)
	}
	return input, err
}

// observe records the outcome and logs unexpected failures / Enregistre le résultat et journalise les échecs inattendus
func (s *RecordService) observe(ctx context.Context, op string, err error) {
	outcome := Outcome(err)
	s.metrics.RecordStoreOperation(s.resource.Name(), op, outcome)

	if outcome != metrics.OutcomeError {
		return
	}
	if errors.Is(err, domain.ErrTransient) {
		slog.WarnContext(ctx, "storage unavailable", "entity", s.resource.Name(), "operation", op, "err", err)
		return
	}
	slog.ErrorContext(ctx, "record operation failed", "entity", s.resource.Name(), "operation", op, "err", err)
}

// Outcome classifies an operation result / Classe le résultat d'une opération
func Outcome(err error) string {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrConflict):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
