package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by the store / Catégories d'erreurs retournées par le stockage
var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("constraint conflict")
	ErrTransient = errors.New("storage temporarily unavailable")
)

// StoreError wraps a driver failure with its classification / Enveloppe une erreur pilote avec sa classification
type StoreError struct {
	Entity string
	Op     string
	Kind   error // ErrNotFound, ErrConflict, ErrTransient or nil / nil si non classée
	Err    error
}

func (e *StoreError) Error() string {
	kind := "storage failure"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.Op, kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Entity, e.Op, kind, e.Err)
}

// Is matches the error kind / Compare la catégorie d'erreur
func (e *StoreError) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Violation is one field-level validation failure / Représente un échec de validation sur un champ
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every violation found in an input / Liste toutes les violations d'une entrée
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return fmt.Sprintf("%s: validation failed: %s", e.Schema, strings.Join(parts, "; "))
}

// HasField reports whether a field has at least one violation / Indique si un champ a une violation
func (e *ValidationError) HasField(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
