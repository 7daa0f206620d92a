package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/Olprog59/go-crudstarter/internal/domain"
)

// FieldRule declares how one input field is checked / Déclare comment un champ d'entrée est vérifié
type FieldRule struct {
	Field    string
	Type     domain.Kind
	Required bool
	Nullable bool // Explicit null accepted / null explicite accepté
	Rules    []Rule
}

// Schema is an ordered set of field rules / Ensemble ordonné de règles de champs
type Schema struct {
	Name   string
	Fields []FieldRule
}

// NewSchema builds a schema and panics on invalid declarations / Construit un schéma, panique si invalide
func NewSchema(name string, fields ...FieldRule) *Schema {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		switch {
		case f.Field == "":
			panic(fmt.Sprintf("validation: schema %q has an unnamed field", name))
		case domain.IsReserved(f.Field):
			panic(fmt.Sprintf("validation: schema %q declares reserved field %q", name, f.Field))
		case seen[f.Field]:
			panic(fmt.Sprintf("validation: schema %q declares %q twice", name, f.Field))
		case !f.Type.IsValid():
			panic(fmt.Sprintf("validation: schema %q field %q has unknown type %q", name, f.Field, f.Type))
		}
		seen[f.Field] = true
	}
	return &Schema{Name: name, Fields: fields}
}

// Partial derives a schema where every field is optional / Dérive un schéma où chaque champ est optionnel
func (s *Schema) Partial(name string) *Schema {
	fields := make([]FieldRule, len(s.Fields))
	for i, f := range s.Fields {
		f.Required = false
		fields[i] = f
	}
	return &Schema{Name: name, Fields: fields}
}

// Field returns the rule for a field / Retourne la règle d'un champ
func (s *Schema) Field(name string) (FieldRule, bool) {
	for _, f := range s.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldRule{}, false
}

// Validate checks raw input against a schema / Vérifie une entrée brute contre un schéma
//
// Violations follow schema order, then unknown fields sorted by name. On
// success the returned input holds only declared fields with normalized values.
func Validate(raw map[string]any, s *Schema) (domain.Input, error) {
	var violations []domain.Violation
	out := make(domain.Input, len(raw))

	for _, f := range s.Fields {
		value, present := raw[f.Field]
		if !present {
			if f.Required {
				violations = append(violations, violation(f.Field, CodeMissing, "field is required"))
			}
			continue
		}

		if value == nil {
			if !f.Nullable {
				violations = append(violations, violation(f.Field, CodeNull, "must not be null"))
				continue
			}
			out[f.Field] = nil
			continue
		}

		normalized, ok := normalize(value, f.Type)
		if !ok {
			violations = append(violations, violation(f.Field, CodeWrongType, "must be of type "+string(f.Type)))
			continue
		}

		failed := false
		for _, rule := range f.Rules {
			if !rule.check(normalized) {
				violations = append(violations, violation(f.Field, rule.Code, rule.Message))
				failed = true
			}
		}
		if !failed {
			out[f.Field] = normalized
		}
	}

	var unknown []string
	for key := range raw {
		if _, ok := s.Field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		violations = append(violations, violation(key, CodeUnknownField, "field is not allowed"))
	}

	if len(violations) > 0 {
		return nil, &domain.ValidationError{Schema: s.Name, Violations: violations}
	}
	return out, nil
}

func violation(field, code, message string) domain.Violation {
	return domain.Violation{Field: field, Rule: code, Message: message}
}

// normalize converts a decoded value to the field's Go representation / Convertit une valeur décodée
func normalize(value any, kind domain.Kind) (any, bool) {
	switch kind {
	case domain.KindString:
		s, ok := value.(string)
		return s, ok
	case domain.KindBoolean:
		b, ok := value.(bool)
		return b, ok
	case domain.KindInteger:
		return toInt64(value)
	case domain.KindNumber:
		return toFloat64(value)
	}
	return nil, false
}

func toInt64(value any) (any, bool) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil {
			return nil, false
		}
		return toInt64(f)
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return nil, false
		}
		return int64(v), true
	}
	return nil, false
}

func toFloat64(value any) (any, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsInf(f, 0) {
			return nil, false
		}
		return f, true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return v, true
	}
	return nil, false
}
