package domain

import (
	"encoding/json"
	"time"
)

// Record is one persisted entity instance / Représente une instance persistée d'une entité
type Record struct {
	BaseModel
	Fields map[string]any // Declared fields, nil when absent / Champs déclarés, nil si absents
}

// Input holds validated field values ready for storage / Contient les valeurs validées prêtes pour le stockage
//
// Values are one of string, int64, float64, bool or nil. The store-managed
// keys id, created_at and updated_at never appear.
type Input map[string]any

// Reserved field names owned by the store / Noms de champs réservés au stockage
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// IsReserved reports whether name is store-managed / Indique si le nom est géré par le stockage
func IsReserved(name string) bool {
	return name == FieldID || name == FieldCreatedAt || name == FieldUpdatedAt
}

// Get returns a field value / Retourne la valeur d'un champ
func (r *Record) Get(name string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// MarshalJSON renders the record as a flat object / Sérialise l'enregistrement en objet plat
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[FieldID] = r.ID
	out[FieldCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	out[FieldUpdatedAt] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}
