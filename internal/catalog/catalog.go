// Package catalog declares the resources exposed by the API.
// Each resource pairs a storage entity with its create and update schemas.
package catalog

import (
	"fmt"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/Olprog59/go-crudstarter/internal/validation"
)

// Resource binds an entity to its input schemas / Associe une entité à ses schémas d'entrée
type Resource struct {
	Entity domain.Entity
	Create *validation.Schema
	Update *validation.Schema
}

// Name returns the route name of the resource / Retourne le nom de route de la ressource
func (r *Resource) Name() string {
	return r.Entity.Name
}

// newResource derives the update schema from the create schema
func newResource(entity domain.Entity, create *validation.Schema) *Resource {
	return &Resource{
		Entity: entity,
		Create: create,
		Update: create.Partial(entity.Name + ":update"),
	}
}

// All returns every resource in registration order / Retourne toutes les ressources dans l'ordre d'enregistrement
//
// Parents come before children so the order doubles as migration order.
func All() []*Resource {
	return []*Resource{
		Categories(),
		Pizzas(),
		Users(),
		Orders(),
		Todos(),
	}
}

// Lookup finds a resource by route name / Trouve une ressource par nom de route
func Lookup(name string) (*Resource, bool) {
	for _, r := range All() {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// Check verifies schemas and references are consistent / Vérifie la cohérence des schémas et références
func Check(resources []*Resource) error {
	known := make(map[string]bool, len(resources))
	for _, r := range resources {
		if known[r.Name()] {
			return fmt.Errorf("catalog: resource %q registered twice", r.Name())
		}
		known[r.Name()] = true
	}

	for _, r := range resources {
		if r.Entity.Table == "" {
			return fmt.Errorf("catalog: resource %q has no table", r.Name())
		}
		for _, f := range r.Entity.Fields {
			if domain.IsReserved(f.Name) {
				return fmt.Errorf("catalog: %s declares reserved field %q", r.Name(), f.Name)
			}
			if f.References != "" && !known[f.References] {
				return fmt.Errorf("catalog: %s.%s references unknown resource %q", r.Name(), f.Name, f.References)
			}
		}
		for _, s := range []*validation.Schema{r.Create, r.Update} {
			for _, rule := range s.Fields {
				field, ok := r.Entity.Field(rule.Field)
				if !ok {
					return fmt.Errorf("catalog: schema %q validates undeclared field %q", s.Name, rule.Field)
				}
				if field.Kind != rule.Type {
					return fmt.Errorf("catalog: schema %q types %q as %s, entity stores %s", s.Name, rule.Field, rule.Type, field.Kind)
				}
			}
		}
	}
	return nil
}
