package catalog

import (
	"github.com/Olprog59/go-crudstarter/internal/domain"
	v "github.com/Olprog59/go-crudstarter/internal/validation"
)

// Categories groups pizzas / Regroupe les pizzas
func Categories() *Resource {
	return newResource(
		domain.Entity{
			Name:     "categories",
			Singular: "category",
			Table:    "categories",
			Fields: []domain.Field{
				{Name: "name", Kind: domain.KindString, Unique: true},
				{Name: "description", Kind: domain.KindString},
			},
		},
		v.NewSchema("categories",
			v.FieldRule{Field: "name", Type: domain.KindString, Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(50)}},
			v.FieldRule{Field: "description", Type: domain.KindString, Nullable: true, Rules: []v.Rule{v.MaxLength(255)}},
		),
	)
}

// Pizzas is the menu / Représente le menu
func Pizzas() *Resource {
	return newResource(
		domain.Entity{
			Name:     "pizzas",
			Singular: "pizza",
			Table:    "pizzas",
			Fields: []domain.Field{
				{Name: "name", Kind: domain.KindString, Unique: true},
				{Name: "description", Kind: domain.KindString},
				{Name: "price", Kind: domain.KindNumber},
				{Name: "available", Kind: domain.KindBoolean},
				{Name: "category_id", Kind: domain.KindInteger, References: "categories"},
			},
		},
		v.NewSchema("pizzas",
			v.FieldRule{Field: "name", Type: domain.KindString, Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
			v.FieldRule{Field: "description", Type: domain.KindString, Nullable: true, Rules: []v.Rule{v.MaxLength(500)}},
			v.FieldRule{Field: "price", Type: domain.KindNumber, Required: true, Rules: []v.Rule{v.Range(0, 1000)}},
			v.FieldRule{Field: "available", Type: domain.KindBoolean},
			v.FieldRule{Field: "category_id", Type: domain.KindInteger, Nullable: true, Rules: []v.Rule{v.Min(1)}},
		),
	)
}

// Users places orders / Passent les commandes
func Users() *Resource {
	return newResource(
		domain.Entity{
			Name:     "users",
			Singular: "user",
			Table:    "users",
			Fields: []domain.Field{
				{Name: "name", Kind: domain.KindString},
				{Name: "email", Kind: domain.KindString, Unique: true},
				{Name: "role", Kind: domain.KindString},
			},
		},
		v.NewSchema("users",
			v.FieldRule{Field: "name", Type: domain.KindString, Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
			v.FieldRule{Field: "email", Type: domain.KindString, Required: true, Rules: []v.Rule{v.MaxLength(254), v.Email()}},
			v.FieldRule{Field: "role", Type: domain.KindString, Rules: []v.Rule{v.OneOf("customer", "admin")}},
		),
	)
}

// Orders belong to a user / Appartiennent à un utilisateur
func Orders() *Resource {
	return newResource(
		domain.Entity{
			Name:     "orders",
			Singular: "order",
			Table:    "orders",
			Fields: []domain.Field{
				{Name: "user_id", Kind: domain.KindInteger, References: "users"},
				{Name: "description", Kind: domain.KindString},
				{Name: "quantity", Kind: domain.KindInteger},
				{Name: "total", Kind: domain.KindNumber},
				{Name: "status", Kind: domain.KindString},
			},
		},
		v.NewSchema("orders",
			v.FieldRule{Field: "user_id", Type: domain.KindInteger, Required: true, Rules: []v.Rule{v.Min(1)}},
			v.FieldRule{Field: "description", Type: domain.KindString, Required: true, Rules: []v.Rule{v.MinLength(1), v.MaxLength(255)}},
			v.FieldRule{Field: "quantity", Type: domain.KindInteger, Required: true, Rules: []v.Rule{v.Range(1, 100)}},
			v.FieldRule{Field: "total", Type: domain.KindNumber, Required: true, Rules: []v.Rule{v.Range(0, 100000)}},
			v.FieldRule{Field: "status", Type: domain.KindString, Rules: []v.Rule{v.OneOf("pending", "preparing", "delivered", "cancelled")}},
		),
	)
}

// Todos is a standalone task list / Liste de tâches indépendante
func Todos() *Resource {
	return newResource(
		domain.Entity{
			Name:     "todos",
			Singular: "todo",
			Table:    "todos",
			Fields: []domain.Field{
				{Name: "title", Kind: domain.KindString},
				{Name: "description", Kind: domain.KindString},
				{Name: "done", Kind: domain.KindBoolean},
			},
		},
		v.NewSchema("todos",
			v.FieldRule{Field: "title", Type: domain.KindString, Required: true, Rules: []v.Rule{v.MinLength(1), v.MaxLength(200)}},
			v.FieldRule{Field: "description", Type: domain.KindString, Nullable: true, Rules: []v.Rule{v.MaxLength(1000)}},
			v.FieldRule{Field: "done", Type: domain.KindBoolean},
		),
	)
}
