package domain

// Kind is the storage type of a field / Type de stockage d'un champ
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// IsValid checks if kind is known / Vérifie si le type est connu
func (k Kind) IsValid() bool {
	return k == KindString || k == KindInteger || k == KindNumber || k == KindBoolean
}

// Field describes one persisted column / Décrit une colonne persistée
type Field struct {
	Name       string
	Kind       Kind
	Unique     bool   // Backed by a unique index / Couvert par un index unique
	References string // Parent entity name, empty if none / Entité parente, vide si aucune
}

// Entity describes a table managed by the gateway / Décrit une table gérée par la passerelle
type Entity struct {
	Name     string // Plural name used in routes / Nom pluriel utilisé dans les routes
	Singular string
	Table    string
	Fields   []Field
}

// Field returns a field by name / Retourne un champ par son nom
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Columns returns field names in declaration order / Retourne les noms de champs dans l'ordre de déclaration
func (e *Entity) Columns() []string {
	cols := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		cols[i] = f.Name
	}
	return cols
}
