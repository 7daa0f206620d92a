package gateway

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Olprog59/go-crudstarter/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scan reads one row into a record, NULL becoming nil / Lit une ligne dans un enregistrement, NULL devient nil
func (g *Gateway) scan(row rowScanner) (*domain.Record, error) {
	rec := &domain.Record{Fields: make(map[string]any, len(g.entity.Fields))}

	holders := make([]any, len(g.entity.Fields))
	for i, f := range g.entity.Fields {
		holders[i] = holderFor(f.Kind)
	}

	var created, updated timestamp
	dest := make([]any, 0, len(holders)+3)
	dest = append(dest, &rec.ID)
	dest = append(dest, holders...)
	dest = append(dest, &created, &updated)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	for i, f := range g.entity.Fields {
		rec.Fields[f.Name] = valueOf(holders[i])
	}
	rec.CreatedAt = created.Time
	rec.UpdatedAt = updated.Time
	return rec, nil
}

func holderFor(kind domain.Kind) any {
	switch kind {
	case domain.KindInteger:
		return &sql.NullInt64{}
	case domain.KindNumber:
		return &sql.NullFloat64{}
	case domain.KindBoolean:
		return &sql.NullBool{}
	default:
		return &sql.NullString{}
	}
}

func valueOf(holder any) any {
	switch h := holder.(type) {
	case *sql.NullInt64:
		if h.Valid {
			return h.Int64
		}
	case *sql.NullFloat64:
		if h.Valid {
			return h.Float64
		}
	case *sql.NullBool:
		if h.Valid {
			return h.Bool
		}
	case *sql.NullString:
		if h.Valid {
			return h.String
		}
	}
	return nil
}

// timestampLayouts covers the text forms drivers hand back for DATETIME columns
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// timestamp scans a column stored either natively or as text / Lit une colonne horodatée native ou texte
type timestamp struct {
	Time time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("gateway: cannot scan %T into timestamp", src)
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("gateway: unrecognized timestamp %q", s)
}
