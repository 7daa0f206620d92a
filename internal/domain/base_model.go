package domain

import "time"

// BaseModel provides the store-managed fields of every record / Fournit les champs gérés par le stockage
type BaseModel struct {
	ID        int64     // Assigned by the store on insert / Attribué par le stockage à l'insertion
	CreatedAt time.Time // Record creation time / Heure de création de l'enregistrement
	UpdatedAt time.Time // Record last update time / Heure de dernière mise à jour
}

