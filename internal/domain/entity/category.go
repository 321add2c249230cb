package entity

import "time"

// Category agrupa productos. Al eliminarla, sus productos quedan sin categoría.
type Category struct {
	ID          string
	OwnerID     string
	Name        string // único por dueño
	Description string
	ItemCount   int // solo lectura (agregado)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
