package entity

import "time"

// Supplier proveedor de productos; se vincula a productos (N:M) y a órdenes de compra (1:N).
type Supplier struct {
	ID        string
	OwnerID   string
	Name      string // único por dueño
	Email     string
	Phone     string
	Website   string
	Address   string
	Notes     string
	LogoURL   string // la carga del archivo la resuelve un servicio externo
	ItemCount int    // solo lectura (agregado)
	CreatedAt time.Time
	UpdatedAt time.Time
}
