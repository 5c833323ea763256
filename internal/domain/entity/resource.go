package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de recurso de laboratorio.
const (
	ResourceKindDurable    = "durable"    // equipo reutilizable (osciloscopio, balanza)
	ResourceKindConsumable = "consumable" // insumo que se agota (reactivos, guantes)
)

// Estados operativos de un recurso.
const (
	ResourceStateAvailable        = "available"
	ResourceStateReserved         = "reserved"
	ResourceStateUnderMaintenance = "under_maintenance"
	ResourceStateInactive         = "inactive"
)

// Resource representa un recurso reservable de un laboratorio (equipo o insumo).
// TotalQuantity es la capacidad reservable en unidades enteras; StockOnHand y
// ReorderThreshold aplican solo a consumibles y admiten fracciones (ml, g).
// Un recurso nunca se elimina: se desactiva (estado inactive).
type Resource struct {
	ID               string
	LaboratoryID     string
	Name             string
	InventoryCode    string
	Kind             string
	TotalQuantity    int
	StockOnHand      decimal.Decimal
	ReorderThreshold decimal.Decimal
	State            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Reservable indica si el recurso puede admitir nuevas reservas.
func (r *Resource) Reservable() bool {
	return r.State == ResourceStateAvailable
}

// IsConsumable indica si el recurso es un insumo consumible.
func (r *Resource) IsConsumable() bool {
	return r.Kind == ResourceKindConsumable
}

// BelowReorder indica si un consumible cayó bajo su punto de reposición.
// Para recursos durables siempre es false (el umbral no aplica).
func (r *Resource) BelowReorder() bool {
	if !r.IsConsumable() {
		return false
	}
	return r.StockOnHand.LessThan(r.ReorderThreshold)
}
