package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de movimiento de inventario.
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// InventoryMovement es una entrada del libro mayor de inventario, solo
// anexable. Sirve para reconstruir el stock histórico; la disponibilidad
// en vivo NO se deriva de este libro sino de las reservas solapadas.
type InventoryMovement struct {
	ID         string
	ResourceID string
	Direction  string
	Quantity   decimal.Decimal
	Reason     string
	Actor      string
	OccurredAt time.Time
	CreatedAt  time.Time
}
