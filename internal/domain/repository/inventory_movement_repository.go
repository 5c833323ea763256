package repository

import (
	"context"
	"time"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto del libro mayor de inventario.
// Solo anexable; idempotente por ID.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByResource(ctx context.Context, resourceID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
