package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// MovementUseCase lecturas del libro mayor de inventario, para reconstruir
// el stock histórico desde la UI de reportes.
type MovementUseCase struct {
	movements repository.InventoryMovementRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(movements repository.InventoryMovementRepository) *MovementUseCase {
	return &MovementUseCase{movements: movements}
}

// ListByResource lista los movimientos de un recurso en un rango de fechas.
func (uc *MovementUseCase) ListByResource(ctx context.Context, resourceID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.movements.ListByResource(ctx, resourceID, from, to, limit, offset)
}
