package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// ResourceRepository define el puerto de persistencia del catálogo de recursos (DIP).
// El catálogo se administra fuera del motor; aquí solo se lee y, dentro de la
// frontera transaccional, se bloquea y se ajusta el stock de consumibles.
type ResourceRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Resource, error)
	// GetManyForUpdate carga los recursos indicados bloqueando sus filas
	// (SELECT FOR UPDATE) en orden determinista de ID para evitar deadlocks.
	// Serializa las admisiones que tocan los mismos recursos.
	GetManyForUpdate(ctx context.Context, ids []string) ([]*entity.Resource, error)
	ListByLaboratory(ctx context.Context, laboratoryID string) ([]*entity.Resource, error)
	// ListBelowReorder lista los consumibles bajo su punto de reposición.
	ListBelowReorder(ctx context.Context, laboratoryID string) ([]*entity.Resource, error)
	// UpdateStock ajusta el stock disponible de un consumible (solo dentro de la tx).
	UpdateStock(ctx context.Context, id string, stockOnHand decimal.Decimal) error
}
