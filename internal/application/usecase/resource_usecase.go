package usecase

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// ResourceUseCase lecturas del catálogo de recursos. La administración del
// catálogo (altas, mantenimiento, desactivación) es externa al motor.
type ResourceUseCase struct {
	resources repository.ResourceRepository
}

// NewResourceUseCase construye el caso de uso.
func NewResourceUseCase(resources repository.ResourceRepository) *ResourceUseCase {
	return &ResourceUseCase{resources: resources}
}

// ListByLaboratory lista los recursos de un laboratorio.
func (uc *ResourceUseCase) ListByLaboratory(ctx context.Context, laboratoryID string) ([]*entity.Resource, error) {
	return uc.resources.ListByLaboratory(ctx, laboratoryID)
}

// ListBelowReorder lista los consumibles bajo su punto de reposición,
// insumo del reporte semanal de compras.
func (uc *ResourceUseCase) ListBelowReorder(ctx context.Context, laboratoryID string) ([]*entity.Resource, error) {
	return uc.resources.ListBelowReorder(ctx, laboratoryID)
}
