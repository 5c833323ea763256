package usecase

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// LaboratoryUseCase lecturas del catálogo de laboratorios.
type LaboratoryUseCase struct {
	labs repository.LaboratoryRepository
}

// NewLaboratoryUseCase construye el caso de uso.
func NewLaboratoryUseCase(labs repository.LaboratoryRepository) *LaboratoryUseCase {
	return &LaboratoryUseCase{labs: labs}
}

// List devuelve todos los laboratorios con su horario y requisitos.
func (uc *LaboratoryUseCase) List(ctx context.Context) ([]*entity.Laboratory, error) {
	return uc.labs.List(ctx)
}

// GetByID devuelve un laboratorio por ID.
func (uc *LaboratoryUseCase) GetByID(ctx context.Context, id string) (*entity.Laboratory, error) {
	lab, err := uc.labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lab == nil {
		return nil, domain.ErrNotFound
	}
	return lab, nil
}
