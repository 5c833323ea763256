package repository

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// LaboratoryRepository define el puerto de lectura de laboratorios:
// identidad, horario semanal y lista ordenada de requisitos.
// Para el motor de admisión es configuración de solo lectura.
type LaboratoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Laboratory, error)
	List(ctx context.Context) ([]*entity.Laboratory, error)
}
