package repository

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// AuditRepository define el puerto del registro de auditoría.
// Solo anexable; la lectura alimenta la UI de auditoría externa.
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	ListByEntity(ctx context.Context, entityTable, entityID string, limit, offset int) ([]*entity.AuditRecord, error)
}
