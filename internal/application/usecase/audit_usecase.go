package usecase

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// AuditUseCase lectura del registro de auditoría para la UI externa.
type AuditUseCase struct {
	audit repository.AuditRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(audit repository.AuditRepository) *AuditUseCase {
	return &AuditUseCase{audit: audit}
}

// ListByEntity lista los registros de una entidad, más recientes primero.
func (uc *AuditUseCase) ListByEntity(ctx context.Context, entityTable, entityID string, limit, offset int) ([]*entity.AuditRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.audit.ListByEntity(ctx, entityTable, entityID, limit, offset)
}
