package admission

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
	"github.com/jhoicas/labreservas-api/pkg/logger"
)

// Recorder anexa registros de auditoría como canal lateral de mejor
// esfuerzo: una falla al escribir se registra en el log de errores pero
// nunca revierte ni bloquea la transición de negocio que la originó.
type Recorder struct {
	audit repository.AuditRepository
	log   *logger.Logger
}

// NewRecorder construye el registrador de auditoría.
func NewRecorder(audit repository.AuditRepository, log *logger.Logger) *Recorder {
	return &Recorder{audit: audit, log: log}
}

// Record anexa un registro de actividad. Usa un contexto desacoplado de la
// cancelación del llamador: la auditoría de una transición ya confirmada no
// debe perderse porque el llamador haya expirado.
func (r *Recorder) Record(ctx context.Context, actor, action, entityTable, entityID string, detail map[string]any) {
	rec := &entity.AuditRecord{
		ID:          uuid.New().String(),
		OccurredAt:  time.Now(),
		Actor:       actor,
		Action:      action,
		EntityTable: entityTable,
		EntityID:    entityID,
		Detail:      detail,
	}
	if err := r.audit.Create(context.WithoutCancel(ctx), rec); err != nil {
		r.log.Error().
			Err(err).
			Str("action", action).
			Str("entity", entityTable+"/"+entityID).
			Msg("auditoría: no se pudo anexar el registro")
	}
}
