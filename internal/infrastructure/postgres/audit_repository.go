package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo registro de auditoría sobre PostgreSQL. Solo anexable; el
// detalle se guarda como JSONB.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create anexa un registro de actividad. Idempotente por ID.
func (r *AuditRepo) Create(ctx context.Context, record *entity.AuditRecord) error {
	var detail []byte
	if record.Detail != nil {
		var err error
		if detail, err = json.Marshal(record.Detail); err != nil {
			return fmt.Errorf("create audit: serializar detalle: %w", err)
		}
	}
	query := `
		INSERT INTO audit_records (id, occurred_at, actor, action, entity_table, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		record.ID, record.OccurredAt, record.Actor, record.Action,
		record.EntityTable, record.EntityID, detail,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Reintento del mismo registro: el anexado es idempotente por ID.
			return nil
		}
		return fmt.Errorf("create audit: %w", err)
	}
	return nil
}

// ListByEntity lista los registros de una entidad, más recientes primero.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityTable, entityID string, limit, offset int) ([]*entity.AuditRecord, error) {
	query := `
		SELECT id, occurred_at, actor, action, entity_table, entity_id, detail
		FROM audit_records
		WHERE entity_table = $1 AND entity_id = $2
		ORDER BY occurred_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, entityTable, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuditRecord
	for rows.Next() {
		var rec entity.AuditRecord
		var detail []byte
		if err := rows.Scan(&rec.ID, &rec.OccurredAt, &rec.Actor, &rec.Action,
			&rec.EntityTable, &rec.EntityID, &detail); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &rec.Detail); err != nil {
				return nil, fmt.Errorf("audit %s: detalle malformado: %w", rec.ID, err)
			}
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
