package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo libro mayor de inventario sobre PostgreSQL
// (usable con pool o tx). Solo anexable.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create anexa un movimiento. Idempotente por ID: reinsertar el mismo ID es
// una violación única que se reporta como tal.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, resource_id, direction, quantity, reason, actor, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ResourceID, movement.Direction, movement.Quantity,
		movement.Reason, movement.Actor, movement.OccurredAt, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create movement: movimiento duplicado: %w", err)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// ListByResource lista movimientos de un recurso en un rango de fechas.
func (r *InventoryMovementRepo) ListByResource(ctx context.Context, resourceID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, resource_id, direction, quantity, reason, actor, occurred_at, created_at
		FROM inventory_movements WHERE resource_id = $1`
	args := []any{resourceID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.ResourceID, &m.Direction, &m.Quantity,
			&m.Reason, &m.Actor, &m.OccurredAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
