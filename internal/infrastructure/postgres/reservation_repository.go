package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de solicitudes de reserva sobre PostgreSQL
// (usable con pool o tx; las escrituras solo dentro de la tx del motor).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, user_id, laboratory_id, starts_at, ends_at, justification, state, delivered, delivered_at, approver_id, reject_reason, cancelled_at, created_at, updated_at`

// Create persiste la solicitud y sus líneas. Debe invocarse dentro de la
// transacción del motor para que cabecera y líneas sean atómicas.
func (r *ReservationRepo) Create(ctx context.Context, req *entity.ReservationRequest) error {
	query := `
		INSERT INTO reservation_requests (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.UserID, req.LaboratoryID, req.StartsAt, req.EndsAt,
		req.Justification, req.State, req.Delivered, req.DeliveredAt,
		req.ApproverID, req.RejectReason, req.CancelledAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create reservation: solicitud duplicada: %w", err)
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	for i, it := range req.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO reservation_items (request_id, resource_id, quantity, position)
			VALUES ($1, $2, $3, $4)`,
			req.ID, it.ResourceID, it.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("create reservation item: %w", err)
		}
	}
	return nil
}

func (r *ReservationRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.ReservationRequest, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservation_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var req entity.ReservationRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.LaboratoryID, &req.StartsAt, &req.EndsAt,
		&req.Justification, &req.State, &req.Delivered, &req.DeliveredAt,
		&req.ApproverID, &req.RejectReason, &req.CancelledAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if req.Items, err = r.loadItems(ctx, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByID obtiene una solicitud con sus líneas, o nil si no existe.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.ReservationRequest, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la solicitud bloqueando su fila para la transición.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id string) (*entity.ReservationRequest, error) {
	return r.get(ctx, id, true)
}

// Update persiste una transición de estado. Las líneas son inmutables.
func (r *ReservationRepo) Update(ctx context.Context, req *entity.ReservationRequest) error {
	query := `
		UPDATE reservation_requests
		SET state = $2, delivered = $3, delivered_at = $4, approver_id = $5,
		    reject_reason = $6, cancelled_at = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		req.ID, req.State, req.Delivered, req.DeliveredAt, req.ApproverID,
		req.RejectReason, req.CancelledAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update reservation: solicitud %s no existe", req.ID)
	}
	return nil
}

// List lista solicitudes filtradas; los campos vacíos del filtro no acotan.
func (r *ReservationRepo) List(ctx context.Context, filter repository.ReservationFilter) ([]*entity.ReservationRequest, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservation_requests WHERE 1=1`
	var args []any
	pos := 1
	if filter.LaboratoryID != "" {
		query += fmt.Sprintf(" AND laboratory_id = $%d", pos)
		args = append(args, filter.LaboratoryID)
		pos++
	}
	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", pos)
		args = append(args, filter.UserID)
		pos++
	}
	if filter.State != "" {
		query += fmt.Sprintf(" AND state = $%d", pos)
		args = append(args, filter.State)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReservationRequest
	for rows.Next() {
		var req entity.ReservationRequest
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.LaboratoryID, &req.StartsAt, &req.EndsAt,
			&req.Justification, &req.State, &req.Delivered, &req.DeliveredAt,
			&req.ApproverID, &req.RejectReason, &req.CancelledAt, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, req := range list {
		if req.Items, err = r.loadItems(ctx, req.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// SumCommitted suma por recurso las cantidades de solicitudes pending/approved
// cuya ventana se solapa con [start, end). Solape semiabierto: las ventanas
// contiguas no cuentan, lo que admite reservas espalda con espalda.
func (r *ReservationRepo) SumCommitted(ctx context.Context, resourceIDs []string, start, end time.Time, excludeRequestID string) (map[string]int, error) {
	query := `
		SELECT li.resource_id, COALESCE(SUM(li.quantity), 0)
		FROM reservation_items li
		JOIN reservation_requests rr ON rr.id = li.request_id
		WHERE li.resource_id = ANY($1)
		  AND rr.state IN ('pending', 'approved')
		  AND rr.starts_at < $3
		  AND rr.ends_at > $2
		  AND ($4 = '' OR rr.id <> $4)
		GROUP BY li.resource_id`
	rows, err := r.q.Query(ctx, query, resourceIDs, start, end, excludeRequestID)
	if err != nil {
		return nil, fmt.Errorf("sum committed: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int, len(resourceIDs))
	for rows.Next() {
		var id string
		var sum int
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, fmt.Errorf("scan committed: %w", err)
		}
		out[id] = sum
	}
	return out, rows.Err()
}

func (r *ReservationRepo) loadItems(ctx context.Context, requestID string) ([]entity.LineItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT resource_id, quantity
		FROM reservation_items
		WHERE request_id = $1
		ORDER BY position`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var items []entity.LineItem
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.ResourceID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
