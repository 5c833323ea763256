package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

var _ repository.ResourceRepository = (*ResourceRepo)(nil)

// ResourceRepo implementación del catálogo de recursos sobre PostgreSQL
// (usable con pool o tx).
type ResourceRepo struct {
	q Querier
}

// NewResourceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewResourceRepository(q Querier) *ResourceRepo {
	return &ResourceRepo{q: q}
}

const resourceColumns = `id, laboratory_id, name, inventory_code, kind, total_quantity, stock_on_hand, reorder_threshold, state, created_at, updated_at`

func scanResource(row pgx.Row) (*entity.Resource, error) {
	var r entity.Resource
	err := row.Scan(
		&r.ID, &r.LaboratoryID, &r.Name, &r.InventoryCode, &r.Kind,
		&r.TotalQuantity, &r.StockOnHand, &r.ReorderThreshold, &r.State,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetByID obtiene un recurso por ID, o nil si no existe.
func (r *ResourceRepo) GetByID(ctx context.Context, id string) (*entity.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`
	res, err := scanResource(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

// GetManyForUpdate carga los recursos bloqueando sus filas (SELECT FOR
// UPDATE) en orden determinista de ID: dos admisiones que toquen los mismos
// recursos adquieren los bloqueos en el mismo orden y no se interbloquean.
func (r *ResourceRepo) GetManyForUpdate(ctx context.Context, ids []string) ([]*entity.Resource, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("lock resources: %w", err)
	}
	defer rows.Close()
	var list []*entity.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// ListByLaboratory lista los recursos de un laboratorio.
func (r *ResourceRepo) ListByLaboratory(ctx context.Context, laboratoryID string) ([]*entity.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE laboratory_id = $1 ORDER BY inventory_code`
	rows, err := r.q.Query(ctx, query, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()
	var list []*entity.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// ListBelowReorder lista los consumibles bajo su punto de reposición.
// laboratoryID vacío consulta todos los laboratorios.
func (r *ResourceRepo) ListBelowReorder(ctx context.Context, laboratoryID string) ([]*entity.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources
		WHERE kind = 'consumable'
		  AND state <> 'inactive'
		  AND stock_on_hand < reorder_threshold
		  AND ($1 = '' OR laboratory_id = $1)
		ORDER BY inventory_code`
	rows, err := r.q.Query(ctx, query, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("list below reorder: %w", err)
	}
	defer rows.Close()
	var list []*entity.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// UpdateStock ajusta el stock disponible de un consumible. Llamar solo con
// la fila ya bloqueada dentro de la transacción.
func (r *ResourceRepo) UpdateStock(ctx context.Context, id string, stockOnHand decimal.Decimal) error {
	query := `UPDATE resources SET stock_on_hand = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, stockOnHand)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: recurso %s no existe", id)
	}
	return nil
}
