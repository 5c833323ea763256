package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/labreservas-api/internal/application/admission"
	"github.com/jhoicas/labreservas-api/internal/domain"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

var _ admission.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Es la
// frontera atómica del motor de admisión: los bloqueos de fila
// (SELECT FOR UPDATE) que toman los repositorios dentro del callback
// serializan las admisiones que tocan los mismos recursos.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Las fallas de serialización o deadlock se devuelven
// como domain.ConflictError para que el llamador reintente la operación
// completa; el runner no reintenta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	resourceRepo repository.ResourceRepository,
	reservationRepo repository.ReservationRepository,
	movementRepo repository.InventoryMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	resourceRepo := NewResourceRepository(tx)
	reservationRepo := NewReservationRepository(tx)
	movementRepo := NewInventoryMovementRepository(tx)

	if err := fn(resourceRepo, reservationRepo, movementRepo); err != nil {
		if isSerializationFailure(err) {
			return &domain.ConflictError{Op: "tx", Err: err}
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return &domain.ConflictError{Op: "commit", Err: err}
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
