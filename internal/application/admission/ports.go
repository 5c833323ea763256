package admission

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la frontera atómica del motor: la lectura
// de disponibilidad y la escritura de la solicitud ocurren dentro del mismo
// Run, de modo que dos admisiones sobre los mismos recursos se serializan.
// Una falla de serialización se devuelve como domain.ConflictError.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		resourceRepo repository.ResourceRepository,
		reservationRepo repository.ReservationRepository,
		movementRepo repository.InventoryMovementRepository,
	) error) error
}
