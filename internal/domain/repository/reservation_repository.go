package repository

import (
	"context"
	"time"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// ReservationFilter acota los listados de solicitudes para el lado de lectura.
// Los campos vacíos no filtran.
type ReservationFilter struct {
	LaboratoryID string
	UserID       string
	State        string
	Limit        int
	Offset       int
}

// ReservationRepository define el puerto de persistencia de solicitudes de
// reserva. El motor de admisión es el único escritor: Create al admitir y
// Update en cada transición de estado.
type ReservationRepository interface {
	Create(ctx context.Context, req *entity.ReservationRequest) error
	GetByID(ctx context.Context, id string) (*entity.ReservationRequest, error)
	// GetForUpdate carga la solicitud bloqueando su fila para la transición.
	GetForUpdate(ctx context.Context, id string) (*entity.ReservationRequest, error)
	Update(ctx context.Context, req *entity.ReservationRequest) error
	List(ctx context.Context, filter ReservationFilter) ([]*entity.ReservationRequest, error)
	// SumCommitted suma, por recurso, las cantidades pedidas por solicitudes en
	// estados pending/approved cuya ventana se solapa con [start, end)
	// (solape semiabierto: r.starts_at < end AND r.ends_at > start).
	// excludeRequestID descuenta la propia solicitud al revalidar en approve.
	SumCommitted(ctx context.Context, resourceIDs []string, start, end time.Time, excludeRequestID string) (map[string]int, error)
}
