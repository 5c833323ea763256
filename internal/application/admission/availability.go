package admission

import (
	"context"
	"time"

	"github.com/jhoicas/labreservas-api/internal/domain"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
	"github.com/jhoicas/labreservas-api/pkg/logger"
)

// AvailabilityItem es la disponibilidad de un recurso sobre una ventana:
// capacidad total, cantidad comprometida por reservas solapadas y remanente.
type AvailabilityItem struct {
	ResourceID string
	State      string
	Total      int
	Committed  int
	Free       int
}

// AvailabilityCalculator calcula la cantidad reservable de un conjunto de
// recursos sobre una ventana [start, end). La cantidad comprometida es la
// suma de las líneas de solicitudes en pending/approved cuya ventana se
// solapa con la consultada (semántica semiabierta: ventanas contiguas no se
// solapan). Lectura pura, sin efectos.
type AvailabilityCalculator struct {
	resources    repository.ResourceRepository
	reservations repository.ReservationRepository
	log          *logger.Logger
}

// NewAvailabilityCalculator construye el calculador.
func NewAvailabilityCalculator(
	resources repository.ResourceRepository,
	reservations repository.ReservationRepository,
	log *logger.Logger,
) *AvailabilityCalculator {
	return &AvailabilityCalculator{resources: resources, reservations: reservations, log: log}
}

// Availability devuelve {total, comprometido, libre} por recurso.
// Los errores de los colaboradores se devuelven como domain.EvaluationError:
// la consulta no fue evaluada y puede reintentarse tal cual.
func (c *AvailabilityCalculator) Availability(ctx context.Context, resourceIDs []string, start, end time.Time) (map[string]AvailabilityItem, error) {
	if len(resourceIDs) == 0 {
		return nil, &domain.ValidationError{Field: "resource_ids", Message: "se requiere al menos un recurso"}
	}
	if !start.Before(end) {
		return nil, &domain.ValidationError{Field: "window", Message: "la ventana debe cumplir start < end"}
	}

	resources := make([]*entity.Resource, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		res, err := c.resources.GetByID(ctx, id)
		if err != nil {
			return nil, &domain.EvaluationError{Op: "availability: cargar recurso", Err: err}
		}
		if res == nil {
			return nil, &domain.EvaluationError{Op: "availability", Err: domain.ErrNotFound}
		}
		resources = append(resources, res)
	}

	committed, err := c.reservations.SumCommitted(ctx, resourceIDs, start, end, "")
	if err != nil {
		return nil, &domain.EvaluationError{Op: "availability: sumar comprometido", Err: err}
	}
	return c.compute(resources, committed), nil
}

// compute arma el mapa de disponibilidad a partir de recursos ya cargados y
// de la suma comprometida. Lo comparte la consulta pura y la admisión dentro
// de la tx (que trabaja con filas bloqueadas).
func (c *AvailabilityCalculator) compute(resources []*entity.Resource, committed map[string]int) map[string]AvailabilityItem {
	out := make(map[string]AvailabilityItem, len(resources))
	for _, res := range resources {
		sum := committed[res.ID]
		free := res.TotalQuantity - sum
		if free < 0 {
			// Datos sobrecomprometidos: nunca exponer un libre negativo.
			c.log.Warn().
				Str("resource_id", res.ID).
				Int("total", res.TotalQuantity).
				Int("committed", sum).
				Msg("anomalía: recurso sobrecomprometido")
			free = 0
		}
		out[res.ID] = AvailabilityItem{
			ResourceID: res.ID,
			State:      res.State,
			Total:      res.TotalQuantity,
			Committed:  sum,
			Free:       free,
		}
	}
	return out
}
