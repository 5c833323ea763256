package entity

import "time"

// Acciones auditables. Enumeración cerrada producida por el componente que
// ejecuta la acción; no hay inferencia inversa desde texto libre.
const (
	AuditReservaCreada     = "reserva_creada"
	AuditReservaAprobada   = "reserva_aprobada"
	AuditReservaRechazada  = "reserva_rechazada"
	AuditReservaCancelada  = "reserva_cancelada"
	AuditRecursoEntregado  = "recurso_entregado"
	AuditRecursoDevuelto   = "recurso_devuelto"
	AuditReservaCompletada = "reserva_completada"
	AuditOtro              = "otro"
)

// ActorSystem identifica acciones iniciadas por el propio sistema.
const ActorSystem = "system"

// AuditRecord es un registro inmutable de actividad: una entrada por
// transición de estado o cambio de inventario. Solo anexable.
type AuditRecord struct {
	ID          string
	OccurredAt  time.Time
	Actor       string
	Action      string
	EntityTable string
	EntityID    string
	Detail      map[string]any
}
