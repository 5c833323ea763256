package entity

import "time"

// Estados de una solicitud de reserva.
const (
	RequestStatePending   = "pending"
	RequestStateInReview  = "in_review"
	RequestStateApproved  = "approved"
	RequestStateRejected  = "rejected"
	RequestStateCancelled = "cancelled"
	RequestStateCompleted = "completed"
)

// Eventos del ciclo de vida de una solicitud.
const (
	EventRequestMoreInfo = "request_more_info"
	EventApprove         = "approve"
	EventReject          = "reject"
	EventCancel          = "cancel"
	EventMarkDelivered   = "mark_delivered"
	EventMarkReturned    = "mark_returned"
)

// TerminalState indica si un estado no admite más transiciones.
func TerminalState(state string) bool {
	switch state {
	case RequestStateRejected, RequestStateCancelled, RequestStateCompleted:
		return true
	}
	return false
}

// LineItem es una línea de la solicitud: un recurso y la cantidad pedida.
type LineItem struct {
	ResourceID string
	Quantity   int
}

// ReservationRequest (solicitud) es la petición de un usuario para usar
// cantidades de recursos de un laboratorio durante una ventana [StartsAt, EndsAt).
// El motor de admisión es el único escritor; la única mutación permitida
// después de crearla es una transición de estado.
type ReservationRequest struct {
	ID            string
	UserID        string
	LaboratoryID  string
	Items         []LineItem
	StartsAt      time.Time
	EndsAt        time.Time
	Justification string
	State         string
	Delivered     bool
	DeliveredAt   *time.Time
	ApproverID    *string
	RejectReason  *string
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Terminal indica si la solicitud está en un estado final.
func (r *ReservationRequest) Terminal() bool {
	return TerminalState(r.State)
}

// Overlaps indica si la ventana de la solicitud se solapa con [start, end).
// Semántica semiabierta: ventanas contiguas (EndsAt == start) no se solapan,
// lo que permite reservas espalda con espalda.
func (r *ReservationRequest) Overlaps(start, end time.Time) bool {
	return r.StartsAt.Before(end) && r.EndsAt.After(start)
}

// ResourceIDs devuelve los IDs de recurso de las líneas, en orden.
func (r *ReservationRequest) ResourceIDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		ids = append(ids, it.ResourceID)
	}
	return ids
}

// Commits indica si la solicitud retiene capacidad: solo pending y approved
// cuentan para el cálculo de disponibilidad.
func (r *ReservationRequest) Commits() bool {
	return r.State == RequestStatePending || r.State == RequestStateApproved
}
