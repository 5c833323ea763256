package dto

import "time"

// LineItemDTO una línea de la solicitud: recurso y cantidad.
type LineItemDTO struct {
	ResourceID string `json:"resource_id"`
	Quantity   int    `json:"quantity"`
}

// SubmitReservationRequest cuerpo de POST /api/reservations.
type SubmitReservationRequest struct {
	LaboratoryID  string        `json:"laboratory_id"`
	Items         []LineItemDTO `json:"items"`
	StartsAt      time.Time     `json:"starts_at"`
	EndsAt        time.Time     `json:"ends_at"`
	Justification string        `json:"justification"`
}

// TransitionReservationRequest cuerpo de POST /api/reservations/:id/transitions.
type TransitionReservationRequest struct {
	Event  string `json:"event"`
	Reason string `json:"reason,omitempty"`
}

// ReservationResponse representación de una solicitud.
type ReservationResponse struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	LaboratoryID  string        `json:"laboratory_id"`
	Items         []LineItemDTO `json:"items"`
	StartsAt      time.Time     `json:"starts_at"`
	EndsAt        time.Time     `json:"ends_at"`
	Justification string        `json:"justification,omitempty"`
	State         string        `json:"state"`
	Delivered     bool          `json:"delivered"`
	ApproverID    *string       `json:"approver_id,omitempty"`
	RejectReason  *string       `json:"reject_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SubmitReservationResponse desenlace de una admisión exitosa.
type SubmitReservationResponse struct {
	RequestID string `json:"request_id"`
	State     string `json:"state"`
}

// TransitionReservationResponse desenlace de una transición aplicada.
type TransitionReservationResponse struct {
	RequestID string `json:"request_id"`
	State     string `json:"state"`
}
