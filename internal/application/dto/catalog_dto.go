package dto

import "time"

// ResourceResponse representación de un recurso del catálogo.
type ResourceResponse struct {
	ID               string `json:"id"`
	LaboratoryID     string `json:"laboratory_id"`
	Name             string `json:"name"`
	InventoryCode    string `json:"inventory_code"`
	Kind             string `json:"kind"`
	TotalQuantity    int    `json:"total_quantity"`
	StockOnHand      string `json:"stock_on_hand,omitempty"`
	ReorderThreshold string `json:"reorder_threshold,omitempty"`
	State            string `json:"state"`
}

// DayPolicyDTO entrada del horario semanal.
type DayPolicyDTO struct {
	Weekday  string `json:"weekday"`
	IsOpen   bool   `json:"is_open"`
	OpensAt  string `json:"opens_at,omitempty"`
	ClosesAt string `json:"closes_at,omitempty"`
}

// RequirementDTO requisito declarado por un laboratorio.
type RequirementDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Mandatory bool   `json:"mandatory"`
}

// LaboratoryResponse representación de un laboratorio.
type LaboratoryResponse struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Name         string           `json:"name"`
	Location     string           `json:"location"`
	MaxOccupancy int              `json:"max_occupancy"`
	Schedule     []DayPolicyDTO   `json:"schedule"`
	Requirements []RequirementDTO `json:"requirements"`
}

// MovementResponse entrada del libro mayor de inventario.
type MovementResponse struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	Direction  string    `json:"direction"`
	Quantity   string    `json:"quantity"`
	Reason     string    `json:"reason,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditRecordResponse registro de actividad para la UI de auditoría.
type AuditRecordResponse struct {
	ID          string         `json:"id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Actor       string         `json:"actor"`
	Action      string         `json:"action"`
	EntityTable string         `json:"entity_table"`
	EntityID    string         `json:"entity_id"`
	Detail      map[string]any `json:"detail,omitempty"`
}
