package dto

// AvailabilityItemDTO disponibilidad de un recurso sobre la ventana consultada.
type AvailabilityItemDTO struct {
	ResourceID string `json:"resource_id"`
	State      string `json:"state"`
	Total      int    `json:"total"`
	Committed  int    `json:"committed"`
	Free       int    `json:"free"`
}

// RequirementsCheckResponse resultado de verificar requisitos de un
// laboratorio para el usuario autenticado.
type RequirementsCheckResponse struct {
	Compliant bool     `json:"compliant"`
	Unmet     []string `json:"unmet"`
}
