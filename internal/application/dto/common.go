package dto

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DenialResponse respuesta de una admisión o transición denegada por
// política: lleva la lista completa de razones para que la UI muestre todas
// las acciones correctivas a la vez.
type DenialResponse struct {
	Denied  bool     `json:"denied"`
	Reasons []string `json:"reasons"`
}
