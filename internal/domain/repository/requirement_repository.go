package repository

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// RequirementRepository define el puerto de lectura del registro de
// cumplimientos: qué requisitos ha satisfecho cada usuario. La emisión de
// certificados es responsabilidad de un sistema externo.
type RequirementRepository interface {
	// GetUserFulfillment devuelve el registro de cumplimiento del usuario para
	// un requisito, o nil si no existe.
	GetUserFulfillment(ctx context.Context, userID, requirementID string) (*entity.Fulfillment, error)
}
