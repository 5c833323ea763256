package admission

import (
	"context"
	"time"

	"github.com/jhoicas/labreservas-api/internal/domain"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// ComplianceResult es el resultado de verificar los requisitos de un
// laboratorio para un usuario. Unmet sigue el orden declarado por el
// laboratorio para que la UI y los tests sean deterministas.
type ComplianceResult struct {
	Compliant bool
	Unmet     []string
}

// RequirementChecker verifica que un usuario cumpla todos los requisitos
// obligatorios de un laboratorio. Un requisito sin registro de cumplimiento,
// o con registro vencido a la fecha, cuenta como incumplido.
type RequirementChecker struct {
	fulfillments repository.RequirementRepository
	now          func() time.Time
}

// NewRequirementChecker construye el verificador.
func NewRequirementChecker(fulfillments repository.RequirementRepository) *RequirementChecker {
	return &RequirementChecker{fulfillments: fulfillments, now: time.Now}
}

// Check devuelve el resultado de cumplimiento. Los fallos de E/S del
// registro se devuelven como domain.EvaluationError: el usuario no fue
// evaluado y el llamador puede reintentar.
func (c *RequirementChecker) Check(ctx context.Context, userID string, lab *entity.Laboratory) (*ComplianceResult, error) {
	now := c.now()
	var unmet []string
	for _, req := range lab.MandatoryRequirements() {
		f, err := c.fulfillments.GetUserFulfillment(ctx, userID, req.ID)
		if err != nil {
			return nil, &domain.EvaluationError{Op: "requisitos: consultar cumplimiento", Err: err}
		}
		if f == nil || !f.Valid(now) {
			unmet = append(unmet, req.Name)
		}
	}
	return &ComplianceResult{Compliant: len(unmet) == 0, Unmet: unmet}, nil
}
