package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

var _ repository.RequirementRepository = (*RequirementRepo)(nil)

// RequirementRepo lectura del registro de cumplimientos sobre PostgreSQL.
// Los certificados los emite un sistema externo; aquí solo se consultan.
type RequirementRepo struct {
	q Querier
}

// NewRequirementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequirementRepository(q Querier) *RequirementRepo {
	return &RequirementRepo{q: q}
}

// GetUserFulfillment devuelve el cumplimiento del usuario para un requisito,
// o nil si no existe registro.
func (r *RequirementRepo) GetUserFulfillment(ctx context.Context, userID, requirementID string) (*entity.Fulfillment, error) {
	query := `
		SELECT user_id, requirement_id, granted_at, expires_at
		FROM user_fulfillments
		WHERE user_id = $1 AND requirement_id = $2`
	var f entity.Fulfillment
	err := r.q.QueryRow(ctx, query, userID, requirementID).Scan(
		&f.UserID, &f.RequirementID, &f.GrantedAt, &f.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fulfillment: %w", err)
	}
	return &f, nil
}
