package usecase

import (
	"context"

	"github.com/jhoicas/labreservas-api/internal/domain"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// ReservationQueryUseCase lecturas de solicitudes para el tablero: las
// mutaciones pasan siempre por el motor de admisión.
type ReservationQueryUseCase struct {
	reservations repository.ReservationRepository
}

// NewReservationQueryUseCase construye el caso de uso.
func NewReservationQueryUseCase(reservations repository.ReservationRepository) *ReservationQueryUseCase {
	return &ReservationQueryUseCase{reservations: reservations}
}

// GetByID devuelve una solicitud por ID.
func (uc *ReservationQueryUseCase) GetByID(ctx context.Context, id string) (*entity.ReservationRequest, error) {
	req, err := uc.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// List lista solicitudes filtradas por laboratorio, usuario o estado.
func (uc *ReservationQueryUseCase) List(ctx context.Context, filter repository.ReservationFilter) ([]*entity.ReservationRequest, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return uc.reservations.List(ctx, filter)
}
