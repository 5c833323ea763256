package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	store.SeedResource(&entity.Resource{
		ID:            "res-1",
		LaboratoryID:  "lab-1",
		InventoryCode: "RES-01",
		Kind:          entity.ResourceKindConsumable,
		TotalQuantity: 5,
		StockOnHand:   decimal.NewFromInt(10),
		State:         entity.ResourceStateAvailable,
	})
	return store
}

// ──────────────────────────────────────────────────────────────────────────────
// Frontera transaccional
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_ConfirmaAlTerminarSinError(t *testing.T) {
	store := seedStore(t)

	err := store.Run(context.Background(), func(
		resources repository.ResourceRepository,
		reservations repository.ReservationRepository,
		_ repository.InventoryMovementRepository,
	) error {
		if err := resources.UpdateStock(context.Background(), "res-1", decimal.NewFromInt(7)); err != nil {
			return err
		}
		return reservations.Create(context.Background(), &entity.ReservationRequest{
			ID:           "req-1",
			UserID:       "ana",
			LaboratoryID: "lab-1",
			Items:        []entity.LineItem{{ResourceID: "res-1", Quantity: 1}},
			State:        entity.RequestStatePending,
		})
	})
	require.NoError(t, err)

	res, err := store.Resources().GetByID(context.Background(), "res-1")
	require.NoError(t, err)
	assert.True(t, res.StockOnHand.Equal(decimal.NewFromInt(7)))

	req, err := store.Reservations().GetByID(context.Background(), "req-1")
	require.NoError(t, err)
	assert.NotNil(t, req)
}

// Si el callback falla, todo lo escrito dentro de la transacción se revierte.
func TestRun_RevierteAlFallar(t *testing.T) {
	store := seedStore(t)
	boom := errors.New("compuerta denegada")

	err := store.Run(context.Background(), func(
		resources repository.ResourceRepository,
		reservations repository.ReservationRepository,
		movements repository.InventoryMovementRepository,
	) error {
		_ = resources.UpdateStock(context.Background(), "res-1", decimal.NewFromInt(1))
		_ = reservations.Create(context.Background(), &entity.ReservationRequest{ID: "req-x", State: entity.RequestStatePending})
		_ = movements.Create(context.Background(), &entity.InventoryMovement{ID: "mov-x", ResourceID: "res-1", Direction: entity.MovementOut, Quantity: decimal.NewFromInt(1)})
		return boom
	})
	require.ErrorIs(t, err, boom)

	res, err := store.Resources().GetByID(context.Background(), "res-1")
	require.NoError(t, err)
	assert.True(t, res.StockOnHand.Equal(decimal.NewFromInt(10)), "el stock vuelve al valor previo")

	req, err := store.Reservations().GetByID(context.Background(), "req-x")
	require.NoError(t, err)
	assert.Nil(t, req, "la solicitud no queda persistida")

	movs, err := store.Movements().ListByResource(context.Background(), "res-1", nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "el movimiento no queda persistido")
}

func TestRun_ContextoCancelado(t *testing.T) {
	store := seedStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Run(ctx, func(
		_ repository.ResourceRepository,
		_ repository.ReservationRepository,
		_ repository.InventoryMovementRepository,
	) error {
		t.Fatal("el callback no debe ejecutarse con contexto cancelado")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vistas: copias defensivas y filtros
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_DevuelveCopias(t *testing.T) {
	store := seedStore(t)

	res, err := store.Resources().GetByID(context.Background(), "res-1")
	require.NoError(t, err)
	res.StockOnHand = decimal.NewFromInt(999)

	again, err := store.Resources().GetByID(context.Background(), "res-1")
	require.NoError(t, err)
	assert.True(t, again.StockOnHand.Equal(decimal.NewFromInt(10)), "mutar la copia no toca el almacén")
}

func TestStore_SumCommittedExcluyeSolicitud(t *testing.T) {
	store := seedStore(t)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	require.NoError(t, store.Reservations().Create(context.Background(), &entity.ReservationRequest{
		ID:           "req-1",
		LaboratoryID: "lab-1",
		Items:        []entity.LineItem{{ResourceID: "res-1", Quantity: 3}},
		StartsAt:     start,
		EndsAt:       end,
		State:        entity.RequestStatePending,
	}))

	sums, err := store.Reservations().SumCommitted(context.Background(), []string{"res-1"}, start, end, "")
	require.NoError(t, err)
	assert.Equal(t, 3, sums["res-1"])

	sums, err = store.Reservations().SumCommitted(context.Background(), []string{"res-1"}, start, end, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 0, sums["res-1"], "la propia solicitud se descuenta al revalidar")
}

func TestStore_ListFiltraPorEstadoYUsuario(t *testing.T) {
	store := seedStore(t)
	mk := func(id, user, state string, created time.Time) {
		require.NoError(t, store.Reservations().Create(context.Background(), &entity.ReservationRequest{
			ID: id, UserID: user, LaboratoryID: "lab-1", State: state, CreatedAt: created,
		}))
	}
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	mk("r1", "ana", entity.RequestStatePending, base)
	mk("r2", "ana", entity.RequestStateApproved, base.Add(time.Minute))
	mk("r3", "bob", entity.RequestStatePending, base.Add(2*time.Minute))

	list, err := store.Reservations().List(context.Background(), repository.ReservationFilter{UserID: "ana", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = store.Reservations().List(context.Background(), repository.ReservationFilter{State: entity.RequestStatePending, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r3", list[0].ID, "más recientes primero")
}

func TestStore_ListBelowReorder(t *testing.T) {
	store := seedStore(t)
	store.SeedResource(&entity.Resource{
		ID:               "res-bajo",
		LaboratoryID:     "lab-1",
		InventoryCode:    "BAJ-01",
		Kind:             entity.ResourceKindConsumable,
		StockOnHand:      decimal.NewFromInt(1),
		ReorderThreshold: decimal.NewFromInt(5),
		State:            entity.ResourceStateAvailable,
	})

	list, err := store.Resources().ListBelowReorder(context.Background(), "lab-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "res-bajo", list[0].ID)
}
