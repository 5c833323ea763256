package admission

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labreservas-api/internal/domain"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/infrastructure/memory"
	"github.com/jhoicas/labreservas-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func seedOsciloscopio(store *memory.Store, total int) {
	store.SeedResource(&entity.Resource{
		ID:            "res-osc",
		LaboratoryID:  "lab-quimica",
		Name:          "Osciloscopio",
		InventoryCode: "OSC-01",
		Kind:          entity.ResourceKindDurable,
		TotalQuantity: total,
		State:         entity.ResourceStateAvailable,
	})
}

func seedReserva(t *testing.T, store *memory.Store, id, state string, start, end time.Time, qty int) {
	t.Helper()
	err := store.Reservations().Create(context.Background(), &entity.ReservationRequest{
		ID:           id,
		UserID:       "otro",
		LaboratoryID: "lab-quimica",
		Items:        []entity.LineItem{{ResourceID: "res-osc", Quantity: qty}},
		StartsAt:     start,
		EndsAt:       end,
		State:        state,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AvailabilityCalculator
// ──────────────────────────────────────────────────────────────────────────────

func TestAvailability_SinReservas_LibreIgualTotal(t *testing.T) {
	store := memory.NewStore()
	seedOsciloscopio(store, 3)
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	items, err := calc.Availability(context.Background(), []string{"res-osc"}, lunes(10, 0), lunes(12, 0))
	require.NoError(t, err)

	item := items["res-osc"]
	assert.Equal(t, 3, item.Total)
	assert.Equal(t, 0, item.Committed)
	assert.Equal(t, 3, item.Free)
}

// Solo pending y approved comprometen capacidad.
func TestAvailability_EstadosQueComprometen(t *testing.T) {
	store := memory.NewStore()
	seedOsciloscopio(store, 10)
	seedReserva(t, store, "r-pending", entity.RequestStatePending, lunes(10, 0), lunes(12, 0), 2)
	seedReserva(t, store, "r-approved", entity.RequestStateApproved, lunes(10, 0), lunes(12, 0), 3)
	seedReserva(t, store, "r-rejected", entity.RequestStateRejected, lunes(10, 0), lunes(12, 0), 4)
	seedReserva(t, store, "r-cancelled", entity.RequestStateCancelled, lunes(10, 0), lunes(12, 0), 4)
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	items, err := calc.Availability(context.Background(), []string{"res-osc"}, lunes(10, 0), lunes(12, 0))
	require.NoError(t, err)

	assert.Equal(t, 5, items["res-osc"].Committed, "solo pending y approved retienen capacidad")
	assert.Equal(t, 5, items["res-osc"].Free)
}

// Semántica semiabierta: una reserva que termina exactamente cuando empieza
// la ventana consultada no se solapa. Permite reservas espalda con espalda.
func TestAvailability_VentanasContiguasNoSeSolapan(t *testing.T) {
	store := memory.NewStore()
	seedOsciloscopio(store, 1)
	seedReserva(t, store, "r-anterior", entity.RequestStateApproved, lunes(8, 0), lunes(10, 0), 1)
	seedReserva(t, store, "r-posterior", entity.RequestStateApproved, lunes(12, 0), lunes(14, 0), 1)
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	items, err := calc.Availability(context.Background(), []string{"res-osc"}, lunes(10, 0), lunes(12, 0))
	require.NoError(t, err)

	assert.Equal(t, 0, items["res-osc"].Committed)
	assert.Equal(t, 1, items["res-osc"].Free)
}

func TestAvailability_SolapeParcialCuenta(t *testing.T) {
	store := memory.NewStore()
	seedOsciloscopio(store, 2)
	seedReserva(t, store, "r-solapa", entity.RequestStatePending, lunes(9, 0), lunes(11, 0), 1)
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	items, err := calc.Availability(context.Background(), []string{"res-osc"}, lunes(10, 0), lunes(12, 0))
	require.NoError(t, err)

	assert.Equal(t, 1, items["res-osc"].Committed)
	assert.Equal(t, 1, items["res-osc"].Free)
}

// Datos sobrecomprometidos nunca exponen un libre negativo.
func TestAvailability_SobrecompromisoSeAcotaACero(t *testing.T) {
	store := memory.NewStore()
	seedOsciloscopio(store, 2)
	seedReserva(t, store, "r-exceso", entity.RequestStateApproved, lunes(10, 0), lunes(12, 0), 5)
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	items, err := calc.Availability(context.Background(), []string{"res-osc"}, lunes(10, 0), lunes(12, 0))
	require.NoError(t, err)

	assert.Equal(t, 5, items["res-osc"].Committed)
	assert.Equal(t, 0, items["res-osc"].Free, "el libre nunca es negativo")
}

func TestAvailability_ValidacionDeEntrada(t *testing.T) {
	store := memory.NewStore()
	seedOsciloscopio(store, 1)
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	_, err := calc.Availability(context.Background(), nil, lunes(10, 0), lunes(12, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin recursos la consulta es inválida")

	_, err = calc.Availability(context.Background(), []string{"res-osc"}, lunes(12, 0), lunes(10, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la ventana debe cumplir start < end")

	_, err = calc.Availability(context.Background(), []string{"res-osc"}, lunes(10, 0), lunes(10, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la ventana vacía es inválida")
}

func TestAvailability_RecursoInexistente_ErrorDeEvaluacion(t *testing.T) {
	store := memory.NewStore()
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	_, err := calc.Availability(context.Background(), []string{"no-existe"}, lunes(10, 0), lunes(12, 0))
	assert.ErrorIs(t, err, domain.ErrEvaluation)
}

// El estado del recurso se expone tal cual: un recurso en mantenimiento
// reporta su disponibilidad aunque no sea reservable.
func TestAvailability_RecursoEnMantenimientoExponeEstado(t *testing.T) {
	store := memory.NewStore()
	store.SeedResource(&entity.Resource{
		ID:            "res-balanza",
		LaboratoryID:  "lab-quimica",
		InventoryCode: "BAL-01",
		Kind:          entity.ResourceKindDurable,
		TotalQuantity: 1,
		StockOnHand:   decimal.Zero,
		State:         entity.ResourceStateUnderMaintenance,
	})
	calc := NewAvailabilityCalculator(store.Resources(), store.Reservations(), testLogger())

	items, err := calc.Availability(context.Background(), []string{"res-balanza"}, lunes(10, 0), lunes(12, 0))
	require.NoError(t, err)
	assert.Equal(t, entity.ResourceStateUnderMaintenance, items["res-balanza"].State)
}
