package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// labAbiertoLunesAViernes construye un laboratorio abierto de lunes a viernes
// de 08:00 a 20:00, cerrado el fin de semana.
func labAbiertoLunesAViernes(t *testing.T) *entity.Laboratory {
	t.Helper()
	var days [7]entity.DayPolicy
	for i := 0; i < 7; i++ {
		days[i] = entity.DayPolicy{Weekday: time.Weekday(i)}
		if i >= 1 && i <= 5 {
			days[i].IsOpen = true
			days[i].OpensAt = 8 * 60
			days[i].ClosesAt = 20 * 60
		}
	}
	lab := &entity.Laboratory{
		ID:       "lab-quimica",
		Code:     "LAB-QUI",
		Name:     "Laboratorio de Química",
		Schedule: entity.SchedulePolicy{Version: 1, Days: days},
	}
	require.NoError(t, lab.Schedule.Validate())
	return lab
}

// lunes devuelve un instante del lunes 2026-03-02 a la hora indicada (UTC).
func lunes(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ScheduleChecker
// ──────────────────────────────────────────────────────────────────────────────

func TestSchedule_VentanaDentroDelHorario(t *testing.T) {
	lab := labAbiertoLunesAViernes(t)
	ok, reasons := ScheduleChecker{}.Check(lab, lunes(10, 0), lunes(12, 0))

	assert.True(t, ok)
	assert.Empty(t, reasons)
}

// La ventana puede tocar exactamente la apertura y el cierre.
func TestSchedule_VentanaExactaAlHorario(t *testing.T) {
	lab := labAbiertoLunesAViernes(t)
	ok, reasons := ScheduleChecker{}.Check(lab, lunes(8, 0), lunes(20, 0))

	assert.True(t, ok)
	assert.Empty(t, reasons)
}

func TestSchedule_FueraDelHorario(t *testing.T) {
	lab := labAbiertoLunesAViernes(t)
	// Termina a las 21:00, una hora después del cierre.
	ok, reasons := ScheduleChecker{}.Check(lab, lunes(18, 0), lunes(21, 0))

	assert.False(t, ok)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "fuera del horario de atención")
	assert.Contains(t, reasons[0], "lunes")
}

func TestSchedule_DiaCerrado(t *testing.T) {
	lab := labAbiertoLunesAViernes(t)
	// Domingo 2026-03-01: cerrado.
	domingo := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ok, reasons := ScheduleChecker{}.Check(lab, domingo, domingo.Add(2*time.Hour))

	assert.False(t, ok)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "cerrado el domingo")
	assert.Contains(t, reasons[0], lab.Code)
}

// Las reservas que cruzan medianoche se rechazan con una razón dedicada:
// el horario se define por día calendario.
func TestSchedule_CruceDeMedianoche(t *testing.T) {
	lab := labAbiertoLunesAViernes(t)
	ok, reasons := ScheduleChecker{}.Check(lab, lunes(23, 0), lunes(23, 0).Add(2*time.Hour))

	assert.False(t, ok)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "medianoche")
}

func TestSchedule_InicioAntesDeApertura(t *testing.T) {
	lab := labAbiertoLunesAViernes(t)
	ok, reasons := ScheduleChecker{}.Check(lab, lunes(7, 0), lunes(9, 0))

	assert.False(t, ok)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "fuera del horario de atención")
}
