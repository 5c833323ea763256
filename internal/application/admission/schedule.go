package admission

import (
	"fmt"
	"time"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// weekdayES nombres de los días para los mensajes de denegación.
var weekdayES = [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// ScheduleChecker verifica que una ventana de reserva quede totalmente
// contenida en una ventana de atención del laboratorio. El horario es por
// día calendario, así que las reservas que cruzan medianoche se rechazan
// con una razón dedicada.
type ScheduleChecker struct{}

// Check devuelve (ok, razones). Sin efectos; no consulta almacenes.
func (ScheduleChecker) Check(lab *entity.Laboratory, start, end time.Time) (bool, []string) {
	var reasons []string

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		reasons = append(reasons, "la reserva debe iniciar y terminar el mismo día; no se admiten reservas que crucen medianoche")
		return false, reasons
	}

	day := lab.Schedule.Day(start.Weekday())
	if !day.IsOpen {
		reasons = append(reasons, fmt.Sprintf("el laboratorio %s está cerrado el %s", lab.Code, weekdayES[int(start.Weekday())]))
		return false, reasons
	}

	from := entity.AtTime(start)
	to := entity.AtTime(end)
	if from < day.OpensAt || to > day.ClosesAt {
		reasons = append(reasons, fmt.Sprintf(
			"fuera del horario de atención: solicitado %s–%s, horario del %s %s–%s",
			from, to, weekdayES[int(start.Weekday())], day.OpensAt, day.ClosesAt))
		return false, reasons
	}
	return true, nil
}
