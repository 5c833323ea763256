package entity

import (
	"fmt"
	"time"
)

// MinuteOfDay representa una hora del día como minutos desde medianoche.
// Evita los blobs JSON sueltos del esquema original: cada entrada del
// horario es una estructura explícita validada en la frontera del store.
type MinuteOfDay int

// ParseMinuteOfDay convierte "HH:MM" a minutos desde medianoche.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("hora inválida %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("hora fuera de rango: %q", s)
	}
	return MinuteOfDay(h*60 + m), nil
}

// String devuelve la hora en formato HH:MM.
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// AtTime devuelve los minutos desde medianoche de un instante (hora local del instante).
func AtTime(t time.Time) MinuteOfDay {
	return MinuteOfDay(t.Hour()*60 + t.Minute())
}

// DayPolicy es la entrada del horario semanal para un día concreto.
// Si IsOpen es false, OpensAt y ClosesAt se ignoran.
type DayPolicy struct {
	Weekday  time.Weekday
	IsOpen   bool
	OpensAt  MinuteOfDay
	ClosesAt MinuteOfDay
}

// SchedulePolicy es el horario semanal de un laboratorio: una entrada por día.
// Version permite evolucionar el esquema sin romper datos persistidos.
type SchedulePolicy struct {
	Version int
	Days    [7]DayPolicy
}

// Validate verifica la coherencia del horario (frontera del store, no del motor):
// los días abiertos deben tener apertura estrictamente anterior al cierre.
func (p SchedulePolicy) Validate() error {
	for i, d := range p.Days {
		if d.Weekday != time.Weekday(i) {
			return fmt.Errorf("horario: posición %d no corresponde al día %v", i, d.Weekday)
		}
		if d.IsOpen && d.OpensAt >= d.ClosesAt {
			return fmt.Errorf("horario: %v abre %s y cierra %s", d.Weekday, d.OpensAt, d.ClosesAt)
		}
	}
	return nil
}

// Day devuelve la entrada del horario para un día de la semana.
func (p SchedulePolicy) Day(w time.Weekday) DayPolicy {
	return p.Days[int(w)]
}

// Tipos de requisito previo para reservar en un laboratorio.
const (
	RequirementKindCourse        = "course"
	RequirementKindCertification = "certification"
	RequirementKindInduction     = "induction"
)

// Requirement es un prerrequisito declarado por un laboratorio
// (curso, certificación o inducción). El orden de la lista en el
// laboratorio es el orden de reporte de incumplimientos.
type Requirement struct {
	ID        string
	Kind      string
	Name      string
	Mandatory bool
}

// Fulfillment es el registro de cumplimiento de un requisito por un usuario.
// Sin registro, o con registro vencido, el requisito cuenta como incumplido.
type Fulfillment struct {
	UserID        string
	RequirementID string
	GrantedAt     time.Time
	ExpiresAt     *time.Time
}

// Valid indica si el cumplimiento sigue vigente en el instante dado.
func (f *Fulfillment) Valid(now time.Time) bool {
	return f.ExpiresAt == nil || f.ExpiresAt.After(now)
}

// Laboratory representa un laboratorio con su horario semanal y sus
// requisitos. El motor de admisión lo trata como configuración de solo lectura.
type Laboratory struct {
	ID           string
	Code         string
	Name         string
	Location     string
	MaxOccupancy int
	Schedule     SchedulePolicy
	Requirements []Requirement
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MandatoryRequirements devuelve los requisitos obligatorios en el orden declarado.
func (l *Laboratory) MandatoryRequirements() []Requirement {
	var out []Requirement
	for _, r := range l.Requirements {
		if r.Mandatory {
			out = append(out, r)
		}
	}
	return out
}
