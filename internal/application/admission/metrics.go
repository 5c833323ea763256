package admission

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultados etiquetados en las métricas de admisión.
const (
	outcomeAdmitted = "admitted"
	outcomeDenied   = "denied"
	outcomeError    = "error"

	resultApplied = "applied"
	resultRefused = "refused"
	resultError   = "error"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labreservas",
		Subsystem: "admission",
		Name:      "submissions_total",
		Help:      "Solicitudes de reserva evaluadas, por resultado.",
	}, []string{"outcome"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labreservas",
		Subsystem: "admission",
		Name:      "transitions_total",
		Help:      "Transiciones de estado solicitadas, por evento y resultado.",
	}, []string{"event", "result"})
)
