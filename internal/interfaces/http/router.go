package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labreservas-api/internal/application/admission"
	"github.com/jhoicas/labreservas-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine        *admission.Engine
	LaboratoryUC  *usecase.LaboratoryUseCase
	ResourceUC    *usecase.ResourceUseCase
	MovementUC    *usecase.MovementUseCase
	ReservationUC *usecase.ReservationQueryUseCase
	AuditUC       *usecase.AuditUseCase
	JWTSecret     string
	EvalTimeout   time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Reservations (protegido)
	reservations := protected.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Engine, deps.ReservationUC, deps.EvalTimeout)
	reservations.Post("/", reservationHandler.Submit)
	reservations.Get("/", reservationHandler.List)
	reservations.Get("/:id", reservationHandler.GetByID)
	reservations.Post("/:id/transitions", reservationHandler.Transition)

	// Availability (protegido, lectura pura)
	availabilityHandler := NewAvailabilityHandler(deps.Engine)
	protected.Get("/availability", availabilityHandler.GetAvailability)

	// Laboratories (protegido)
	labs := protected.Group("/laboratories")
	laboratoryHandler := NewLaboratoryHandler(deps.LaboratoryUC, deps.Engine)
	labs.Get("/", laboratoryHandler.List)
	labs.Get("/:id", laboratoryHandler.GetByID)
	labs.Get("/:id/requirements/check", laboratoryHandler.CheckRequirements)

	// Resources, movimientos y auditoría (protegido)
	resourceHandler := NewResourceHandler(deps.ResourceUC, deps.MovementUC, deps.AuditUC)
	resources := protected.Group("/resources")
	resources.Get("/", resourceHandler.List)
	resources.Get("/below-reorder", resourceHandler.ListBelowReorder)
	resources.Get("/:id/movements", resourceHandler.ListMovements)

	// Auditoría restringida a personal con capacidad de revisión
	protected.Get("/audit",
		RequireRole(admission.RoleAdmin, admission.RoleReviewer),
		resourceHandler.ListAudit)
}
