package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/labreservas-api/internal/domain"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
	"github.com/jhoicas/labreservas-api/pkg/logger"
)

// Roles con capacidad de revisión sobre solicitudes.
const (
	RoleAdmin    = "admin"
	RoleReviewer = "revisor"
)

// Tabla de las solicitudes en los registros de auditoría.
const reservationTable = "reservation_requests"

// Centinelas internos para abortar la tx sin persistir nada: una denegación
// de política y un rehúso de transición son resultados normales, no errores.
var (
	errDeniedByPolicy = errors.New("denegada por política")
	errRefused        = errors.New("transición rehusada")
)

// Engine es el motor de admisión: decide si una solicitud de reserva se
// admite, es dueño de la máquina de estados de la solicitud y emite un
// registro de auditoría por cada transición. Cada operación recibe el
// laboratorio de forma explícita; no existe selección ambiente.
type Engine struct {
	tx           TxRunner
	labs         repository.LaboratoryRepository
	resources    repository.ResourceRepository
	reservations repository.ReservationRepository
	schedule     ScheduleChecker
	compliance   *RequirementChecker
	availability *AvailabilityCalculator
	recorder     *Recorder
	log          *logger.Logger
	now          func() time.Time
}

// NewEngine construye el motor con sus colaboradores.
func NewEngine(
	tx TxRunner,
	labs repository.LaboratoryRepository,
	fulfillments repository.RequirementRepository,
	resources repository.ResourceRepository,
	reservations repository.ReservationRepository,
	recorder *Recorder,
	log *logger.Logger,
) *Engine {
	return &Engine{
		tx:           tx,
		labs:         labs,
		resources:    resources,
		reservations: reservations,
		schedule:     ScheduleChecker{},
		compliance:   NewRequirementChecker(fulfillments),
		availability: NewAvailabilityCalculator(resources, reservations, log),
		recorder:     recorder,
		log:          log,
		now:          time.Now,
	}
}

// SubmitInput es la solicitud candidata que evalúa el motor.
type SubmitInput struct {
	UserID        string
	LaboratoryID  string
	Items         []entity.LineItem
	StartsAt      time.Time
	EndsAt        time.Time
	Justification string
}

// SubmitResult es el desenlace de una admisión: la solicitud creada en
// pending, o una denegación con la lista completa de razones. La denegación
// es un resultado normal, no un error.
type SubmitResult struct {
	RequestID string
	State     string
	Denied    bool
	Reasons   []string
}

// TransitionInput describe un evento sobre una solicitud existente.
type TransitionInput struct {
	RequestID string
	Event     string
	ActorID   string
	ActorRole string
	Reason    string // obligatorio al rechazar
}

// TransitionResult es el desenlace de una transición: el nuevo estado, o un
// rehúso con razones (la solicitud queda como estaba y un humano decide).
type TransitionResult struct {
	RequestID string
	State     string
	Refused   bool
	Reasons   []string
}

// Submit evalúa las tres compuertas de admisión (horario, requisitos,
// disponibilidad) y, si todas pasan, crea la solicitud en pending dentro de
// la frontera atómica. Si alguna línea falla, la solicitud completa se
// deniega sin mutar nada: no hay admisión parcial.
func (e *Engine) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	lab, err := e.labs.GetByID(ctx, in.LaboratoryID)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, &domain.EvaluationError{Op: "submit: cargar laboratorio", Err: err}
	}
	if lab == nil {
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("laboratorio %s: %w", in.LaboratoryID, domain.ErrNotFound)
	}

	// Compuertas de horario y de requisitos. Se evalúan ambas para que la
	// denegación lleve todas las acciones correctivas, no solo la primera.
	var reasons []string
	if ok, scheduleReasons := e.schedule.Check(lab, in.StartsAt, in.EndsAt); !ok {
		reasons = append(reasons, scheduleReasons...)
	}
	compliance, err := e.compliance.Check(ctx, in.UserID, lab)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	if !compliance.Compliant {
		for _, name := range compliance.Unmet {
			reasons = append(reasons, fmt.Sprintf("requisito incumplido: %s", name))
		}
	}
	if len(reasons) > 0 {
		submissionsTotal.WithLabelValues(outcomeDenied).Inc()
		return &SubmitResult{Denied: true, Reasons: reasons}, nil
	}

	// Compuerta de inventario dentro de la frontera atómica: se bloquean las
	// filas de los recursos, se calcula el remanente y se persiste la
	// solicitud en la misma tx. Admisiones sobre recursos disjuntos avanzan
	// en paralelo.
	request := &entity.ReservationRequest{
		ID:            uuid.New().String(),
		UserID:        in.UserID,
		LaboratoryID:  in.LaboratoryID,
		Items:         in.Items,
		StartsAt:      in.StartsAt,
		EndsAt:        in.EndsAt,
		Justification: in.Justification,
		State:         entity.RequestStatePending,
		CreatedAt:     e.now(),
		UpdatedAt:     e.now(),
	}
	var denialReasons []string
	err = e.tx.Run(ctx, func(
		resourceRepo repository.ResourceRepository,
		reservationRepo repository.ReservationRepository,
		_ repository.InventoryMovementRepository,
	) error {
		shortfalls, checkErr := e.checkInventory(ctx, resourceRepo, reservationRepo, request.LaboratoryID, request.Items, request.StartsAt, request.EndsAt, "")
		if checkErr != nil {
			return checkErr
		}
		if len(shortfalls) > 0 {
			denialReasons = shortfalls
			return errDeniedByPolicy
		}
		return reservationRepo.Create(ctx, request)
	})
	if err != nil {
		if errors.Is(err, errDeniedByPolicy) {
			submissionsTotal.WithLabelValues(outcomeDenied).Inc()
			return &SubmitResult{Denied: true, Reasons: denialReasons}, nil
		}
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, asEngineError("submit", err)
	}

	e.recorder.Record(ctx, in.UserID, entity.AuditReservaCreada, reservationTable, request.ID, map[string]any{
		"laboratory_id": in.LaboratoryID,
		"starts_at":     in.StartsAt,
		"ends_at":       in.EndsAt,
		"line_items":    len(in.Items),
	})
	submissionsTotal.WithLabelValues(outcomeAdmitted).Inc()
	return &SubmitResult{RequestID: request.ID, State: request.State}, nil
}

// Transition aplica un evento del ciclo de vida sobre una solicitud dentro de
// la misma frontera atómica que las admisiones, de modo que una cancelación o
// devolución que libera capacidad es visible de inmediato para una admisión
// en espera.
func (e *Engine) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if in.RequestID == "" {
		return nil, &domain.ValidationError{Field: "request_id", Message: "requerido"}
	}

	type auditEntry struct {
		action string
		detail map[string]any
	}
	var (
		refuseReasons []string
		newState      string
		audits        []auditEntry
	)

	err := e.tx.Run(ctx, func(
		resourceRepo repository.ResourceRepository,
		reservationRepo repository.ReservationRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		req, err := reservationRepo.GetForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("solicitud %s: %w", in.RequestID, domain.ErrNotFound)
		}

		switch in.Event {
		case entity.EventRequestMoreInfo:
			if req.State != entity.RequestStatePending {
				return &domain.StateError{From: req.State, Event: in.Event}
			}
			if !reviewerCapable(in.ActorRole) {
				return fmt.Errorf("solo un revisor puede pedir más información: %w", domain.ErrForbidden)
			}
			req.State = entity.RequestStateInReview
			audits = append(audits, auditEntry{entity.AuditOtro, map[string]any{"event": in.Event}})

		case entity.EventApprove:
			if req.State != entity.RequestStatePending && req.State != entity.RequestStateInReview {
				return &domain.StateError{From: req.State, Event: in.Event}
			}
			if !reviewerCapable(in.ActorRole) {
				return fmt.Errorf("solo un revisor puede aprobar: %w", domain.ErrForbidden)
			}
			// Revalidación: entre el envío y la aprobación pudo cambiar el
			// horario, el cumplimiento o la disponibilidad. Si falla, la
			// transición se rehúsa y la solicitud queda como estaba.
			reasons, err := e.revalidate(ctx, resourceRepo, reservationRepo, req)
			if err != nil {
				return err
			}
			if len(reasons) > 0 {
				refuseReasons = reasons
				return errRefused
			}
			req.State = entity.RequestStateApproved
			req.ApproverID = &in.ActorID
			audits = append(audits, auditEntry{entity.AuditReservaAprobada, nil})

		case entity.EventReject:
			if req.State != entity.RequestStatePending && req.State != entity.RequestStateInReview {
				return &domain.StateError{From: req.State, Event: in.Event}
			}
			if !reviewerCapable(in.ActorRole) {
				return fmt.Errorf("solo un revisor puede rechazar: %w", domain.ErrForbidden)
			}
			if in.Reason == "" {
				return &domain.ValidationError{Field: "reason", Message: "el rechazo requiere una razón"}
			}
			req.State = entity.RequestStateRejected
			req.RejectReason = &in.Reason
			audits = append(audits, auditEntry{entity.AuditReservaRechazada, map[string]any{"reason": in.Reason}})

		case entity.EventCancel:
			switch req.State {
			case entity.RequestStatePending, entity.RequestStateInReview, entity.RequestStateApproved:
			default:
				return &domain.StateError{From: req.State, Event: in.Event}
			}
			if in.ActorID != req.UserID && !reviewerCapable(in.ActorRole) {
				return fmt.Errorf("solo el solicitante o un revisor pueden cancelar: %w", domain.ErrForbidden)
			}
			// Con recursos entregados y sin devolver, cancelar liberaría
			// capacidad que en realidad sigue en uso.
			if req.Delivered {
				refuseReasons = []string{"recursos sin devolver; procese la devolución primero"}
				return errRefused
			}
			now := e.now()
			req.State = entity.RequestStateCancelled
			req.CancelledAt = &now
			audits = append(audits, auditEntry{entity.AuditReservaCancelada, nil})

		case entity.EventMarkDelivered:
			if req.State != entity.RequestStateApproved || req.Delivered {
				return &domain.StateError{From: req.State, Event: in.Event}
			}
			if !reviewerCapable(in.ActorRole) {
				return fmt.Errorf("solo personal del laboratorio puede entregar: %w", domain.ErrForbidden)
			}
			resources, err := lockLineResources(ctx, resourceRepo, req)
			if err != nil {
				return err
			}
			var notAvailable []string
			for _, res := range resources {
				if !res.Reservable() {
					notAvailable = append(notAvailable, fmt.Sprintf("recurso %s no está disponible (estado %s)", res.InventoryCode, res.State))
				}
			}
			if len(notAvailable) > 0 {
				refuseReasons = notAvailable
				return errRefused
			}
			now := e.now()
			req.Delivered = true
			req.DeliveredAt = &now
			audits = append(audits, auditEntry{entity.AuditRecursoEntregado, map[string]any{"line_items": len(req.Items)}})

		case entity.EventMarkReturned:
			if req.State != entity.RequestStateApproved || !req.Delivered {
				return &domain.StateError{From: req.State, Event: in.Event}
			}
			if !reviewerCapable(in.ActorRole) {
				return fmt.Errorf("solo personal del laboratorio puede registrar la devolución: %w", domain.ErrForbidden)
			}
			if err := e.recordConsumption(ctx, resourceRepo, movementRepo, req, in.ActorID); err != nil {
				return err
			}
			req.State = entity.RequestStateCompleted
			audits = append(audits,
				auditEntry{entity.AuditRecursoDevuelto, map[string]any{"line_items": len(req.Items)}},
				auditEntry{entity.AuditReservaCompletada, nil})

		default:
			return &domain.ValidationError{Field: "event", Message: fmt.Sprintf("evento desconocido %q", in.Event)}
		}

		req.UpdatedAt = e.now()
		newState = req.State
		return reservationRepo.Update(ctx, req)
	})

	if err != nil {
		if errors.Is(err, errRefused) {
			transitionsTotal.WithLabelValues(in.Event, resultRefused).Inc()
			return &TransitionResult{RequestID: in.RequestID, Refused: true, Reasons: refuseReasons}, nil
		}
		transitionsTotal.WithLabelValues(in.Event, resultError).Inc()
		return nil, asEngineError("transition "+in.Event, err)
	}

	actor := in.ActorID
	if actor == "" {
		actor = entity.ActorSystem
	}
	for _, a := range audits {
		e.recorder.Record(ctx, actor, a.action, reservationTable, in.RequestID, a.detail)
	}
	transitionsTotal.WithLabelValues(in.Event, resultApplied).Inc()
	return &TransitionResult{RequestID: in.RequestID, State: newState}, nil
}

// GetAvailability expone el cálculo de disponibilidad (lectura pura).
func (e *Engine) GetAvailability(ctx context.Context, resourceIDs []string, start, end time.Time) (map[string]AvailabilityItem, error) {
	return e.availability.Availability(ctx, resourceIDs, start, end)
}

// CheckRequirements expone la verificación de requisitos (lectura pura).
func (e *Engine) CheckRequirements(ctx context.Context, userID, laboratoryID string) (*ComplianceResult, error) {
	lab, err := e.labs.GetByID(ctx, laboratoryID)
	if err != nil {
		return nil, &domain.EvaluationError{Op: "requisitos: cargar laboratorio", Err: err}
	}
	if lab == nil {
		return nil, fmt.Errorf("laboratorio %s: %w", laboratoryID, domain.ErrNotFound)
	}
	return e.compliance.Check(ctx, userID, lab)
}

// revalidate repite las tres compuertas al aprobar, descontando del
// comprometido la propia solicitud (ya retiene capacidad desde pending).
func (e *Engine) revalidate(
	ctx context.Context,
	resourceRepo repository.ResourceRepository,
	reservationRepo repository.ReservationRepository,
	req *entity.ReservationRequest,
) ([]string, error) {
	lab, err := e.labs.GetByID(ctx, req.LaboratoryID)
	if err != nil {
		return nil, &domain.EvaluationError{Op: "approve: cargar laboratorio", Err: err}
	}
	if lab == nil {
		return nil, fmt.Errorf("laboratorio %s: %w", req.LaboratoryID, domain.ErrNotFound)
	}
	var reasons []string
	if ok, scheduleReasons := e.schedule.Check(lab, req.StartsAt, req.EndsAt); !ok {
		reasons = append(reasons, scheduleReasons...)
	}
	compliance, err := e.compliance.Check(ctx, req.UserID, lab)
	if err != nil {
		return nil, err
	}
	for _, name := range compliance.Unmet {
		reasons = append(reasons, fmt.Sprintf("requisito incumplido: %s", name))
	}
	shortfalls, err := e.checkInventory(ctx, resourceRepo, reservationRepo, req.LaboratoryID, req.Items, req.StartsAt, req.EndsAt, req.ID)
	if err != nil {
		return nil, err
	}
	return append(reasons, shortfalls...), nil
}

// checkInventory bloquea los recursos de las líneas y verifica pertenencia
// al laboratorio de la solicitud, estado operativo y remanente suficiente
// para cada una. Devuelve las razones de déficit; si hay al menos una, la
// admisión completa debe denegarse.
func (e *Engine) checkInventory(
	ctx context.Context,
	resourceRepo repository.ResourceRepository,
	reservationRepo repository.ReservationRepository,
	laboratoryID string,
	items []entity.LineItem,
	start, end time.Time,
	excludeRequestID string,
) ([]string, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ResourceID)
	}
	resources, err := resourceRepo.GetManyForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Resource, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
	}
	committed, err := reservationRepo.SumCommitted(ctx, ids, start, end, excludeRequestID)
	if err != nil {
		return nil, err
	}
	availability := e.availability.compute(resources, committed)

	var reasons []string
	for _, it := range items {
		res, ok := byID[it.ResourceID]
		if !ok {
			return nil, fmt.Errorf("recurso %s: %w", it.ResourceID, domain.ErrNotFound)
		}
		// Las compuertas de horario y requisitos corren contra el laboratorio
		// de la solicitud: un recurso de otro laboratorio las eludiría.
		if res.LaboratoryID != laboratoryID {
			reasons = append(reasons, fmt.Sprintf("recurso %s pertenece a otro laboratorio", res.InventoryCode))
			continue
		}
		if !res.Reservable() {
			reasons = append(reasons, fmt.Sprintf("recurso %s no está disponible (estado %s)", res.InventoryCode, res.State))
			continue
		}
		if avail := availability[it.ResourceID]; avail.Free < it.Quantity {
			reasons = append(reasons, fmt.Sprintf("%s: solo %d disponibles, se solicitaron %d", res.InventoryCode, avail.Free, it.Quantity))
		}
	}
	return reasons, nil
}

// recordConsumption registra en el libro mayor la salida de los consumibles
// devueltos como usados y descuenta su stock disponible. Los durables
// regresan al estante sin movimiento: su capacidad la libera la transición.
func (e *Engine) recordConsumption(
	ctx context.Context,
	resourceRepo repository.ResourceRepository,
	movementRepo repository.InventoryMovementRepository,
	req *entity.ReservationRequest,
	actorID string,
) error {
	resources, err := lockLineResources(ctx, resourceRepo, req)
	if err != nil {
		return err
	}
	byID := make(map[string]*entity.Resource, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
	}
	now := e.now()
	for _, it := range req.Items {
		res := byID[it.ResourceID]
		if res == nil || !res.IsConsumable() {
			continue
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		mov := &entity.InventoryMovement{
			ID:         uuid.New().String(),
			ResourceID: res.ID,
			Direction:  entity.MovementOut,
			Quantity:   qty,
			Reason:     "consumo en reserva " + req.ID,
			Actor:      actorID,
			OccurredAt: now,
			CreatedAt:  now,
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
		remaining := res.StockOnHand.Sub(qty)
		if remaining.IsNegative() {
			e.log.Warn().
				Str("resource_id", res.ID).
				Str("stock", res.StockOnHand.String()).
				Str("consumed", qty.String()).
				Msg("anomalía: consumo mayor que el stock registrado")
			remaining = decimal.Zero
		}
		if err := resourceRepo.UpdateStock(ctx, res.ID, remaining); err != nil {
			return err
		}
	}
	return nil
}

// lockLineResources bloquea las filas de los recursos de la solicitud.
func lockLineResources(ctx context.Context, resourceRepo repository.ResourceRepository, req *entity.ReservationRequest) ([]*entity.Resource, error) {
	resources, err := resourceRepo.GetManyForUpdate(ctx, req.ResourceIDs())
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// validateSubmit verifica los invariantes estructurales de la candidata.
func validateSubmit(in SubmitInput) error {
	if in.UserID == "" {
		return &domain.ValidationError{Field: "user_id", Message: "requerido"}
	}
	if in.LaboratoryID == "" {
		return &domain.ValidationError{Field: "laboratory_id", Message: "requerido"}
	}
	if len(in.Items) == 0 {
		return &domain.ValidationError{Field: "items", Message: "se requiere al menos una línea"}
	}
	if !in.EndsAt.After(in.StartsAt) {
		return &domain.ValidationError{Field: "window", Message: "la ventana debe cumplir end > start"}
	}
	seen := make(map[string]bool, len(in.Items))
	for i, it := range in.Items {
		if it.ResourceID == "" {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].resource_id", i), Message: "requerido"}
		}
		if it.Quantity <= 0 {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "debe ser mayor que cero"}
		}
		if seen[it.ResourceID] {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].resource_id", i), Message: "recurso repetido en la solicitud"}
		}
		seen[it.ResourceID] = true
	}
	return nil
}

// reviewerCapable indica si el rol tiene capacidad de revisión.
func reviewerCapable(role string) bool {
	return role == RoleAdmin || role == RoleReviewer
}

// asEngineError deja pasar los errores tipados del dominio y envuelve
// cualquier falla de E/S restante como error de evaluación, para que el
// llamador distinga "no evaluada" de "denegada".
func asEngineError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrIllegalState),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrEvaluation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden):
		return err
	default:
		return &domain.EvaluationError{Op: op, Err: err}
	}
}
