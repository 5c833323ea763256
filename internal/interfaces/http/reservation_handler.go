package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labreservas-api/internal/application/admission"
	"github.com/jhoicas/labreservas-api/internal/application/dto"
	"github.com/jhoicas/labreservas-api/internal/application/usecase"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// ReservationHandler maneja las peticiones HTTP de solicitudes de reserva
// (protegido). Las mutaciones pasan por el motor de admisión; las lecturas
// por el caso de uso de consulta.
type ReservationHandler struct {
	engine      *admission.Engine
	queries     *usecase.ReservationQueryUseCase
	evalTimeout time.Duration
}

// NewReservationHandler construye el handler.
func NewReservationHandler(engine *admission.Engine, queries *usecase.ReservationQueryUseCase, evalTimeout time.Duration) *ReservationHandler {
	if evalTimeout <= 0 {
		evalTimeout = 10 * time.Second
	}
	return &ReservationHandler{engine: engine, queries: queries, evalTimeout: evalTimeout}
}

// Submit godoc
// @Summary      Enviar solicitud de reserva
// @Description  Evalúa horario, requisitos y disponibilidad. Si todas las
//
//	compuertas pasan, la solicitud se crea en pending; si no, se
//	deniega completa con la lista de razones (HTTP 422).
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitReservationRequest  true  "laboratory_id, items, starts_at, ends_at, justification"
// @Success      201  {object}  dto.SubmitReservationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.DenialResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Submit(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]entity.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, entity.LineItem{ResourceID: it.ResourceID, Quantity: it.Quantity})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.evalTimeout)
	defer cancel()
	result, err := h.engine.Submit(ctx, admission.SubmitInput{
		UserID:        userID,
		LaboratoryID:  in.LaboratoryID,
		Items:         items,
		StartsAt:      in.StartsAt,
		EndsAt:        in.EndsAt,
		Justification: in.Justification,
	})
	if err != nil {
		return respondError(c, err)
	}
	if result.Denied {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DenialResponse{Denied: true, Reasons: result.Reasons})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitReservationResponse{
		RequestID: result.RequestID,
		State:     result.State,
	})
}

// Transition godoc
// @Summary      Aplicar un evento del ciclo de vida a una solicitud
// @Description  Eventos: request_more_info, approve, reject, cancel,
//
//	mark_delivered, mark_returned. Un rehúso (HTTP 422) deja la
//	solicitud como estaba.
//
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.TransitionReservationRequest  true  "event y, para reject, reason"
// @Success      200  {object}  dto.TransitionReservationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.DenialResponse
// @Router       /api/reservations/{id}/transitions [post]
func (h *ReservationHandler) Transition(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransitionReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.evalTimeout)
	defer cancel()
	result, err := h.engine.Transition(ctx, admission.TransitionInput{
		RequestID: c.Params("id"),
		Event:     in.Event,
		ActorID:   userID,
		ActorRole: GetRole(c),
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	if result.Refused {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.DenialResponse{Denied: true, Reasons: result.Reasons})
	}
	return c.JSON(dto.TransitionReservationResponse{
		RequestID: result.RequestID,
		State:     result.State,
	})
}

// GetByID godoc
// @Summary      Consultar una solicitud
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.queries.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReservationResponse(req))
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        laboratory_id  query  string  false  "Filtrar por laboratorio"
// @Param        user_id        query  string  false  "Filtrar por solicitante"
// @Param        state          query  string  false  "Filtrar por estado"
// @Param        limit          query  int     false  "Máximo de filas (default 50)"
// @Param        offset         query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.ReservationResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	list, err := h.queries.List(c.Context(), repository.ReservationFilter{
		LaboratoryID: c.Query("laboratory_id"),
		UserID:       c.Query("user_id"),
		State:        c.Query("state"),
		Limit:        c.QueryInt("limit"),
		Offset:       c.QueryInt("offset"),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReservationResponse, 0, len(list))
	for _, req := range list {
		out = append(out, toReservationResponse(req))
	}
	return c.JSON(out)
}

func toReservationResponse(req *entity.ReservationRequest) dto.ReservationResponse {
	items := make([]dto.LineItemDTO, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, dto.LineItemDTO{ResourceID: it.ResourceID, Quantity: it.Quantity})
	}
	return dto.ReservationResponse{
		ID:            req.ID,
		UserID:        req.UserID,
		LaboratoryID:  req.LaboratoryID,
		Items:         items,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		Justification: req.Justification,
		State:         req.State,
		Delivered:     req.Delivered,
		ApproverID:    req.ApproverID,
		RejectReason:  req.RejectReason,
		CreatedAt:     req.CreatedAt,
	}
}
