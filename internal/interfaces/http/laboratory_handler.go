package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labreservas-api/internal/application/admission"
	"github.com/jhoicas/labreservas-api/internal/application/dto"
	"github.com/jhoicas/labreservas-api/internal/application/usecase"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// LaboratoryHandler maneja las peticiones HTTP del catálogo de laboratorios
// (protegido).
type LaboratoryHandler struct {
	uc     *usecase.LaboratoryUseCase
	engine *admission.Engine
}

// NewLaboratoryHandler construye el handler.
func NewLaboratoryHandler(uc *usecase.LaboratoryUseCase, engine *admission.Engine) *LaboratoryHandler {
	return &LaboratoryHandler{uc: uc, engine: engine}
}

// List godoc
// @Summary      Listar laboratorios
// @Tags         laboratories
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LaboratoryResponse
// @Router       /api/laboratories [get]
func (h *LaboratoryHandler) List(c *fiber.Ctx) error {
	labs, err := h.uc.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LaboratoryResponse, 0, len(labs))
	for _, lab := range labs {
		out = append(out, toLaboratoryResponse(lab))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Consultar un laboratorio
// @Tags         laboratories
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del laboratorio"
// @Success      200  {object}  dto.LaboratoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/laboratories/{id} [get]
func (h *LaboratoryHandler) GetByID(c *fiber.Ctx) error {
	lab, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLaboratoryResponse(lab))
}

// CheckRequirements godoc
// @Summary      Verificar requisitos del laboratorio para el usuario autenticado
// @Description  Modo descubrimiento: indica qué requisitos obligatorios
//
//	faltan antes de enviar una solicitud. No sustituye la
//	compuerta de la admisión.
//
// @Tags         laboratories
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del laboratorio"
// @Success      200  {object}  dto.RequirementsCheckResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/laboratories/{id}/requirements/check [get]
func (h *LaboratoryHandler) CheckRequirements(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	result, err := h.engine.CheckRequirements(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RequirementsCheckResponse{Compliant: result.Compliant, Unmet: result.Unmet})
}

func toLaboratoryResponse(lab *entity.Laboratory) dto.LaboratoryResponse {
	schedule := make([]dto.DayPolicyDTO, 0, len(lab.Schedule.Days))
	for _, day := range lab.Schedule.Days {
		d := dto.DayPolicyDTO{Weekday: day.Weekday.String(), IsOpen: day.IsOpen}
		if day.IsOpen {
			d.OpensAt = day.OpensAt.String()
			d.ClosesAt = day.ClosesAt.String()
		}
		schedule = append(schedule, d)
	}
	requirements := make([]dto.RequirementDTO, 0, len(lab.Requirements))
	for _, req := range lab.Requirements {
		requirements = append(requirements, dto.RequirementDTO{
			ID:        req.ID,
			Kind:      req.Kind,
			Name:      req.Name,
			Mandatory: req.Mandatory,
		})
	}
	return dto.LaboratoryResponse{
		ID:           lab.ID,
		Code:         lab.Code,
		Name:         lab.Name,
		Location:     lab.Location,
		MaxOccupancy: lab.MaxOccupancy,
		Schedule:     schedule,
		Requirements: requirements,
	}
}
