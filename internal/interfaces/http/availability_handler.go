package http

import (
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labreservas-api/internal/application/admission"
	"github.com/jhoicas/labreservas-api/internal/application/dto"
)

// AvailabilityHandler expone la consulta de disponibilidad (lectura pura).
type AvailabilityHandler struct {
	engine *admission.Engine
}

// NewAvailabilityHandler construye el handler.
func NewAvailabilityHandler(engine *admission.Engine) *AvailabilityHandler {
	return &AvailabilityHandler{engine: engine}
}

// GetAvailability godoc
// @Summary      Disponibilidad de recursos sobre una ventana
// @Description  Devuelve {total, comprometido, libre} por recurso para la
//
//	ventana semiabierta [start, end). Las reservas contiguas no se
//	solapan. Instantánea informativa: solo la admisión garantiza.
//
// @Tags         availability
// @Security     Bearer
// @Produce      json
// @Param        resource_ids  query  string  true  "IDs separados por coma"
// @Param        start         query  string  true  "Inicio RFC3339"
// @Param        end           query  string  true  "Fin RFC3339 (exclusivo)"
// @Success      200  {array}   dto.AvailabilityItemDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/availability [get]
func (h *AvailabilityHandler) GetAvailability(c *fiber.Ctx) error {
	var ids []string
	for _, id := range strings.Split(c.Query("resource_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "start debe ser RFC3339"})
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "end debe ser RFC3339"})
	}

	items, err := h.engine.GetAvailability(c.Context(), ids, start, end)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AvailabilityItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.AvailabilityItemDTO{
			ResourceID: item.ResourceID,
			State:      item.State,
			Total:      item.Total,
			Committed:  item.Committed,
			Free:       item.Free,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceID < out[j].ResourceID })
	return c.JSON(out)
}
