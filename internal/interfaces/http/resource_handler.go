package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/labreservas-api/internal/application/dto"
	"github.com/jhoicas/labreservas-api/internal/application/usecase"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
)

// ResourceHandler maneja las peticiones HTTP del catálogo de recursos, el
// libro mayor de inventario y el registro de auditoría (protegido).
type ResourceHandler struct {
	resources *usecase.ResourceUseCase
	movements *usecase.MovementUseCase
	audit     *usecase.AuditUseCase
}

// NewResourceHandler construye el handler.
func NewResourceHandler(resources *usecase.ResourceUseCase, movements *usecase.MovementUseCase, audit *usecase.AuditUseCase) *ResourceHandler {
	return &ResourceHandler{resources: resources, movements: movements, audit: audit}
}

// List godoc
// @Summary      Listar recursos de un laboratorio
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        laboratory_id  query  string  true  "ID del laboratorio"
// @Success      200  {array}  dto.ResourceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/resources [get]
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	labID := c.Query("laboratory_id")
	if labID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "laboratory_id requerido"})
	}
	list, err := h.resources.ListByLaboratory(c.Context(), labID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ResourceResponse, 0, len(list))
	for _, res := range list {
		out = append(out, toResourceResponse(res))
	}
	return c.JSON(out)
}

// ListBelowReorder godoc
// @Summary      Consumibles bajo el punto de reposición
// @Description  Insumo del reporte de compras: consumibles activos cuyo
//
//	stock disponible está por debajo de su umbral.
//
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        laboratory_id  query  string  false  "Filtrar por laboratorio. Vacío = todos."
// @Success      200  {array}  dto.ResourceResponse
// @Router       /api/resources/below-reorder [get]
func (h *ResourceHandler) ListBelowReorder(c *fiber.Ctx) error {
	list, err := h.resources.ListBelowReorder(c.Context(), c.Query("laboratory_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ResourceResponse, 0, len(list))
	for _, res := range list {
		out = append(out, toResourceResponse(res))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos de inventario de un recurso
// @Tags         resources
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del recurso"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Máximo de filas (default 50)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/resources/{id}/movements [get]
func (h *ResourceHandler) ListMovements(c *fiber.Ctx) error {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}
	list, err := h.movements.ListByResource(c.Context(), c.Params("id"), from, to, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:         m.ID,
			ResourceID: m.ResourceID,
			Direction:  m.Direction,
			Quantity:   m.Quantity.String(),
			Reason:     m.Reason,
			Actor:      m.Actor,
			OccurredAt: m.OccurredAt,
		})
	}
	return c.JSON(out)
}

// ListAudit godoc
// @Summary      Registro de auditoría de una entidad
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        entity_table  query  string  true   "Tabla de la entidad (ej. reservation_requests)"
// @Param        entity_id     query  string  true   "ID de la entidad"
// @Param        limit         query  int     false  "Máximo de filas (default 50)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.AuditRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *ResourceHandler) ListAudit(c *fiber.Ctx) error {
	table := c.Query("entity_table")
	id := c.Query("entity_id")
	if table == "" || id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entity_table y entity_id requeridos"})
	}
	list, err := h.audit.ListByEntity(c.Context(), table, id, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AuditRecordResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, dto.AuditRecordResponse{
			ID:          rec.ID,
			OccurredAt:  rec.OccurredAt,
			Actor:       rec.Actor,
			Action:      rec.Action,
			EntityTable: rec.EntityTable,
			EntityID:    rec.EntityID,
			Detail:      rec.Detail,
		})
	}
	return c.JSON(out)
}

func toResourceResponse(res *entity.Resource) dto.ResourceResponse {
	out := dto.ResourceResponse{
		ID:            res.ID,
		LaboratoryID:  res.LaboratoryID,
		Name:          res.Name,
		InventoryCode: res.InventoryCode,
		Kind:          res.Kind,
		TotalQuantity: res.TotalQuantity,
		State:         res.State,
	}
	if res.IsConsumable() {
		out.StockOnHand = res.StockOnHand.String()
		out.ReorderThreshold = res.ReorderThreshold.String()
	}
	return out
}
