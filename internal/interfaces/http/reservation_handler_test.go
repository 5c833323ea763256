package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labreservas-api/internal/application/admission"
	"github.com/jhoicas/labreservas-api/internal/application/usecase"
	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/labreservas-api/internal/interfaces/http"
	"github.com/jhoicas/labreservas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: API completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()

	var days [7]entity.DayPolicy
	for i := 0; i < 7; i++ {
		days[i] = entity.DayPolicy{Weekday: time.Weekday(i), IsOpen: true, OpensAt: 8 * 60, ClosesAt: 20 * 60}
	}
	store.SeedLaboratory(&entity.Laboratory{
		ID:       "lab-fisica",
		Code:     "LAB-FIS",
		Name:     "Laboratorio de Física",
		Schedule: entity.SchedulePolicy{Version: 1, Days: days},
	})
	store.SeedResource(&entity.Resource{
		ID:            "res-multimetro",
		LaboratoryID:  "lab-fisica",
		Name:          "Multímetro",
		InventoryCode: "MUL-01",
		Kind:          entity.ResourceKindDurable,
		TotalQuantity: 2,
		State:         entity.ResourceStateAvailable,
	})

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	engine := admission.NewEngine(store, store, store, store.Resources(), store.Reservations(),
		admission.NewRecorder(store.Audits(), log), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:        engine,
		LaboratoryUC:  usecase.NewLaboratoryUseCase(store),
		ResourceUC:    usecase.NewResourceUseCase(store.Resources()),
		MovementUC:    usecase.NewMovementUseCase(store.Movements()),
		ReservationUC: usecase.NewReservationQueryUseCase(store.Reservations()),
		AuditUC:       usecase.NewAuditUseCase(store.Audits()),
		JWTSecret:     testJWTSecret,
		EvalTimeout:   5 * time.Second,
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func windowRFC3339() (string, string) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return start.Format(time.RFC3339), start.Add(2 * time.Hour).Format(time.RFC3339)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests del flujo de reservas vía HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SubmitYTransicionCompleta(t *testing.T) {
	app, _ := buildAPI(t)
	solicitante := tokenForRole(t, "solicitante")
	revisor := tokenForRole(t, "revisor")
	start, end := windowRFC3339()

	// Envío: 201 con la solicitud en pending.
	resp := doJSON(t, app, http.MethodPost, "/api/reservations", solicitante, fiber.Map{
		"laboratory_id": "lab-fisica",
		"items":         []fiber.Map{{"resource_id": "res-multimetro", "quantity": 1}},
		"starts_at":     start,
		"ends_at":       end,
		"justification": "práctica de mediciones",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]string](t, resp)
	requestID := created["request_id"]
	require.NotEmpty(t, requestID)
	assert.Equal(t, "pending", created["state"])

	// Aprobación por un revisor.
	resp = doJSON(t, app, http.MethodPost, "/api/reservations/"+requestID+"/transitions", revisor, fiber.Map{
		"event": "approve",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", decode[map[string]string](t, resp)["state"])

	// Consulta de la solicitud.
	resp = doJSON(t, app, http.MethodGet, "/api/reservations/"+requestID, solicitante, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[map[string]any](t, resp)
	assert.Equal(t, "approved", detail["state"])
}

// Una denegación de política responde 422 con todas las razones.
func TestAPI_SubmitDenegada422(t *testing.T) {
	app, _ := buildAPI(t)
	token := tokenForRole(t, "solicitante")
	start, end := windowRFC3339()

	resp := doJSON(t, app, http.MethodPost, "/api/reservations", token, fiber.Map{
		"laboratory_id": "lab-fisica",
		"items":         []fiber.Map{{"resource_id": "res-multimetro", "quantity": 5}},
		"starts_at":     start,
		"ends_at":       end,
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	denial := decode[map[string]any](t, resp)
	assert.Equal(t, true, denial["denied"])
	reasons, ok := denial["reasons"].([]any)
	require.True(t, ok)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "MUL-01")
}

func TestAPI_SubmitSinToken401(t *testing.T) {
	app, _ := buildAPI(t)
	start, end := windowRFC3339()

	resp := doJSON(t, app, http.MethodPost, "/api/reservations", "", fiber.Map{
		"laboratory_id": "lab-fisica",
		"items":         []fiber.Map{{"resource_id": "res-multimetro", "quantity": 1}},
		"starts_at":     start,
		"ends_at":       end,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_TransicionIlegal409(t *testing.T) {
	app, _ := buildAPI(t)
	solicitante := tokenForRole(t, "solicitante")
	revisor := tokenForRole(t, "revisor")
	start, end := windowRFC3339()

	resp := doJSON(t, app, http.MethodPost, "/api/reservations", solicitante, fiber.Map{
		"laboratory_id": "lab-fisica",
		"items":         []fiber.Map{{"resource_id": "res-multimetro", "quantity": 1}},
		"starts_at":     start,
		"ends_at":       end,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID := decode[map[string]string](t, resp)["request_id"]

	resp = doJSON(t, app, http.MethodPost, "/api/reservations/"+requestID+"/transitions", revisor, fiber.Map{
		"event": "reject", "reason": "sin cupo",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Aprobar una solicitud rechazada: estado terminal.
	resp = doJSON(t, app, http.MethodPost, "/api/reservations/"+requestID+"/transitions", revisor, fiber.Map{
		"event": "approve",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_TransicionSinPermiso403(t *testing.T) {
	app, _ := buildAPI(t)
	solicitante := tokenForRole(t, "solicitante")
	start, end := windowRFC3339()

	resp := doJSON(t, app, http.MethodPost, "/api/reservations", solicitante, fiber.Map{
		"laboratory_id": "lab-fisica",
		"items":         []fiber.Map{{"resource_id": "res-multimetro", "quantity": 1}},
		"starts_at":     start,
		"ends_at":       end,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID := decode[map[string]string](t, resp)["request_id"]

	resp = doJSON(t, app, http.MethodPost, "/api/reservations/"+requestID+"/transitions", solicitante, fiber.Map{
		"event": "approve",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_Disponibilidad(t *testing.T) {
	app, _ := buildAPI(t)
	token := tokenForRole(t, "solicitante")
	start, end := windowRFC3339()

	// Reserva 1 de las 2 unidades.
	resp := doJSON(t, app, http.MethodPost, "/api/reservations", token, fiber.Map{
		"laboratory_id": "lab-fisica",
		"items":         []fiber.Map{{"resource_id": "res-multimetro", "quantity": 1}},
		"starts_at":     start,
		"ends_at":       end,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	path := fmt.Sprintf("/api/availability?resource_ids=res-multimetro&start=%s&end=%s", start, end)
	resp = doJSON(t, app, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]map[string]any](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0]["total"])
	assert.Equal(t, float64(1), items[0]["committed"])
	assert.Equal(t, float64(1), items[0]["free"])
}

func TestAPI_DisponibilidadVentanaInvalida400(t *testing.T) {
	app, _ := buildAPI(t)
	token := tokenForRole(t, "solicitante")

	resp := doJSON(t, app, http.MethodGet, "/api/availability?resource_ids=res-multimetro&start=ayer&end=hoy", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// La auditoría está restringida a personal con capacidad de revisión.
func TestAPI_AuditoriaRestringidaPorRol(t *testing.T) {
	app, _ := buildAPI(t)
	solicitante := tokenForRole(t, "solicitante")
	revisor := tokenForRole(t, "revisor")
	start, end := windowRFC3339()

	resp := doJSON(t, app, http.MethodPost, "/api/reservations", solicitante, fiber.Map{
		"laboratory_id": "lab-fisica",
		"items":         []fiber.Map{{"resource_id": "res-multimetro", "quantity": 1}},
		"starts_at":     start,
		"ends_at":       end,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	requestID := decode[map[string]string](t, resp)["request_id"]

	path := "/api/audit?entity_table=reservation_requests&entity_id=" + requestID

	resp = doJSON(t, app, http.MethodGet, path, solicitante, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, path, revisor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[[]map[string]any](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, "reserva_creada", records[0]["action"])
}

func TestAPI_CatalogoLaboratorios(t *testing.T) {
	app, _ := buildAPI(t)
	token := tokenForRole(t, "solicitante")

	resp := doJSON(t, app, http.MethodGet, "/api/laboratories", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	labs := decode[[]map[string]any](t, resp)
	require.Len(t, labs, 1)
	assert.Equal(t, "LAB-FIS", labs[0]["code"])

	resp = doJSON(t, app, http.MethodGet, "/api/laboratories/lab-fantasma", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_VerificacionDeRequisitos(t *testing.T) {
	app, _ := buildAPI(t)
	token := tokenForRole(t, "solicitante")

	// El laboratorio del fixture no declara requisitos: cumple trivialmente.
	resp := doJSON(t, app, http.MethodGet, "/api/laboratories/lab-fisica/requirements/check", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[map[string]any](t, resp)
	assert.Equal(t, true, result["compliant"])
}

func TestAPI_RecursosPorLaboratorio(t *testing.T) {
	app, _ := buildAPI(t)
	token := tokenForRole(t, "solicitante")

	resp := doJSON(t, app, http.MethodGet, "/api/resources?laboratory_id=lab-fisica", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]map[string]any](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "MUL-01", list[0]["inventory_code"])

	// Sin laboratory_id la consulta es inválida.
	resp = doJSON(t, app, http.MethodGet, "/api/resources", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
