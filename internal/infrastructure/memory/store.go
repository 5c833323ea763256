// Package memory provee un almacén en memoria para desarrollo y tests.
// Implementa todos los puertos de persistencia y la frontera transaccional
// del motor: Run serializa con un mutex y revierte a un snapshot si el
// callback falla, de modo que una admisión denegada no deja rastro.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

// Store almacén en memoria. La configuración (laboratorios, cumplimientos)
// vive bajo su propio mutex para poder leerse dentro de una transacción sin
// interbloqueo; el estado mutable (recursos, solicitudes, libros) vive bajo mu.
type Store struct {
	mu    sync.Mutex
	state *state

	configMu     sync.RWMutex
	labs         map[string]*entity.Laboratory
	fulfillments map[string]*entity.Fulfillment // clave: userID|requirementID
}

type state struct {
	resources    map[string]*entity.Resource
	reservations map[string]*entity.ReservationRequest
	movements    []*entity.InventoryMovement
	audits       []*entity.AuditRecord
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		state: &state{
			resources:    make(map[string]*entity.Resource),
			reservations: make(map[string]*entity.ReservationRequest),
		},
		labs:         make(map[string]*entity.Laboratory),
		fulfillments: make(map[string]*entity.Fulfillment),
	}
}

func (st *state) clone() *state {
	cp := &state{
		resources:    make(map[string]*entity.Resource, len(st.resources)),
		reservations: make(map[string]*entity.ReservationRequest, len(st.reservations)),
		movements:    append([]*entity.InventoryMovement(nil), st.movements...),
		audits:       append([]*entity.AuditRecord(nil), st.audits...),
	}
	for id, r := range st.resources {
		cp.resources[id] = copyResource(r)
	}
	for id, r := range st.reservations {
		cp.reservations[id] = copyReservation(r)
	}
	return cp
}

func copyResource(r *entity.Resource) *entity.Resource {
	cp := *r
	return &cp
}

func copyReservation(r *entity.ReservationRequest) *entity.ReservationRequest {
	cp := *r
	cp.Items = append([]entity.LineItem(nil), r.Items...)
	return &cp
}

func fulfillmentKey(userID, requirementID string) string {
	return userID + "|" + requirementID
}

// ──────────────────────────────────────────────────────────────────────────────
// Siembra (configuración y catálogo de pruebas)
// ──────────────────────────────────────────────────────────────────────────────

// SeedLaboratory registra un laboratorio.
func (s *Store) SeedLaboratory(lab *entity.Laboratory) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.labs[lab.ID] = lab
}

// SeedFulfillment registra el cumplimiento de un requisito por un usuario.
func (s *Store) SeedFulfillment(f *entity.Fulfillment) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.fulfillments[fulfillmentKey(f.UserID, f.RequirementID)] = f
}

// SeedResource registra un recurso en el catálogo.
func (s *Store) SeedResource(r *entity.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.resources[r.ID] = copyResource(r)
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner: frontera atómica
// ──────────────────────────────────────────────────────────────────────────────

// Run ejecuta fn bajo el mutex del estado mutable con semántica de
// transacción: si fn falla, el estado vuelve al snapshot previo.
func (s *Store) Run(ctx context.Context, fn func(
	resourceRepo repository.ResourceRepository,
	reservationRepo repository.ReservationRepository,
	movementRepo repository.InventoryMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	err := fn(&txResources{st: s.state}, &txReservations{st: s.state}, &txMovements{st: s.state})
	if err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Núcleo sin sincronizar (compartido por las vistas tx y las públicas)
// ──────────────────────────────────────────────────────────────────────────────

func (st *state) getResource(id string) *entity.Resource {
	if r, ok := st.resources[id]; ok {
		return copyResource(r)
	}
	return nil
}

func (st *state) getManyResources(ids []string) []*entity.Resource {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []*entity.Resource
	for _, id := range sorted {
		if r, ok := st.resources[id]; ok {
			out = append(out, copyResource(r))
		}
	}
	return out
}

func (st *state) listResourcesByLab(labID string) []*entity.Resource {
	var out []*entity.Resource
	for _, r := range st.resources {
		if r.LaboratoryID == labID {
			out = append(out, copyResource(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InventoryCode < out[j].InventoryCode })
	return out
}

func (st *state) listBelowReorder(labID string) []*entity.Resource {
	var out []*entity.Resource
	for _, r := range st.resources {
		if labID != "" && r.LaboratoryID != labID {
			continue
		}
		if r.State != entity.ResourceStateInactive && r.BelowReorder() {
			out = append(out, copyResource(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InventoryCode < out[j].InventoryCode })
	return out
}

func (st *state) updateStock(id string, stockOnHand decimal.Decimal) error {
	r, ok := st.resources[id]
	if !ok {
		return errNoRow("resource", id)
	}
	r.StockOnHand = stockOnHand
	r.UpdatedAt = time.Now()
	return nil
}

func (st *state) sumCommitted(resourceIDs []string, start, end time.Time, excludeRequestID string) map[string]int {
	wanted := make(map[string]bool, len(resourceIDs))
	for _, id := range resourceIDs {
		wanted[id] = true
	}
	out := make(map[string]int, len(resourceIDs))
	for _, req := range st.reservations {
		if req.ID == excludeRequestID || !req.Commits() || !req.Overlaps(start, end) {
			continue
		}
		for _, it := range req.Items {
			if wanted[it.ResourceID] {
				out[it.ResourceID] += it.Quantity
			}
		}
	}
	return out
}

func (st *state) listReservations(filter repository.ReservationFilter) []*entity.ReservationRequest {
	var out []*entity.ReservationRequest
	for _, req := range st.reservations {
		if filter.LaboratoryID != "" && req.LaboratoryID != filter.LaboratoryID {
			continue
		}
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.State != "" && req.State != filter.State {
			continue
		}
		out = append(out, copyReservation(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

type notFoundError struct{ table, id string }

func (e notFoundError) Error() string { return e.table + " " + e.id + ": no existe" }

func errNoRow(table, id string) error { return notFoundError{table: table, id: id} }

// ──────────────────────────────────────────────────────────────────────────────
// Vistas dentro de la transacción (sin locks propios: Run ya serializa)
// ──────────────────────────────────────────────────────────────────────────────

type txResources struct{ st *state }

func (v *txResources) GetByID(_ context.Context, id string) (*entity.Resource, error) {
	return v.st.getResource(id), nil
}

func (v *txResources) GetManyForUpdate(_ context.Context, ids []string) ([]*entity.Resource, error) {
	return v.st.getManyResources(ids), nil
}

func (v *txResources) ListByLaboratory(_ context.Context, labID string) ([]*entity.Resource, error) {
	return v.st.listResourcesByLab(labID), nil
}

func (v *txResources) ListBelowReorder(_ context.Context, labID string) ([]*entity.Resource, error) {
	return v.st.listBelowReorder(labID), nil
}

func (v *txResources) UpdateStock(_ context.Context, id string, stockOnHand decimal.Decimal) error {
	return v.st.updateStock(id, stockOnHand)
}

type txReservations struct{ st *state }

func (v *txReservations) Create(_ context.Context, req *entity.ReservationRequest) error {
	if _, exists := v.st.reservations[req.ID]; exists {
		return errNoRow("reservation duplicada", req.ID)
	}
	v.st.reservations[req.ID] = copyReservation(req)
	return nil
}

func (v *txReservations) GetByID(_ context.Context, id string) (*entity.ReservationRequest, error) {
	if r, ok := v.st.reservations[id]; ok {
		return copyReservation(r), nil
	}
	return nil, nil
}

func (v *txReservations) GetForUpdate(ctx context.Context, id string) (*entity.ReservationRequest, error) {
	return v.GetByID(ctx, id)
}

func (v *txReservations) Update(_ context.Context, req *entity.ReservationRequest) error {
	if _, ok := v.st.reservations[req.ID]; !ok {
		return errNoRow("reservation", req.ID)
	}
	v.st.reservations[req.ID] = copyReservation(req)
	return nil
}

func (v *txReservations) List(_ context.Context, filter repository.ReservationFilter) ([]*entity.ReservationRequest, error) {
	return v.st.listReservations(filter), nil
}

func (v *txReservations) SumCommitted(_ context.Context, resourceIDs []string, start, end time.Time, excludeRequestID string) (map[string]int, error) {
	return v.st.sumCommitted(resourceIDs, start, end, excludeRequestID), nil
}

type txMovements struct{ st *state }

func (v *txMovements) Create(_ context.Context, m *entity.InventoryMovement) error {
	cp := *m
	v.st.movements = append(v.st.movements, &cp)
	return nil
}

func (v *txMovements) ListByResource(_ context.Context, resourceID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return v.st.listMovements(resourceID, from, to, limit, offset), nil
}

func (st *state) listMovements(resourceID string, from, to *time.Time, limit, offset int) []*entity.InventoryMovement {
	var out []*entity.InventoryMovement
	for _, m := range st.movements {
		if m.ResourceID != resourceID {
			continue
		}
		if from != nil && m.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && m.OccurredAt.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if offset > 0 {
		if offset >= len(out) {
			return nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Puertos públicos (fuera de la transacción: toman el lock)
// ──────────────────────────────────────────────────────────────────────────────

var (
	_ repository.LaboratoryRepository        = (*Store)(nil)
	_ repository.RequirementRepository       = (*Store)(nil)
	_ repository.ResourceRepository          = (*storeResources)(nil)
	_ repository.ReservationRepository       = (*storeReservations)(nil)
	_ repository.InventoryMovementRepository = (*storeMovements)(nil)
	_ repository.AuditRepository             = (*storeAudits)(nil)
)

// GetByID (laboratorio o recurso según el puerto) — laboratorios.
func (s *Store) GetByID(ctx context.Context, id string) (*entity.Laboratory, error) {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.labs[id], nil
}

// List devuelve todos los laboratorios ordenados por código.
func (s *Store) List(ctx context.Context) ([]*entity.Laboratory, error) {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	out := make([]*entity.Laboratory, 0, len(s.labs))
	for _, lab := range s.labs {
		out = append(out, lab)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// GetUserFulfillment devuelve el cumplimiento registrado, o nil.
func (s *Store) GetUserFulfillment(_ context.Context, userID, requirementID string) (*entity.Fulfillment, error) {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.fulfillments[fulfillmentKey(userID, requirementID)], nil
}

// Resources devuelve la vista de recursos fuera de la transacción.
func (s *Store) Resources() repository.ResourceRepository { return (*storeResources)(s) }

// Reservations devuelve la vista de solicitudes fuera de la transacción.
func (s *Store) Reservations() repository.ReservationRepository { return (*storeReservations)(s) }

// Movements devuelve la vista del libro mayor fuera de la transacción.
func (s *Store) Movements() repository.InventoryMovementRepository { return (*storeMovements)(s) }

// Audits devuelve la vista del registro de auditoría.
func (s *Store) Audits() repository.AuditRepository { return (*storeAudits)(s) }

type storeResources Store

func (s *storeResources) GetByID(_ context.Context, id string) (*entity.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getResource(id), nil
}

func (s *storeResources) GetManyForUpdate(_ context.Context, ids []string) ([]*entity.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getManyResources(ids), nil
}

func (s *storeResources) ListByLaboratory(_ context.Context, labID string) ([]*entity.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listResourcesByLab(labID), nil
}

func (s *storeResources) ListBelowReorder(_ context.Context, labID string) ([]*entity.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listBelowReorder(labID), nil
}

func (s *storeResources) UpdateStock(_ context.Context, id string, stockOnHand decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.updateStock(id, stockOnHand)
}

type storeReservations Store

func (s *storeReservations) Create(_ context.Context, req *entity.ReservationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txReservations{st: s.state}).Create(context.Background(), req)
}

func (s *storeReservations) GetByID(_ context.Context, id string) (*entity.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.state.reservations[id]; ok {
		return copyReservation(r), nil
	}
	return nil, nil
}

func (s *storeReservations) GetForUpdate(ctx context.Context, id string) (*entity.ReservationRequest, error) {
	return s.GetByID(ctx, id)
}

func (s *storeReservations) Update(_ context.Context, req *entity.ReservationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&txReservations{st: s.state}).Update(context.Background(), req)
}

func (s *storeReservations) List(_ context.Context, filter repository.ReservationFilter) ([]*entity.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listReservations(filter), nil
}

func (s *storeReservations) SumCommitted(_ context.Context, resourceIDs []string, start, end time.Time, excludeRequestID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.sumCommitted(resourceIDs, start, end, excludeRequestID), nil
}

type storeMovements Store

func (s *storeMovements) Create(_ context.Context, m *entity.InventoryMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.state.movements = append(s.state.movements, &cp)
	return nil
}

func (s *storeMovements) ListByResource(_ context.Context, resourceID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.listMovements(resourceID, from, to, limit, offset), nil
}

type storeAudits Store

func (s *storeAudits) Create(_ context.Context, rec *entity.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.state.audits = append(s.state.audits, &cp)
	return nil
}

func (s *storeAudits) ListByEntity(_ context.Context, entityTable, entityID string, limit, offset int) ([]*entity.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.AuditRecord
	for _, rec := range s.state.audits {
		if rec.EntityTable == entityTable && rec.EntityID == entityID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
