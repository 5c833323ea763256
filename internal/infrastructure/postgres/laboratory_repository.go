package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/labreservas-api/internal/domain/entity"
	"github.com/jhoicas/labreservas-api/internal/domain/repository"
)

var _ repository.LaboratoryRepository = (*LaboratoryRepo)(nil)

// LaboratoryRepo implementación de lectura de laboratorios sobre PostgreSQL.
// El horario semanal se persiste como JSONB con esquema versionado y se
// valida aquí, en la frontera del store: el motor nunca ve un horario malformado.
type LaboratoryRepo struct {
	q Querier
}

// NewLaboratoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLaboratoryRepository(q Querier) *LaboratoryRepo {
	return &LaboratoryRepo{q: q}
}

// dayPolicyJSON forma persistida de una entrada del horario.
type dayPolicyJSON struct {
	Weekday  int    `json:"weekday"`
	IsOpen   bool   `json:"is_open"`
	OpensAt  string `json:"opens_at,omitempty"`
	ClosesAt string `json:"closes_at,omitempty"`
}

// schedulePolicyJSON forma persistida del horario semanal.
type schedulePolicyJSON struct {
	Version int             `json:"version"`
	Days    []dayPolicyJSON `json:"days"`
}

// decodeSchedule deserializa y valida el horario persistido.
func decodeSchedule(raw []byte) (entity.SchedulePolicy, error) {
	var js schedulePolicyJSON
	if err := json.Unmarshal(raw, &js); err != nil {
		return entity.SchedulePolicy{}, fmt.Errorf("horario malformado: %w", err)
	}
	if len(js.Days) != 7 {
		return entity.SchedulePolicy{}, fmt.Errorf("horario malformado: %d días, se esperaban 7", len(js.Days))
	}
	policy := entity.SchedulePolicy{Version: js.Version}
	for _, d := range js.Days {
		if d.Weekday < 0 || d.Weekday > 6 {
			return entity.SchedulePolicy{}, fmt.Errorf("horario malformado: día %d fuera de rango", d.Weekday)
		}
		day := entity.DayPolicy{Weekday: time.Weekday(d.Weekday), IsOpen: d.IsOpen}
		if d.IsOpen {
			opens, err := entity.ParseMinuteOfDay(d.OpensAt)
			if err != nil {
				return entity.SchedulePolicy{}, err
			}
			closes, err := entity.ParseMinuteOfDay(d.ClosesAt)
			if err != nil {
				return entity.SchedulePolicy{}, err
			}
			day.OpensAt, day.ClosesAt = opens, closes
		}
		policy.Days[d.Weekday] = day
	}
	if err := policy.Validate(); err != nil {
		return entity.SchedulePolicy{}, err
	}
	return policy, nil
}

// GetByID obtiene un laboratorio con horario y requisitos, o nil si no existe.
func (r *LaboratoryRepo) GetByID(ctx context.Context, id string) (*entity.Laboratory, error) {
	query := `
		SELECT id, code, name, location, max_occupancy, schedule, created_at, updated_at
		FROM laboratories WHERE id = $1`
	var lab entity.Laboratory
	var rawSchedule []byte
	err := r.q.QueryRow(ctx, query, id).Scan(
		&lab.ID, &lab.Code, &lab.Name, &lab.Location, &lab.MaxOccupancy,
		&rawSchedule, &lab.CreatedAt, &lab.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get laboratory: %w", err)
	}
	if lab.Schedule, err = decodeSchedule(rawSchedule); err != nil {
		return nil, fmt.Errorf("laboratory %s: %w", id, err)
	}
	if lab.Requirements, err = r.loadRequirements(ctx, id); err != nil {
		return nil, err
	}
	return &lab, nil
}

// List devuelve todos los laboratorios.
func (r *LaboratoryRepo) List(ctx context.Context) ([]*entity.Laboratory, error) {
	query := `
		SELECT id, code, name, location, max_occupancy, schedule, created_at, updated_at
		FROM laboratories ORDER BY code`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list laboratories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Laboratory
	for rows.Next() {
		var lab entity.Laboratory
		var rawSchedule []byte
		if err := rows.Scan(
			&lab.ID, &lab.Code, &lab.Name, &lab.Location, &lab.MaxOccupancy,
			&rawSchedule, &lab.CreatedAt, &lab.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan laboratory: %w", err)
		}
		if lab.Schedule, err = decodeSchedule(rawSchedule); err != nil {
			return nil, fmt.Errorf("laboratory %s: %w", lab.ID, err)
		}
		list = append(list, &lab)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, lab := range list {
		if lab.Requirements, err = r.loadRequirements(ctx, lab.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// loadRequirements carga los requisitos en el orden declarado (position).
// Ese orden es el orden de reporte de incumplimientos.
func (r *LaboratoryRepo) loadRequirements(ctx context.Context, laboratoryID string) ([]entity.Requirement, error) {
	query := `
		SELECT requirement_id, kind, name, mandatory
		FROM laboratory_requirements
		WHERE laboratory_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, laboratoryID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()
	var list []entity.Requirement
	for rows.Next() {
		var req entity.Requirement
		if err := rows.Scan(&req.ID, &req.Kind, &req.Name, &req.Mandatory); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}
