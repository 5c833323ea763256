package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrEvaluation   = errors.New("la evaluación no pudo completarse")
	ErrIllegalState = errors.New("transición no permitida desde el estado actual")
)

// ValidationError describe una entrada malformada. Siempre local: se
// devuelve de inmediato y nunca se persiste nada.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// StateError indica una transición ilegal desde el estado actual
// (por ejemplo cancelar una solicitud completada). Nunca se persiste.
type StateError struct {
	From  string
	Event string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("transición %q no permitida desde el estado %q", e.Event, e.From)
}

func (e *StateError) Unwrap() error { return ErrIllegalState }

// ConflictError indica que una admisión concurrente ganó la frontera
// atómica. El llamador puede reintentar la operación completa una vez;
// el motor no reintenta automáticamente.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicto de concurrencia en %s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// EvaluationError indica que una consulta a un colaborador falló o expiró:
// la solicitud NO fue evaluada. Se distingue de una denegación de política
// para que el llamador sepa que puede reenviar la solicitud tal cual.
type EvaluationError struct {
	Op  string
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluación %s: %v", e.Op, e.Err)
}

func (e *EvaluationError) Unwrap() error { return ErrEvaluation }

// Cause expone el error subyacente de E/S para inspección con errors.As.
func (e *EvaluationError) Cause() error { return e.Err }
