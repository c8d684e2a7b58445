package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Conciliación y ciclos de descuento.
	ErrInvalidInterval         = errors.New("intervalo de conteos inválido")
	ErrIncompleteSubmission    = errors.New("envío de conteos incompleto")
	ErrConcurrentCloseConflict = errors.New("otro cierre de ciclo se completó primero para este hotel")
)

// IntervalError detalla por qué dos conteos no delimitan un intervalo válido.
type IntervalError struct {
	HotelID      string
	StartCountID string
	EndCountID   string
	Reason       string
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("intervalo inválido (hotel %s, conteos %s → %s): %s",
		e.HotelID, e.StartCountID, e.EndCountID, e.Reason)
}

func (e *IntervalError) Unwrap() error { return ErrInvalidInterval }

// IncompleteSubmissionError lista los productos faltantes o inválidos de un cierre de ciclo.
type IncompleteSubmissionError struct {
	MissingProductIDs  []string
	NegativeProductIDs []string
}

func (e *IncompleteSubmissionError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.MissingProductIDs) > 0 {
		parts = append(parts, "sin conteo: "+strings.Join(e.MissingProductIDs, ", "))
	}
	if len(e.NegativeProductIDs) > 0 {
		parts = append(parts, "cantidad negativa: "+strings.Join(e.NegativeProductIDs, ", "))
	}
	return "envío incompleto (" + strings.Join(parts, "; ") + ")"
}

func (e *IncompleteSubmissionError) Unwrap() error { return ErrIncompleteSubmission }

// ValidationError describe un campo inválido en la entrada de un caso de uso.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Códigos de advertencia de integridad de datos.
const (
	WarningUnknownProduct = "UNKNOWN_PRODUCT"
	WarningUnknownSector  = "UNKNOWN_SECTOR"
	WarningUnknownRow     = "UNKNOWN_ROW"
)

// DataIntegrityWarning no es un error: la fila afectada se descarta y la advertencia
// viaja junto al resultado exitoso para que el llamador la muestre.
type DataIntegrityWarning struct {
	Code        string    `json:"code"`
	ProductID   string    `json:"product_id,omitempty"`
	SectorID    string    `json:"sector_id,omitempty"`
	Source      string    `json:"source"` // count, purchase, delivery, transfer, restock, overlay
	ReferenceID string    `json:"reference_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at,omitempty"`
	Message     string    `json:"message"`
}

// IsClientError indica si el error se debe a la entrada del llamador.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrIncompleteSubmission)
}

// IsRetryable indica si el llamador puede reintentar con datos frescos.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentCloseConflict)
}
