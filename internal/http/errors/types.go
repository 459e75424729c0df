package errors

import (
	"fmt"
	"net/http"
)

// AppError es un error con código estable y status HTTP. Err queda fuera del
// JSON y sólo se usa para logs.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func (e *AppError) Error() string {
	msg := "[" + e.Code + "] " + e.Message
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// Is compara por Code: errors.Is(err, ErrConflict) matchea también las copias.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) clone() *AppError {
	c := *e
	return &c
}

func (e *AppError) WithDetail(detail string) *AppError {
	c := e.clone()
	c.Detail = detail
	return c
}

func (e *AppError) WithDetailf(format string, args ...any) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

func (e *AppError) WithCause(err error) *AppError {
	c := e.clone()
	c.Err = err
	return c
}

// FromError normaliza cualquier error a AppError; lo desconocido es 500 con la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// Errores predefinidos. Nunca se mutan: WithDetail/WithCause devuelven copias.
var (
	ErrBadRequest          = New(http.StatusBadRequest, "BAD_REQUEST", "La solicitud contiene sintaxis inválida o parámetros faltantes.")
	ErrInvalidPayload      = New(http.StatusBadRequest, "INVALID_PAYLOAD", "El cuerpo de la solicitud es inválido.")
	ErrMissingTenantHeader = New(http.StatusBadRequest, "BAD_REQUEST", "Falta el header X-Tenant-ID.")
	ErrBodyTooLarge        = New(http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "El cuerpo de la solicitud excede el tamaño máximo permitido.")
	ErrUnauthorized        = New(http.StatusUnauthorized, "UNAUTHORIZED", "Se requiere autenticación.")
	ErrTokenInvalid        = New(http.StatusUnauthorized, "TOKEN_INVALID", "El token es inválido o expiró.")
	ErrForbidden           = New(http.StatusForbidden, "FORBIDDEN", "No tiene permisos para acceder a este recurso.")
	ErrModuleNotSubscribed = New(http.StatusForbidden, "MODULE_NOT_SUBSCRIBED", "El tenant no está suscripto a este módulo.")
	ErrNotFound            = New(http.StatusNotFound, "NOT_FOUND", "El recurso solicitado no existe.")
	ErrTenantNotFound      = New(http.StatusNotFound, "TENANT_NOT_FOUND", "El tenant no existe.")
	ErrModuleNotFound      = New(http.StatusNotFound, "MODULE_NOT_FOUND", "El módulo no existe en el catálogo.")
	ErrMethodNotAllowed    = New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Método HTTP no permitido para este recurso.")
	ErrConflict            = New(http.StatusConflict, "CONFLICT", "El estado actual del recurso impide la operación.")
	ErrRateLimitExceeded   = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Demasiadas solicitudes. Intente más tarde.")
	ErrInternalServerError = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Ocurrió un error inesperado.")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "El servicio no está disponible temporalmente.")
)
