package store

import "errors"

// Errores comunes del DAL.
var (
	// ErrUnknownDriver indica que no hay adapter registrado con ese nombre.
	ErrUnknownDriver = errors.New("store: unknown driver")

	// ErrClosed indica que el DAL ya fue cerrado.
	ErrClosed = errors.New("store: closed")
)

// IsClosed helper para verificar si el error es por DAL cerrado.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
