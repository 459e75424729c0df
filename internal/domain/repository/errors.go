package repository

import "errors"

// Errores centinela que devuelven todos los adapters. Se envuelven con %w.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
