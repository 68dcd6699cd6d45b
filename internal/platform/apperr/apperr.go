// Package apperr define la taxonomía de errores compartida por servicios y adapters.
//
// Los adapters de storage devuelven los kinds "pelados" (ErrNotFound, ErrConflict).
// Los servicios los envuelven con contexto usando los constructores de abajo.
// Los handlers solo miran el kind con errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrTimeout    = errors.New("timeout")
)

// Error lleva un mensaje apto para el usuario y el kind al que pertenece.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error   { return newf(ErrNotFound, format, args...) }
func Validation(format string, args ...any) error { return newf(ErrValidation, format, args...) }
func Conflict(format string, args ...any) error   { return newf(ErrConflict, format, args...) }
func Timeout(format string, args ...any) error    { return newf(ErrTimeout, format, args...) }

// Message devuelve el texto a mostrar al cliente.
// Para errores sin kind conocido devuelve "internal error" y nunca el detalle interno.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Error()
	}
	for _, k := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrTimeout} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "internal error"
}
