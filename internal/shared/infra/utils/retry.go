package utils

import (
	"context"
	"errors"
	"time"
)

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marca un error que no debe reintentarse (p.ej. un not found).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Retry ejecuta fn hasta attempts veces, duplicando la espera entre intentos.
// Un error marcado con Permanent corta los reintentos y se devuelve desenvuelto.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-time.After(delay << i):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
