package cache

import (
	"context"
)

// Cache es una caché clave-valor genérica; los adapters serializan a JSON.
type Cache interface {
	// Get rellena dest (puntero) y devuelve (true, nil) en un hit, (false, nil) en un miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set guarda val con un TTL en segundos. ttlSecs <= 0 usa el TTL por defecto del adapter.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	Delete(ctx context.Context, key string) error
}
