// Package cache provee los stores de credenciales del broker: tablas key/value
// con TTL acotado, de un solo uso y seguras para concurrencia.
//
// Cada canal de provider tiene su propia tabla de states y su propia tabla de
// resource codes; el broker las recibe inyectadas (Store[V]) para poder usar
// relojes falsos en tests.
//
// Solo existe backend en memoria (patrickmn/go-cache). Un backend distribuido
// tendría que implementar Take de forma atómica (GETDEL en redis).
package cache

import (
	"context"
	"errors"
	"time"
)

// Store es una tabla tipada con TTL por entrada.
type Store[V any] interface {
	// Put inserta v bajo key. ErrKeyExists si hay una entrada viva con esa key.
	Put(ctx context.Context, key string, v V) error

	// Set inserta o reemplaza la entrada bajo key y reinicia su TTL.
	Set(ctx context.Context, key string, v V) error

	// Get devuelve la entrada sin consumirla.
	// ErrNotFound si no existe, ErrExpired si existía pero venció (y se elimina).
	Get(ctx context.Context, key string) (V, error)

	// Take obtiene y elimina la entrada en un solo paso.
	// Dos Take concurrentes sobre la misma key: exactamente uno tiene éxito.
	Take(ctx context.Context, key string) (V, error)

	// Delete elimina la key (no-op si no existe).
	Delete(ctx context.Context, key string) error

	// TTL es la vida de cada entrada desde su inserción.
	TTL() time.Duration

	// Len cuenta las entradas aún no barridas (puede incluir vencidas).
	Len() int

	Stats() Stats

	// Close vacía la tabla.
	Close() error
}

// Stats contiene estadísticas del store.
type Stats struct {
	Name    string
	Driver  string
	Keys    int
	Hits    int64
	Misses  int64
	Expired int64
}

// Config configuración para crear un store.
type Config struct {
	Driver string // "memory"
	// Name identifica la tabla en logs/métricas ("github:state").
	Name string
	// TTL de cada entrada. Obligatorio.
	TTL time.Duration
	// CleanupInterval del janitor. Default 1m.
	CleanupInterval time.Duration
	// Now permite inyectar un reloj (tests). Default time.Now.
	Now func() time.Time
	// OnEvict se invoca cuando se elimina una entrada vencida (janitor o
	// lectura tardía). Take, Set y Delete sobre entradas vivas no lo disparan.
	OnEvict func(name, key string)
}

// Errores del store.
var (
	ErrNotFound  = errors.New("cache: key not found")
	ErrExpired   = errors.New("cache: key expired")
	ErrKeyExists = errors.New("cache: key already exists")
	ErrEmptyKey  = errors.New("cache: empty key")
	ErrNoTTL     = errors.New("cache: ttl must be positive")
)

// IsNotFound es true tanto para keys inexistentes como vencidas.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired)
}

// New crea un store según la configuración. Drivers desconocidos usan memoria.
func New[V any](cfg Config) (Store[V], error) {
	if cfg.TTL <= 0 {
		return nil, ErrNoTTL
	}
	// memory es el único driver; cualquier otro valor cae acá.
	return NewMemory[V](cfg), nil
}
