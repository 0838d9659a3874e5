package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// memoryStore implementa Store sobre go-cache.
// go-cache barre las entradas vencidas con su janitor; el vencimiento lógico se
// chequea además contra cfg.Now para que los tests puedan adelantar el reloj.
// mu serializa las operaciones compuestas (check-then-set, get-then-delete).
type memoryStore[V any] struct {
	name string
	ttl  time.Duration
	now  func() time.Time
	c    *gocache.Cache
	mu   sync.Mutex

	hits    atomic.Int64
	misses  atomic.Int64
	expired atomic.Int64
}

// NewMemory crea un store en memoria.
func NewMemory[V any](cfg Config) Store[V] {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &memoryStore[V]{
		name: cfg.Name,
		ttl:  cfg.TTL,
		now:  now,
		c:    gocache.New(cfg.TTL, interval),
	}
	if cfg.OnEvict != nil {
		name, cb := cfg.Name, cfg.OnEvict
		// go-cache también avisa en cada Delete manual; solo cuentan las vencidas.
		s.c.OnEvicted(func(k string, raw any) {
			if e, ok := raw.(entry[V]); ok && !s.now().Before(e.expiresAt) {
				cb(name, k)
			}
		})
	}
	return s
}

func (s *memoryStore[V]) Put(_ context.Context, key string, v V) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(key); err == nil {
		return ErrKeyExists
	}
	s.c.Set(key, entry[V]{value: v, expiresAt: s.now().Add(s.ttl)}, gocache.DefaultExpiration)
	return nil
}

func (s *memoryStore[V]) Set(_ context.Context, key string, v V) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Set(key, entry[V]{value: v, expiresAt: s.now().Add(s.ttl)}, gocache.DefaultExpiration)
	return nil
}

func (s *memoryStore[V]) Get(_ context.Context, key string) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key)
}

func (s *memoryStore[V]) Take(_ context.Context, key string) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.lookup(key)
	if err != nil {
		return v, err
	}
	s.c.Delete(key)
	return v, nil
}

// lookup requiere mu tomado. Las entradas vencidas se eliminan al leerlas.
func (s *memoryStore[V]) lookup(key string) (V, error) {
	var zero V
	raw, ok := s.c.Get(key)
	if !ok {
		s.misses.Add(1)
		return zero, ErrNotFound
	}
	e, ok := raw.(entry[V])
	if !ok {
		s.c.Delete(key)
		s.misses.Add(1)
		return zero, ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		s.c.Delete(key)
		s.expired.Add(1)
		return zero, ErrExpired
	}
	s.hits.Add(1)
	return e.value, nil
}

func (s *memoryStore[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Delete(key)
	return nil
}

func (s *memoryStore[V]) TTL() time.Duration { return s.ttl }

func (s *memoryStore[V]) Len() int { return s.c.ItemCount() }

func (s *memoryStore[V]) Stats() Stats {
	return Stats{
		Name:    s.name,
		Driver:  "memory",
		Keys:    s.c.ItemCount(),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Expired: s.expired.Load(),
	}
}

func (s *memoryStore[V]) Close() error {
	s.c.Flush()
	return nil
}
