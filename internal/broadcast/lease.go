package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lease abstrai o lock distribuído com expiração usado pelo throttle.
// Acquire é set-if-not-exists atômico: o único ponto do coalescer que
// exige atomicidade entre processos. Release e Renew podem falhar sem
// comprometer a correção: o TTL expira sozinho.
type Lease interface {
	// Acquire tenta criar a marca com TTL; true se este chamador a criou.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Renew grava a marca incondicionalmente com novo TTL.
	Renew(ctx context.Context, key string, ttl time.Duration) error
	// Release remove a marca.
	Release(ctx context.Context, key string) error
	// RemainingTTL informa quanto falta para a marca expirar (0 se não existe).
	RemainingTTL(ctx context.Context, key string) (time.Duration, error)
}

// RedisLease implementa Lease sobre um Redis compartilhado entre os
// processos do serviço.
type RedisLease struct {
	r *redis.Client
}

func NewRedisLease(r *redis.Client) *RedisLease { return &RedisLease{r: r} }

func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.r.SetNX(ctx, key, "1", ttl).Result()
}

func (l *RedisLease) Renew(ctx context.Context, key string, ttl time.Duration) error {
	return l.r.Set(ctx, key, "1", ttl).Err()
}

func (l *RedisLease) Release(ctx context.Context, key string) error {
	return l.r.Del(ctx, key).Err()
}

func (l *RedisLease) RemainingTTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := l.r.PTTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		// -1 sem TTL, -2 chave inexistente
		return 0, nil
	}
	return d, nil
}

// MemoryLease é a implementação em memória usada nos testes do throttle.
type MemoryLease struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func NewMemoryLease() *MemoryLease {
	return &MemoryLease{until: make(map[string]time.Time)}
}

func (l *MemoryLease) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if dl, ok := l.until[key]; ok && time.Now().Before(dl) {
		return false, nil
	}
	l.until[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *MemoryLease) Renew(_ context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.until[key] = time.Now().Add(ttl)
	return nil
}

func (l *MemoryLease) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.until, key)
	return nil
}

func (l *MemoryLease) RemainingTTL(_ context.Context, key string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	dl, ok := l.until[key]
	if !ok {
		return 0, nil
	}
	d := time.Until(dl)
	if d < 0 {
		return 0, nil
	}
	return d, nil
}
