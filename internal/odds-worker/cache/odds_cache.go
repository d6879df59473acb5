package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache guarda a última carga RACE_ODDS_UPDATED de cada corrida.
// TTL curto: a fonte da verdade é sempre a recomputação sobre o snapshot
// de apostas, o cache só evita recomputar em leituras repetidas.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis das odds correntes de uma corrida
func key(raceID string) string { return "odds:current:" + raceID }

// SetCurrent armazena a carga serializada das odds correntes.
func (r *RedisCache) SetCurrent(ctx context.Context, raceID string, payload []byte) error {
	return r.Client.Set(ctx, key(raceID), payload, r.TTL).Err()
}

// GetCurrent recupera a carga corrente; ok=false em cache miss.
func (r *RedisCache) GetCurrent(ctx context.Context, raceID string) ([]byte, bool, error) {
	b, err := r.Client.Get(ctx, key(raceID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
