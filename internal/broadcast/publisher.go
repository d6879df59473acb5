package broadcast

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ChannelRacePush é o canal Redis Pub/Sub que alimenta o hub WebSocket
// do odds-service.
const ChannelRacePush = "race_push_broadcast"

// Publisher entrega uma mensagem push já serializada aos assinantes.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// RedisPublisher publica no canal Pub/Sub compartilhado.
type RedisPublisher struct {
	r       *redis.Client
	channel string
}

func NewRedisPublisher(r *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = ChannelRacePush
	}
	return &RedisPublisher{r: r, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, payload []byte) error {
	return p.r.Publish(ctx, p.channel, payload).Err()
}
