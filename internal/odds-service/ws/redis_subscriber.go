package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis
// Pub/Sub e repassa as mensagens push aos clientes WebSocket via Hub.
//
// Funcionamento:
// - Recebe mensagens JSON do canal Redis
// - Extrai o raceId do envelope para rotear ao conjunto certo de conexões
// - Chama hub.Broadcast com a carga original, sem reserializar
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var env events.PushEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(env.RaceID, []byte(msg.Payload))
			}
		}
	}()
}
