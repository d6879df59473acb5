package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do bet-service: mutações de aposta
// (bet_placed) e controle de ciclo de vida da corrida (race_control).
type KafkaPublisher struct {
	BetWriter     *kafka.Writer
	ControlWriter *kafka.Writer
}

func NewKafkaPublisher(bets, control *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{BetWriter: bets, ControlWriter: control}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	// chave por corrida: mutações da mesma corrida ficam ordenadas na partição
	return p.BetWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.RaceID), Value: b})
}

func (p *KafkaPublisher) PublishRaceControl(ctx context.Context, e events.RaceControl) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.ControlWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.RaceID), Value: b})
}
