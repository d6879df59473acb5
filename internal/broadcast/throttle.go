package broadcast

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Source lê o estado mais recente a ser publicado para uma corrida.
// A publicação atrasada sempre relê por aqui: o payload do momento do
// agendamento não pode vazar.
type Source func(ctx context.Context, raceID string) ([]byte, error)

// Throttler limita a frequência de broadcast por corrida entre processos
// e garante a entrega do último estado por coalescência de borda final.
//
// Estados por corrida, materializados em marcas no Lease compartilhado:
//   - IDLE: nenhuma marca; a próxima mudança publica na hora e abre a janela;
//   - THROTTLED: marca de janela presente; mudanças tentam agendar a
//     publicação atrasada via Acquire (set-if-not-exists);
//   - THROTTLED_PENDING: marca de pendência presente; mudanças viram no-op,
//     a publicação ao fim da janela já está garantida.
//
// Sob carga contínua sai no máximo uma publicação imediata e uma atrasada
// por janela, e o estado final da janela sempre é entregue.
type Throttler struct {
	log    *zap.Logger
	lease  Lease
	pub    Publisher
	source Source
	window time.Duration
}

func NewThrottler(log *zap.Logger, lease Lease, pub Publisher, source Source, window time.Duration) *Throttler {
	return &Throttler{log: log, lease: lease, pub: pub, source: source, window: window}
}

func throttleKey(raceID string) string { return "throttle:race:" + raceID }
func pendingKey(raceID string) string  { return throttleKey(raceID) + ":pending" }

// Notify sinaliza que o pool/odds da corrida mudou. Nunca bloqueia a
// colocação da aposta: falhas de cache ou de publicação são logadas e a
// atualização degrada para publicação imediata (perde frescor do
// throttle, não correção).
func (t *Throttler) Notify(ctx context.Context, raceID string) {
	opened, err := t.lease.Acquire(ctx, throttleKey(raceID), t.window)
	if err != nil {
		t.log.Warn("throttle lease unavailable, publishing unthrottled",
			zap.String("raceId", raceID), zap.Error(err))
		t.publishLatest(ctx, raceID)
		return
	}

	if opened {
		// IDLE -> THROTTLED: publica já, janela aberta pela própria marca
		t.publishLatest(ctx, raceID)
		return
	}

	// janela aberta: tenta reivindicar a publicação atrasada
	remaining, err := t.lease.RemainingTTL(ctx, throttleKey(raceID))
	if err != nil || remaining <= 0 {
		remaining = t.window
	}

	claimed, err := t.lease.Acquire(ctx, pendingKey(raceID), remaining+time.Second)
	if err != nil {
		t.log.Warn("trailing claim failed, publishing unthrottled",
			zap.String("raceId", raceID), zap.Error(err))
		t.publishLatest(ctx, raceID)
		return
	}
	if !claimed {
		// THROTTLED_PENDING: alguém já agendou, nada a fazer
		return
	}

	// THROTTLED -> THROTTLED_PENDING: este processo dispara ao fim da janela.
	// Se ele morrer antes, a marca expira via TTL e a próxima mudança
	// natural reabre o ciclo.
	time.AfterFunc(remaining, func() { t.fireTrailing(raceID) })
}

// fireTrailing executa a publicação atrasada: relê o estado corrente,
// publica, reabre a janela e limpa a pendência.
func (t *Throttler) fireTrailing(raceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.publishLatest(ctx, raceID)

	if err := t.lease.Renew(ctx, throttleKey(raceID), t.window); err != nil {
		t.log.Warn("throttle window reset failed", zap.String("raceId", raceID), zap.Error(err))
	}
	if err := t.lease.Release(ctx, pendingKey(raceID)); err != nil {
		// não fatal: o TTL da pendência expira sozinho
		t.log.Warn("trailing marker release failed", zap.String("raceId", raceID), zap.Error(err))
	}
}

func (t *Throttler) publishLatest(ctx context.Context, raceID string) {
	payload, err := t.source(ctx, raceID)
	if err != nil {
		t.log.Warn("odds snapshot failed", zap.String("raceId", raceID), zap.Error(err))
		return
	}
	if payload == nil {
		return
	}
	if err := t.pub.Publish(ctx, payload); err != nil {
		t.log.Warn("push publish failed", zap.String("raceId", raceID), zap.Error(err))
	}
}

// PublishNow contorna o throttle para eventos de ciclo de vida
// (fechamento, resultado, ranking), que nunca são coalescidos.
func (t *Throttler) PublishNow(ctx context.Context, payload []byte) error {
	return t.pub.Publish(ctx, payload)
}
