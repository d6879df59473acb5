package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
	"github.com/keibalab/keiba-pool-poc/internal/broadcast"
	"github.com/keibalab/keiba-pool-poc/internal/odds"
	"github.com/keibalab/keiba-pool-poc/internal/odds-worker/cache"
	"github.com/keibalab/keiba-pool-poc/internal/racestore"
	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

// Worker consome mutações de aposta e eventos de controle, recomputa o
// pool e as odds da corrida e entrega o resultado ao throttler de
// broadcast. Callbacks de métricas podem ser usadas para monitorar cada
// etapa.
type Worker struct {
	Log       *zap.Logger
	Store     *racestore.Store
	Cache     *cache.RedisCache
	Throttler *broadcast.Throttler

	// colocações pagas no 複勝, conforme o tamanho do páreo
	PayingPlacesSmall int
	PayingPlaces      int

	OnConsumed func()       // métricas (counter++)
	OnComputed func()       // métricas
	OnError    func(string) // métricas por fase
}

// Snapshot recomputa odds da corrida a partir de um snapshot fresco de
// apostas e devolve a carga RACE_ODDS_UPDATED serializada, atualizando o
// cache de odds correntes. É também a Source do throttler: a publicação
// atrasada relê por aqui, nunca usa estado do momento do agendamento.
func (w *Worker) Snapshot(ctx context.Context, raceID string) ([]byte, error) {
	bets, err := w.Store.BetsByRace(ctx, raceID)
	if err != nil {
		return nil, err
	}
	ov, err := w.Store.OverridesByRace(ctx, raceID)
	if err != nil {
		return nil, err
	}

	pools := odds.Aggregate(bets)

	win := odds.ApplyWinFloor(odds.CalcWinOdds(pools[betting.Win]), ov)

	// colocações pagas pelo tamanho real do campo, não pelo número de
	// cavalos já apostados; sem cadastro cai no heurístico do pool
	fieldSize, err := w.Store.FieldSize(ctx, raceID)
	if err != nil {
		w.Log.Warn("field size lookup failed", zap.String("raceId", raceID), zap.Error(err))
		fieldSize = 0
	}
	places := odds.PayingPlacesFor(fieldSize, len(pools[betting.Place]), w.PayingPlacesSmall, w.PayingPlaces)
	place := odds.ApplyPlaceFloor(odds.CalcPlaceOdds(pools[betting.Place], places), ov)

	msg := events.RaceOddsUpdated{
		Type:   events.TypeRaceOddsUpdated,
		RaceID: raceID,
		Data: events.OddsData{
			WinOdds:   win,
			PlaceOdds: place,
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	// falha de cache não bloqueia o broadcast
	if err := w.Cache.SetCurrent(ctx, raceID, payload); err != nil {
		w.Log.Warn("odds cache set failed", zap.String("raceId", raceID), zap.Error(err))
		if w.OnError != nil {
			w.OnError("cache")
		}
	}

	return payload, nil
}

// RunBets é o loop de consumo do tópico bet_placed: cada mutação vira
// uma notificação ao throttler, que recomputa via Snapshot.
func (w *Worker) RunBets(ctx context.Context, r *kafka.Reader) error {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.Log.Warn("kafka read failed", zap.Error(err))
			if w.OnError != nil {
				w.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if w.OnConsumed != nil {
			w.OnConsumed()
		}

		var ev events.BetPlaced
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			w.Log.Warn("invalid bet_placed message", zap.Error(err))
			if w.OnError != nil {
				w.OnError("decode")
			}
			continue
		}

		w.Throttler.Notify(ctx, ev.RaceID)
		if w.OnComputed != nil {
			w.OnComputed()
		}
	}
}

// RunControl consome o tópico race_control: eventos de ciclo de vida
// passam direto, sem throttle nem coalescência.
func (w *Worker) RunControl(ctx context.Context, r *kafka.Reader) error {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.Log.Warn("kafka read failed", zap.Error(err))
			if w.OnError != nil {
				w.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		var ev events.RaceControl
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			w.Log.Warn("invalid race_control message", zap.Error(err))
			if w.OnError != nil {
				w.OnError("decode")
			}
			continue
		}

		pushType, ok := controlPushType(ev.Action)
		if !ok {
			w.Log.Warn("unknown control action", zap.String("action", ev.Action))
			continue
		}
		payload, _ := json.Marshal(events.RaceLifecycle{Type: pushType, RaceID: ev.RaceID})
		if err := w.Throttler.PublishNow(ctx, payload); err != nil {
			w.Log.Warn("control publish failed", zap.String("raceId", ev.RaceID), zap.Error(err))
			if w.OnError != nil {
				w.OnError("publish")
			}
		}
	}
}

func controlPushType(action string) (string, bool) {
	switch action {
	case events.ControlClose:
		return events.TypeRaceClosed, true
	case events.ControlReopen:
		return events.TypeRaceReopened, true
	case events.ControlFinalize:
		return events.TypeRaceFinalized, true
	case events.ControlBroadcast:
		return events.TypeRaceBroadcast, true
	}
	return "", false
}
