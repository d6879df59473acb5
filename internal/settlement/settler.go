package settlement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
	"github.com/keibalab/keiba-pool-poc/internal/odds"
	"github.com/keibalab/keiba-pool-poc/internal/racestore"
	"github.com/keibalab/keiba-pool-poc/internal/settlement/repo"
	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

// Settler liquida as apostas de uma corrida a partir do resultado
// oficial: decide HIT/LOST por modalidade, calcula o dividendo
// pari-mutuel de cada chave vencedora (com piso garantido) e credita os
// prêmios.
type Settler struct {
	Log   *zap.Logger
	Store *racestore.Store
	Repo  *repo.Postgres
}

// SettleRace processa um resultado de corrida. Corrida anulada estorna
// todas as apostas pendentes.
func (s *Settler) SettleRace(ctx context.Context, ev events.RaceResults) error {
	pending, err := s.Store.PendingBetsByRace(ctx, ev.RaceID)
	if err != nil {
		return fmt.Errorf("load pending bets: %w", err)
	}

	if ev.Canceled {
		for _, b := range pending {
			if err := s.Repo.SettleBet(ctx, b, betting.StatusRefunded, b.Stake); err != nil {
				return fmt.Errorf("refund bet %s: %w", b.ID, err)
			}
		}
		s.Log.Info("race canceled, bets refunded",
			zap.String("raceId", ev.RaceID), zap.Int("bets", len(pending)))
		return nil
	}

	// pools sobre o snapshot completo de apostas não estornadas, não só
	// as pendentes: reprocessamentos precisam ver o mesmo pool
	all, err := s.Store.BetsByRace(ctx, ev.RaceID)
	if err != nil {
		return fmt.Errorf("load race bets: %w", err)
	}
	pools := odds.Aggregate(all)

	ov, err := s.Store.OverridesByRace(ctx, ev.RaceID)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}

	result := betting.RaceResult{Order: ev.Order, FieldSize: ev.FieldSize}
	placerKeys := make([]string, 0, result.PayingPlaces())
	for _, h := range ev.Order[:result.PayingPlaces()] {
		placerKeys = append(placerKeys, odds.SelectionKey(betting.Place, []int{h}))
	}
	wideKeys := odds.WinningWideKeys(ev.Order)

	var hits, losses int
	for _, b := range pending {
		if !betting.IsWinningSelection(b.Type, b.Selections, result) {
			if err := s.Repo.SettleBet(ctx, b, betting.StatusLost, 0); err != nil {
				return fmt.Errorf("settle bet %s: %w", b.ID, err)
			}
			losses++
			continue
		}

		// 複勝 e ワイド têm várias chaves vencedoras na mesma corrida:
		// o pool é repartido entre elas, não pago inteiro a cada uma
		key := odds.SelectionKey(b.Type, b.Selections)
		var raw float64
		switch b.Type {
		case betting.Place:
			raw = odds.SettledSharedOdds(pools[b.Type], placerKeys, key)
		case betting.Wide:
			raw = odds.SettledSharedOdds(pools[b.Type], wideKeys, key)
		default:
			raw = odds.RawKeyOdds(pools[b.Type], key)
		}
		final := odds.FloorOdds(raw, ov[b.Type])
		payout := odds.Payout(b.Stake, final)

		if err := s.Repo.SettleBet(ctx, b, betting.StatusHit, payout); err != nil {
			return fmt.Errorf("settle bet %s: %w", b.ID, err)
		}
		hits++
	}

	s.Log.Info("race settled",
		zap.String("raceId", ev.RaceID),
		zap.Int("hits", hits),
		zap.Int("losses", losses),
	)
	return nil
}

// SettleBet5 liquida os bilhetes do acumulador quando os vencedores das
// cinco etapas são conhecidos. Sem bilhete vencedor o pote acumula.
func (s *Settler) SettleBet5(ctx context.Context, ev events.RaceResults) error {
	if len(ev.Firsts) != betting.Bet5Legs {
		return fmt.Errorf("bet5 result: expected %d firsts, got %d", betting.Bet5Legs, len(ev.Firsts))
	}
	var firsts [betting.Bet5Legs]int
	copy(firsts[:], ev.Firsts)

	tickets, err := s.Repo.TicketsByEvent(ctx, ev.EventID)
	if err != nil {
		return fmt.Errorf("load bet5 tickets: %w", err)
	}

	var winners []betting.Bet5Ticket
	for _, t := range tickets {
		if betting.Bet5IsWinner(t.Legs, firsts) {
			winners = append(winners, t)
		}
	}

	pot, err := s.Repo.Bet5Pot(ctx, ev.EventID)
	if err != nil {
		return fmt.Errorf("load bet5 pot: %w", err)
	}
	dividend := betting.Bet5Dividend(pot, len(winners))

	for _, t := range tickets {
		won := false
		var payout int64
		for _, w := range winners {
			if w.ID == t.ID {
				won, payout = true, dividend
				break
			}
		}
		if err := s.Repo.SettleTicket(ctx, t, won, payout); err != nil {
			return fmt.Errorf("settle ticket %s: %w", t.ID, err)
		}
	}

	if len(winners) > 0 {
		if err := s.Repo.ConsumeBet5Pot(ctx, ev.EventID); err != nil {
			return fmt.Errorf("consume pot: %w", err)
		}
	}

	s.Log.Info("bet5 settled",
		zap.String("eventId", ev.EventID),
		zap.Int("tickets", len(tickets)),
		zap.Int("winners", len(winners)),
		zap.Int64("dividend", dividend),
	)
	return nil
}

// ResultPayload monta a mensagem RACE_RESULT_UPDATED enviada aos clientes.
func ResultPayload(ev events.RaceResults) events.RaceResultUpdated {
	results := make([]events.ResultEntry, len(ev.Order))
	for i, h := range ev.Order {
		results[i] = events.ResultEntry{Position: i + 1, HorseNo: h}
	}
	return events.RaceResultUpdated{
		Type:      events.TypeRaceResultUpdated,
		RaceID:    ev.RaceID,
		Results:   results,
		Timestamp: time.Now().UnixMilli(),
	}
}
