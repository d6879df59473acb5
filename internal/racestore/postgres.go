package racestore

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
	"github.com/keibalab/keiba-pool-poc/internal/odds"
)

// Store é o lado de leitura compartilhado pelos workers e pelo
// odds-service: snapshots de apostas e pisos de odds de uma corrida.
// Cada recomputação lê um snapshot fresco e independente; nada é
// mantido incrementalmente.
type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

// BetsByRace carrega todas as apostas de uma corrida. Estornadas vêm
// junto: o agregador de pool é quem as ignora.
func (s *Store) BetsByRace(ctx context.Context, raceID string) ([]betting.Bet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, race_id, user_id, bet_type, selections, stake, status
		FROM bets WHERE race_id=$1`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scan(rows)
}

// PendingBetsByRace carrega só o que ainda não foi liquidado.
func (s *Store) PendingBetsByRace(ctx context.Context, raceID string) ([]betting.Bet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, race_id, user_id, bet_type, selections, stake, status
		FROM bets WHERE race_id=$1 AND status='PENDING'`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scan(rows)
}

// FieldSize devolve o tamanho do campo cadastrado para a corrida, ou
// zero quando a corrida não foi registrada. O chamador decide o
// fallback de exibição.
func (s *Store) FieldSize(ctx context.Context, raceID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT field_size FROM races WHERE race_id=$1`, raceID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// OverridesByRace carrega os pisos de odds garantidas da corrida.
func (s *Store) OverridesByRace(ctx context.Context, raceID string) (odds.Overrides, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bet_type, min_odds FROM odds_overrides WHERE race_id=$1`, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ov := make(odds.Overrides)
	for rows.Next() {
		var (
			tag string
			min float64
		)
		if err := rows.Scan(&tag, &min); err != nil {
			return nil, err
		}
		t, err := betting.ParseBetType(tag)
		if err != nil {
			continue // tipo desconhecido no banco não derruba o cálculo
		}
		ov[t] = min
	}
	return ov, rows.Err()
}

func scan(rows *sql.Rows) ([]betting.Bet, error) {
	var out []betting.Bet
	for rows.Next() {
		var (
			b       betting.Bet
			typeTag string
			sel     []int64
		)
		if err := rows.Scan(&b.ID, &b.RaceID, &b.UserID, &typeTag, pq.Array(&sel), &b.Stake, &b.Status); err != nil {
			return nil, err
		}
		t, err := betting.ParseBetType(typeTag)
		if err != nil {
			return nil, err
		}
		b.Type = t
		b.Selections = make([]int, len(sel))
		for i, v := range sel {
			b.Selections[i] = int(v)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
