package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
)

// Postgres implementa o lado de escrita da colocação de apostas
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Balance retorna o saldo atual do usuário (0 se ainda não tem conta).
func (p *Postgres) Balance(ctx context.Context, userID string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE user_id=$1`, userID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return bal, err
}

// InsertFormation grava uma formação já expandida: uma linha PENDING por
// combinação, debitando o custo total do saldo na mesma transação. Lock
// pessimista na linha do saldo para serializar débitos concorrentes.
func (p *Postgres) InsertFormation(
	ctx context.Context,
	userID, raceID string,
	t betting.BetType,
	combos [][]int,
	unitStake int64,
) ([]string, error) {
	total := int64(len(combos)) * unitStake

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var bal int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE user_id=$1 FOR UPDATE`, userID).Scan(&bal)
	if err == sql.ErrNoRows {
		return nil, ErrInsufficientFunds
	}
	if err != nil {
		return nil, err
	}
	if bal < total {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE balances SET balance = balance - $1, updated_at = now() WHERE user_id=$2`,
		total, userID); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bets (id, race_id, user_id, bet_type, selections, stake, status)
		VALUES ($1,$2,$3,$4,$5,$6,'PENDING')`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(combos))
	for _, sel := range combos {
		id := uuid.NewString()
		if _, err := stmt.ExecContext(ctx, id, raceID, userID, t.String(), pq.Array(sel), unitStake); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetBet carrega uma aposta pelo id.
func (p *Postgres) GetBet(ctx context.Context, betID string) (betting.Bet, error) {
	var (
		b       betting.Bet
		typeTag string
		sel     []int64
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, race_id, user_id, bet_type, selections, stake, status
		FROM bets WHERE id=$1`, betID).
		Scan(&b.ID, &b.RaceID, &b.UserID, &typeTag, pq.Array(&sel), &b.Stake, &b.Status)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	if err != nil {
		return b, err
	}
	if b.Type, err = betting.ParseBetType(typeTag); err != nil {
		return b, err
	}
	b.Selections = toInts(sel)
	return b, nil
}

// UserRaceBets lista as apostas de um usuário numa corrida, para a
// exibição compacta em formações.
func (p *Postgres) UserRaceBets(ctx context.Context, userID, raceID string) ([]betting.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, race_id, user_id, bet_type, selections, stake, status
		FROM bets WHERE user_id=$1 AND race_id=$2
		ORDER BY created_at, id`, userID, raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBets(rows)
}

// UpsertOverride grava (ou atualiza) o piso de odds garantidas de uma
// corrida/modalidade.
func (p *Postgres) UpsertOverride(ctx context.Context, o GuaranteedOdds) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO odds_overrides (race_id, bet_type, min_odds)
		VALUES ($1,$2,$3)
		ON CONFLICT (race_id, bet_type) DO UPDATE SET min_odds = EXCLUDED.min_odds`,
		o.RaceID, o.BetType, o.MinOdds)
	return err
}

// UpsertRace cadastra a corrida com o tamanho do campo. O tamanho
// alimenta a escolha de colocações pagas na exibição do 複勝.
func (p *Postgres) UpsertRace(ctx context.Context, raceID string, fieldSize int) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO races (race_id, field_size)
		VALUES ($1,$2)
		ON CONFLICT (race_id) DO UPDATE SET field_size = EXCLUDED.field_size`,
		raceID, fieldSize)
	return err
}

// CreateBet5Ticket grava um bilhete BET5 e soma o valor apostado ao pote
// do evento, debitando o saldo na mesma transação.
func (p *Postgres) CreateBet5Ticket(ctx context.Context, t *betting.Bet5Ticket) (string, error) {
	legs, err := json.Marshal(t.Legs)
	if err != nil {
		return "", err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var bal int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM balances WHERE user_id=$1 FOR UPDATE`, t.UserID).Scan(&bal)
	if err == sql.ErrNoRows || (err == nil && bal < t.Stake) {
		return "", ErrInsufficientFunds
	}
	if err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE balances SET balance = balance - $1, updated_at = now() WHERE user_id=$2`,
		t.Stake, t.UserID); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bet5_tickets (id, event_id, user_id, legs, stake, won, payout)
		VALUES ($1,$2,$3,$4,$5,false,0)`,
		id, t.EventID, t.UserID, legs, t.Stake); err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bet5_pots (event_id, pot)
		VALUES ($1,$2)
		ON CONFLICT (event_id) DO UPDATE SET pot = bet5_pots.pot + EXCLUDED.pot`,
		t.EventID, t.Stake); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// InitBet5Pot registra o pote inicial (carryover) de um evento BET5.
func (p *Postgres) InitBet5Pot(ctx context.Context, eventID string, carryover int64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet5_pots (event_id, pot)
		VALUES ($1,$2)
		ON CONFLICT (event_id) DO UPDATE SET pot = bet5_pots.pot + EXCLUDED.pot`,
		eventID, carryover)
	return err
}

func scanBets(rows *sql.Rows) ([]betting.Bet, error) {
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
		b.Selections = toInts(sel)
		out = append(out, b)
	}
	return out, rows.Err()
}

func toInts(in []int64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
