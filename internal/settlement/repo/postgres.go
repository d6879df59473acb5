package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
)

// Postgres implementa o lado de escrita da liquidação: status das
// apostas, créditos de prêmio/estorno e bilhetes BET5.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// SettleBet fecha uma aposta com o status final e credita o valor devido
// (prêmio em HIT, estorno em REFUNDED) na mesma transação. Apostas já
// liquidadas não são tocadas: o UPDATE é condicionado a PENDING.
func (p *Postgres) SettleBet(ctx context.Context, b betting.Bet, status string, credit int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bets SET status=$1, payout=$2, updated_at=now()
		 WHERE id=$3 AND status='PENDING'`,
		status, credit, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// outra instância já liquidou; reprocessamento é idempotente
		return tx.Commit()
	}

	if credit > 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO balances (user_id, balance, updated_at)
			VALUES ($1,$2,now())
			ON CONFLICT (user_id) DO UPDATE
			SET balance = balances.balance + EXCLUDED.balance, updated_at = now()`,
			b.UserID, credit); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bet_transactions (bet_id, from_status, to_status, credit)
		VALUES ($1,'PENDING',$2,$3)`,
		b.ID, status, credit); err != nil {
		return err
	}

	return tx.Commit()
}

// TicketsByEvent carrega os bilhetes BET5 ainda não liquidados do evento.
func (p *Postgres) TicketsByEvent(ctx context.Context, eventID string) ([]betting.Bet5Ticket, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, legs, stake
		FROM bet5_tickets WHERE event_id=$1 AND settled_at IS NULL`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []betting.Bet5Ticket
	for rows.Next() {
		var (
			t    betting.Bet5Ticket
			legs []byte
		)
		if err := rows.Scan(&t.ID, &t.EventID, &t.UserID, &legs, &t.Stake); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(legs, &t.Legs); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Bet5Pot retorna o pote acumulado do evento.
func (p *Postgres) Bet5Pot(ctx context.Context, eventID string) (int64, error) {
	var pot int64
	err := p.db.QueryRowContext(ctx,
		`SELECT pot FROM bet5_pots WHERE event_id=$1`, eventID).Scan(&pot)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return pot, err
}

// SettleTicket fecha um bilhete BET5, creditando o dividendo ao vencedor.
func (p *Postgres) SettleTicket(ctx context.Context, t betting.Bet5Ticket, won bool, payout int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bet5_tickets SET won=$1, payout=$2, settled_at=now()
		WHERE id=$3 AND settled_at IS NULL`,
		won, payout, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tx.Commit()
	}

	if payout > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE balances SET balance = balance + $1, updated_at = now()
			WHERE user_id=$2`,
			payout, t.UserID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ConsumeBet5Pot zera o pote após a distribuição. Sem vencedores o pote
// não é tocado e acumula para a próxima rodada.
func (p *Postgres) ConsumeBet5Pot(ctx context.Context, eventID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE bet5_pots SET pot = 0 WHERE event_id=$1`, eventID)
	return err
}
