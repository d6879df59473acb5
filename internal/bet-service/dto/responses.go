package dto

import "github.com/keibalab/keiba-pool-poc/internal/betting"

type PlaceFormationResponse struct {
	BetIDs       []string `json:"betIds"`
	Combinations int      `json:"combinations"`
	TotalStake   int64    `json:"totalStake"`
	Status       string   `json:"status"` // PENDING
	Message      string   `json:"message,omitempty"`
}

type BetStatusResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"`
	Payout int64  `json:"payout,omitempty"`
}

// Exibição compacta: as apostas do usuário na corrida, recomprimidas em
// uma linha de formação por modalidade.
type UserRaceBetsResponse struct {
	RaceID string                 `json:"raceId"`
	Rows   []betting.FormationRow `json:"rows"`
}

type CreateBet5Response struct {
	TicketID     string `json:"ticketId"`
	Combinations int    `json:"combinations"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
