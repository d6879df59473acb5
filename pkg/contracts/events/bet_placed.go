package events

// Evento publicado no tópico "bet_placed" a cada submissão de formação.
// O odds-worker só precisa do RaceID para recomputar o pool; os demais
// campos existem para auditoria e métricas.
type BetPlaced struct {
	RaceID       string `json:"race_id"`
	UserID       string `json:"user_id"`
	BetType      string `json:"bet_type"`
	Combinations int    `json:"combinations"`
	UnitStake    int64  `json:"unit_stake"`
	TotalStake   int64  `json:"total_stake"`
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
