package dto

// Submissão de formação: conjuntos candidatos por posição e valor por
// combinação. Para modalidades sem ordem o cliente envia um conjunto por
// posição do mesmo jeito (a normalização acontece no pool).
type PlaceFormationRequest struct {
	UserID    string  `json:"userId"`
	BetType   string  `json:"betType"`   // tag estável: WIN, QUINELLA, ...
	Positions [][]int `json:"positions"` // um conjunto por posição
	UnitStake int64   `json:"unitStake"` // ienes por combinação
}

// Criação de bilhete BET5: cinco conjuntos candidatos, um por etapa.
type CreateBet5Request struct {
	UserID  string  `json:"userId"`
	EventID string  `json:"eventId"`
	Legs    [][]int `json:"legs"` // exatamente 5, todos não vazios
	Stake   int64   `json:"stake"`
}

// Cadastro da corrida com o tamanho do campo.
type RegisterRaceRequest struct {
	FieldSize int `json:"fieldSize"`
}

// Piso de odds garantidas (entrada consumida da superfície admin).
type SetOverrideRequest struct {
	BetType string  `json:"betType"`
	MinOdds float64 `json:"minOdds"`
}
