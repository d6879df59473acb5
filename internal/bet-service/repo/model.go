package repo

// GuaranteedOdds é o piso de odds configurado pela administração para
// uma corrida e modalidade. finalOdds = max(rawOdds, MinOdds).
type GuaranteedOdds struct {
	RaceID  string  `json:"raceId"`
	BetType string  `json:"betType"`
	MinOdds float64 `json:"minOdds"`
}
