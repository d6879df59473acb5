package events

// Tipos de mensagem do tópico "race_results".
const (
	ResultKindRace = "RACE"
	ResultKindBet5 = "BET5"
)

// Evento publicado no tópico "race_results" quando o resultado oficial
// de uma corrida é confirmado. Order traz os números dos cavalos na
// ordem de chegada (Order[0] = vencedor). Canceled indica corrida
// anulada: todas as apostas pendentes viram REFUNDED.
type RaceResults struct {
	Kind      string `json:"kind"` // RACE | BET5
	RaceID    string `json:"race_id,omitempty"`
	Order     []int  `json:"order,omitempty"`
	FieldSize int    `json:"field_size,omitempty"`
	Canceled  bool   `json:"canceled,omitempty"`

	// Campos usados quando Kind == BET5 (acumulador de 5 corridas)
	EventID  string `json:"event_id,omitempty"`
	Firsts   []int  `json:"firsts,omitempty"` // vencedor de cada uma das 5 etapas
	TsUnixMs int64  `json:"ts_unix_ms"`
}
