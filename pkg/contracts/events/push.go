package events

// Mensagens empurradas aos clientes via canal push (Redis Pub/Sub -> WS).
// Todas são objetos JSON com o campo "type" discriminando o formato.
const (
	TypeRaceOddsUpdated   = "RACE_ODDS_UPDATED"
	TypeRaceClosed        = "RACE_CLOSED"
	TypeRaceReopened      = "RACE_REOPENED"
	TypeRaceFinalized     = "RACE_FINALIZED"
	TypeRaceBroadcast     = "RACE_BROADCAST"
	TypeRankingUpdated    = "RANKING_UPDATED"
	TypeRaceResultUpdated = "RACE_RESULT_UPDATED"
)

// Faixa de odds de colocação (複勝): mínimo e máximo possíveis conforme
// quais outros cavalos também se colocarem.
type PlaceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Carga de RACE_ODDS_UPDATED. As chaves dos mapas são números de cavalo.
type OddsData struct {
	WinOdds   map[int]float64    `json:"winOdds"`
	PlaceOdds map[int]PlaceRange `json:"placeOdds"`
	UpdatedAt string             `json:"updatedAt"` // ISO8601
}

type RaceOddsUpdated struct {
	Type   string   `json:"type"` // RACE_ODDS_UPDATED
	RaceID string   `json:"raceId"`
	Data   OddsData `json:"data"`
}

// Eventos de ciclo de vida sem carga além do raceId
// (RACE_CLOSED, RACE_REOPENED, RACE_FINALIZED, RACE_BROADCAST).
type RaceLifecycle struct {
	Type   string `json:"type"`
	RaceID string `json:"raceId"`
}

type RankingUpdated struct {
	Type    string `json:"type"` // RANKING_UPDATED
	EventID string `json:"eventId"`
	Mode    string `json:"mode"` // HIDDEN | ANONYMOUS | FULL
}

type ResultEntry struct {
	Position int `json:"position"`
	HorseNo  int `json:"horseNo"`
}

type RaceResultUpdated struct {
	Type      string        `json:"type"` // RACE_RESULT_UPDATED
	RaceID    string        `json:"raceId"`
	Results   []ResultEntry `json:"results"`
	Timestamp int64         `json:"timestamp"` // epoch-ms
}

// Envelope usado só para descobrir o "type" antes de decodificar a carga.
type PushEnvelope struct {
	Type   string `json:"type"`
	RaceID string `json:"raceId,omitempty"`
}
