package betting

import (
	"encoding/json"
	"fmt"
)

// BetType enumera as oito modalidades de aposta. Enumeração fechada:
// aridade, rótulo e ordenação são funções totais sobre as variantes,
// sem tabelas de lookup por string.
type BetType int

const (
	Win             BetType = iota // 単勝: vencedor
	Place                          // 複勝: colocado
	BracketQuinella                // 枠連: dupla de balizas, sem ordem
	Quinella                       // 馬連: dupla de cavalos, sem ordem
	Wide                           // ワイド: ambos entre os 3 primeiros
	Exacta                         // 馬単: dupla exata, com ordem
	Trio                           // 3連複: trio, sem ordem
	Trifecta                       // 3連単: trio exato, com ordem
)

// AllBetTypes na ordem canônica de exibição.
var AllBetTypes = []BetType{Win, Place, BracketQuinella, Quinella, Wide, Exacta, Trio, Trifecta}

// Arity devolve quantos números compõem uma seleção da modalidade.
func (t BetType) Arity() int {
	switch t {
	case Win, Place:
		return 1
	case BracketQuinella, Quinella, Wide, Exacta:
		return 2
	case Trio, Trifecta:
		return 3
	}
	return 0
}

// Ordered indica se a ordem da seleção importa na liquidação.
func (t BetType) Ordered() bool {
	return t == Exacta || t == Trifecta
}

// Label devolve o rótulo exibido aos usuários.
func (t BetType) Label() string {
	switch t {
	case Win:
		return "単勝"
	case Place:
		return "複勝"
	case BracketQuinella:
		return "枠連"
	case Quinella:
		return "馬連"
	case Wide:
		return "ワイド"
	case Exacta:
		return "馬単"
	case Trio:
		return "3連複"
	case Trifecta:
		return "3連単"
	}
	return "?"
}

// String devolve a tag estável usada em JSON e no banco.
func (t BetType) String() string {
	switch t {
	case Win:
		return "WIN"
	case Place:
		return "PLACE"
	case BracketQuinella:
		return "BRACKET_QUINELLA"
	case Quinella:
		return "QUINELLA"
	case Wide:
		return "WIDE"
	case Exacta:
		return "EXACTA"
	case Trio:
		return "TRIO"
	case Trifecta:
		return "TRIFECTA"
	}
	return "UNKNOWN"
}

// ParseBetType converte a tag estável de volta para a variante.
func ParseBetType(s string) (BetType, error) {
	for _, t := range AllBetTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown bet type %q", s)
}

func (t BetType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *BetType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseBetType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Status de uma aposta. Imutável após liquidação.
const (
	StatusPending  = "PENDING"
	StatusHit      = "HIT"
	StatusLost     = "LOST"
	StatusRefunded = "REFUNDED"
)

// Bet é uma aposta individual já expandida (uma combinação por linha).
// Selections tem comprimento igual à aridade da modalidade; a ordem só
// é significativa para Exacta/Trifecta.
type Bet struct {
	ID         string  `json:"id"`
	RaceID     string  `json:"raceId"`
	UserID     string  `json:"userId"`
	Type       BetType `json:"betType"`
	Selections []int   `json:"selections"`
	Stake      int64   `json:"stake"`
	Status     string  `json:"status"`
}
