package betting

// Bet5Legs é o número de etapas do acumulador BET5.
const Bet5Legs = 5

// Bet5Ticket é um bilhete do acumulador de 5 corridas: um conjunto de
// candidatos por etapa, todos não vazios. Total de combinações = produto
// dos tamanhos dos cinco conjuntos.
type Bet5Ticket struct {
	ID      string          `json:"id"`
	EventID string          `json:"eventId"`
	UserID  string          `json:"userId"`
	Legs    [Bet5Legs][]int `json:"legs"`
	Stake   int64           `json:"stake"`
	Won     bool            `json:"won"`
	Payout  int64           `json:"payout"`
}

// Bet5CombinationCount conta as combinações compradas por um bilhete.
func Bet5CombinationCount(legs [Bet5Legs][]int) int {
	n := 1
	for _, leg := range legs {
		n *= len(leg)
	}
	return n
}

// Bet5Dividend divide o pote entre os vencedores, arredondando para
// baixo. Sem vencedores não há o que distribuir: devolve 0 (o pote
// acumula para a próxima rodada).
func Bet5Dividend(pot int64, winners int) int64 {
	if winners <= 0 {
		return 0
	}
	return pot / int64(winners)
}

// Bet5IsWinner verifica se o bilhete acertou: o vencedor de cada etapa
// precisa constar no conjunto candidato correspondente. Não há crédito
// parcial.
func Bet5IsWinner(legs [Bet5Legs][]int, firsts [Bet5Legs]int) bool {
	for i, leg := range legs {
		found := false
		for _, h := range leg {
			if h == firsts[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
