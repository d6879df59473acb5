package betting

// RaceResult é o resultado oficial usado na liquidação. Order traz os
// números dos cavalos na ordem de chegada (Order[0] = vencedor).
type RaceResult struct {
	Order     []int
	FieldSize int
}

// PayingPlaces segue a convenção JRA para o 複勝: 2 colocações pagas em
// páreos com menos de 8 corredores, 3 a partir de 8.
func (r RaceResult) PayingPlaces() int {
	n := 3
	if r.FieldSize < 8 {
		n = 2
	}
	if n > len(r.Order) {
		n = len(r.Order)
	}
	return n
}

// IsWinningSelection decide se uma seleção da modalidade dada acerta o
// resultado. Para BracketQuinella a seleção contém números de baliza e a
// comparação é feita contra as balizas dos dois primeiros colocados.
func IsWinningSelection(t BetType, sel []int, r RaceResult) bool {
	if len(sel) != t.Arity() || len(r.Order) < t.Arity() {
		return false
	}

	switch t {
	case Win:
		return sel[0] == r.Order[0]
	case Place:
		return inTopN(sel[0], r.Order, r.PayingPlaces())
	case Quinella:
		return sameSet(sel, r.Order[:2])
	case Exacta:
		return sel[0] == r.Order[0] && sel[1] == r.Order[1]
	case Wide:
		if len(r.Order) < 3 || sel[0] == sel[1] {
			return false
		}
		return inTopN(sel[0], r.Order, 3) && inTopN(sel[1], r.Order, 3)
	case BracketQuinella:
		brackets := []int{
			BracketNumber(r.Order[0], r.FieldSize),
			BracketNumber(r.Order[1], r.FieldSize),
		}
		return sameSet(sel, brackets)
	case Trio:
		return sameSet(sel, r.Order[:3])
	case Trifecta:
		return sel[0] == r.Order[0] && sel[1] == r.Order[1] && sel[2] == r.Order[2]
	}
	return false
}

func inTopN(horse int, order []int, n int) bool {
	if n > len(order) {
		n = len(order)
	}
	for _, h := range order[:n] {
		if h == horse {
			return true
		}
	}
	return false
}

// sameSet compara duas seleções ignorando ordem, como multiconjunto:
// uma seleção degenerada como [7,7] não casa com a chegada [7,3].
func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[int]int, len(a))
	for _, x := range a {
		counts[x]++
	}
	for _, y := range b {
		counts[y]--
		if counts[y] < 0 {
			return false
		}
	}
	return true
}
