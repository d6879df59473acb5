package betting

import (
	"errors"
	"sort"
)

// MinUnitStake é o valor mínimo por combinação, em ienes.
const MinUnitStake = 100

// Erros de validação de submissão. Mensagens estáveis exibidas ao usuário;
// o chamador compara com errors.Is e decide se reapresenta o formulário.
var (
	ErrNoSelection         = errors.New("馬を選択してください")
	ErrStakeBelowMinimum   = errors.New("金額は100円以上で入力してください")
	ErrInsufficientBalance = errors.New("残高が不足しています")
	ErrDuplicateHorse      = errors.New("同じ馬は一度しか選択できません")
)

// ValidateSubmission valida uma submissão de formação antes da expansão.
// betCount é o número de combinações compradas, unitStake o valor por
// combinação, totalStake = betCount × unitStake e balance o saldo atual.
func ValidateSubmission(betCount int, unitStake, totalStake, balance int64) error {
	if betCount == 0 {
		return ErrNoSelection
	}
	if unitStake < MinUnitStake {
		return ErrStakeBelowMinimum
	}
	if totalStake > balance {
		return ErrInsufficientBalance
	}
	return nil
}

// CombinationCount conta as combinações de uma formação: produto dos
// tamanhos dos conjuntos candidatos por posição. Zero quando nada foi
// selecionado em alguma posição.
func CombinationCount(positions [][]int) int {
	if len(positions) == 0 {
		return 0
	}
	n := 1
	for _, set := range positions {
		n *= len(set)
	}
	return n
}

// TotalStake calcula o custo de uma formação.
func TotalStake(positions [][]int, unitStake int64) int64 {
	return int64(CombinationCount(positions)) * unitStake
}

// ExpandFormation expande o produto cartesiano dos conjuntos candidatos
// em combinações individuais, na ordem posicional. Cada combinação sai
// como uma cópia independente.
func ExpandFormation(positions [][]int) [][]int {
	count := CombinationCount(positions)
	if count == 0 {
		return nil
	}

	out := make([][]int, 0, count)
	combo := make([]int, len(positions))

	var rec func(pos int)
	rec = func(pos int) {
		if pos == len(positions) {
			out = append(out, append([]int(nil), combo...))
			return
		}
		for _, v := range positions[pos] {
			combo[pos] = v
			rec(pos + 1)
		}
	}
	rec(0)

	return out
}

// ValidateCombinations rejeita combinações degeneradas que repetem o
// mesmo cavalo em posições diferentes. Não se aplica ao 枠連, onde a
// mesma baliza pode aparecer duas vezes legitimamente.
func ValidateCombinations(t BetType, combos [][]int) error {
	if t == BracketQuinella {
		return nil
	}
	for _, combo := range combos {
		seen := make(map[int]struct{}, len(combo))
		for _, v := range combo {
			if _, dup := seen[v]; dup {
				return ErrDuplicateHorse
			}
			seen[v] = struct{}{}
		}
	}
	return nil
}

// FormationRow é a forma compacta de exibição de um grupo de apostas.
type FormationRow struct {
	Type      BetType `json:"betType"`
	Positions [][]int `json:"positions"`
	BetCount  int     `json:"betCount"`
	HasHit    bool    `json:"hasHit"`
}

// CompressBets reconstrói, por modalidade, os conjuntos candidatos mínimos
// que reproduziriam as apostas como uma única formação: união dos valores
// vistos em cada posição, ordenada de forma crescente. A compressão é
// propositalmente com perda quando as apostas não formam um produto
// cartesiano retangular (combinações avulsas colapsam numa única linha
// aproximada); sempre sai exatamente uma linha por modalidade presente.
func CompressBets(bets []Bet) []FormationRow {
	type acc struct {
		sets  []map[int]struct{}
		count int
		hit   bool
	}
	byType := make(map[BetType]*acc)

	for _, b := range bets {
		a, ok := byType[b.Type]
		if !ok {
			a = &acc{sets: make([]map[int]struct{}, b.Type.Arity())}
			for i := range a.sets {
				a.sets[i] = make(map[int]struct{})
			}
			byType[b.Type] = a
		}
		for i, v := range b.Selections {
			if i < len(a.sets) {
				a.sets[i][v] = struct{}{}
			}
		}
		a.count++
		if b.Status == StatusHit {
			a.hit = true
		}
	}

	var rows []FormationRow
	for _, t := range AllBetTypes {
		a, ok := byType[t]
		if !ok {
			continue
		}
		positions := make([][]int, len(a.sets))
		for i, set := range a.sets {
			vals := make([]int, 0, len(set))
			for v := range set {
				vals = append(vals, v)
			}
			sort.Ints(vals)
			positions[i] = vals
		}
		rows = append(rows, FormationRow{
			Type:      t,
			Positions: positions,
			BetCount:  a.count,
			HasHit:    a.hit,
		})
	}
	return rows
}
