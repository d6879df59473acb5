package odds

import (
	"sort"
	"strconv"
	"strings"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
)

// Pool mapeia chave de seleção normalizada -> total apostado, para uma
// corrida e uma modalidade. Derivado, nunca armazenado: recomputado a
// cada mutação a partir do snapshot de apostas para eliminar drift.
type Pool map[string]int64

// Pools agrupa os pools de uma corrida por modalidade.
type Pools map[betting.BetType]Pool

// SelectionKey normaliza uma seleção para chave de pool: ordena a tupla
// quando a modalidade ignora ordem, preserva quando não, e junta com "-".
func SelectionKey(t betting.BetType, sel []int) string {
	nums := sel
	if !t.Ordered() && len(sel) > 1 {
		nums = append([]int(nil), sel...)
		sort.Ints(nums)
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

// Aggregate varre as apostas de uma corrida e soma os valores apostados
// por chave normalizada, modalidade a modalidade. Apostas estornadas
// ficam fora do pool. Linear no número de apostas.
func Aggregate(bets []betting.Bet) Pools {
	pools := make(Pools)
	for _, b := range bets {
		if b.Status == betting.StatusRefunded {
			continue
		}
		p, ok := pools[b.Type]
		if !ok {
			p = make(Pool)
			pools[b.Type] = p
		}
		p[SelectionKey(b.Type, b.Selections)] += b.Stake
	}
	return pools
}

// Total soma o pool inteiro de uma modalidade.
func (p Pool) Total() int64 {
	var t int64
	for _, v := range p {
		t += v
	}
	return t
}
