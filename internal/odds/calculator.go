package odds

import (
	"math"
	"sort"
	"strconv"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

// Overrides são os pisos de odds garantidas configurados pela
// administração, por modalidade, para uma corrida.
type Overrides map[betting.BetType]float64

// WinOdds mapeia número do cavalo -> multiplicador pari-mutuel.
type WinOdds map[int]float64

// PlaceOdds mapeia número do cavalo -> faixa {min,max} do 複勝.
type PlaceOdds map[int]events.PlaceRange

// CalcWinOdds converte o pool de vencedor em odds públicas: razão entre
// o pool total e o montante no cavalo. Cavalo sem aposta não tem odd
// (ausência, não zero). Vale tanto para o cálculo provisório antes do
// fechamento quanto para o final: a função só depende do snapshot do pool.
func CalcWinOdds(pool Pool) WinOdds {
	total := pool.Total()
	out := make(WinOdds, len(pool))
	if total == 0 {
		return out
	}
	for key, backing := range pool {
		if backing <= 0 {
			continue
		}
		horse, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[horse] = float64(total) / float64(backing)
	}
	return out
}

// CalcPlaceOdds produz a faixa {min,max} do 複勝 por cavalo. O líquido do
// pool (total menos o montante dos colocados) é dividido igualmente entre
// as colocações pagas, então o dividendo de um cavalo depende de quais
// outros também se colocarem: o mínimo assume os companheiros mais
// apostados, o máximo os menos apostados.
func CalcPlaceOdds(pool Pool, payingPlaces int) PlaceOdds {
	out := make(PlaceOdds, len(pool))
	if payingPlaces < 1 {
		return out
	}
	total := pool.Total()
	if total == 0 {
		return out
	}

	entries := make([]poolEntry, 0, len(pool))
	for key, backing := range pool {
		horse, err := strconv.Atoi(key)
		if err != nil || backing <= 0 {
			continue
		}
		entries = append(entries, poolEntry{horse, backing})
	}
	// decrescente por montante apostado
	sort.Slice(entries, func(i, j int) bool { return entries[i].backing > entries[j].backing })

	companions := payingPlaces - 1
	for idx, e := range entries {
		heaviest := sumExcluding(entries, idx, companions, false)
		lightest := sumExcluding(entries, idx, companions, true)

		out[e.horse] = events.PlaceRange{
			Min: placeRatio(total, e.backing, heaviest, payingPlaces),
			Max: placeRatio(total, e.backing, lightest, payingPlaces),
		}
	}
	return out
}

// placeRatio calcula o multiplicador do 複勝 com devolução do valor
// apostado: 1 + líquido/colocações sobre o montante do cavalo.
func placeRatio(total, backing, companionSum int64, places int) float64 {
	net := total - backing - companionSum
	if net < 0 {
		net = 0
	}
	return 1 + float64(net)/(float64(places)*float64(backing))
}

type poolEntry struct {
	horse   int
	backing int64
}

// sumExcluding soma os n maiores (ou menores) montantes da lista,
// pulando o índice skip. Companheiros faltantes contam como zero.
func sumExcluding(entries []poolEntry, skip, n int, smallest bool) int64 {
	var sum int64
	taken := 0
	if smallest {
		for i := len(entries) - 1; i >= 0 && taken < n; i-- {
			if i == skip {
				continue
			}
			sum += entries[i].backing
			taken++
		}
	} else {
		for i := 0; i < len(entries) && taken < n; i++ {
			if i == skip {
				continue
			}
			sum += entries[i].backing
			taken++
		}
	}
	return sum
}

// RawKeyOdds calcula a odd pari-mutuel de uma chave de seleção qualquer
// (duplas, trios): pool total sobre o montante na chave. Zero quando a
// chave não tem apostas.
func RawKeyOdds(pool Pool, key string) float64 {
	backing := pool[key]
	if backing <= 0 {
		return 0
	}
	return float64(pool.Total()) / float64(backing)
}

// FloorOdds aplica o piso garantido: final = max(raw, piso). Sem piso
// configurado (zero), a odd crua passa intacta.
func FloorOdds(raw, floor float64) float64 {
	if floor > raw {
		return floor
	}
	return raw
}

// ApplyWinFloor aplica o piso de uma corrida às odds de vencedor.
func ApplyWinFloor(odds WinOdds, ov Overrides) WinOdds {
	floor, ok := ov[betting.Win]
	if !ok {
		return odds
	}
	for h, v := range odds {
		odds[h] = FloorOdds(v, floor)
	}
	return odds
}

// ApplyPlaceFloor aplica o piso de uma corrida às faixas do 複勝.
func ApplyPlaceFloor(odds PlaceOdds, ov Overrides) PlaceOdds {
	floor, ok := ov[betting.Place]
	if !ok {
		return odds
	}
	for h, r := range odds {
		odds[h] = events.PlaceRange{
			Min: FloorOdds(r.Min, floor),
			Max: FloorOdds(r.Max, floor),
		}
	}
	return odds
}

// SettledSharedOdds calcula o dividendo exato de modalidades com mais de
// uma chave vencedora na mesma corrida (複勝 e ワイド): o líquido do pool
// é dividido igualmente entre as chaves vencedoras, e a parte de cada uma
// é rateada sobre o seu montante. winningKeys são todas as chaves que
// pagam nessa corrida; a soma dos pagamentos nunca excede o pool.
func SettledSharedOdds(pool Pool, winningKeys []string, key string) float64 {
	backing := pool[key]
	if backing <= 0 {
		return 0
	}
	var winnersSum int64
	for _, k := range winningKeys {
		winnersSum += pool[k]
	}
	return placeRatio(pool.Total(), backing, winnersSum-backing, len(winningKeys))
}

// WinningWideKeys devolve as chaves do ワイド que pagam dado o resultado:
// todos os pares entre os três primeiros colocados.
func WinningWideKeys(order []int) []string {
	n := 3
	if len(order) < n {
		n = len(order)
	}
	keys := make([]string, 0, 3)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			keys = append(keys, SelectionKey(betting.Wide, []int{order[i], order[j]}))
		}
	}
	return keys
}

// PayingPlacesFor escolhe as colocações pagas para exibição. Usa o
// tamanho real do campo quando conhecido; sem cadastro da corrida cai
// no número de cavalos com aposta de colocação.
func PayingPlacesFor(fieldSize, backedRunners, small, normal int) int {
	n := fieldSize
	if n <= 0 {
		n = backedRunners
	}
	if n < 8 {
		return small
	}
	return normal
}

// Payout converte stake × odd final em valor pago, truncando para baixo.
// Odds são float até aqui; o arredondamento acontece só na borda.
func Payout(stake int64, finalOdds float64) int64 {
	return int64(math.Floor(float64(stake) * finalOdds))
}
