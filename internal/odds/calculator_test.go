package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

func TestCalcWinOdds(t *testing.T) {
	pool := Pool{"1": 500, "2": 300, "3": 200}
	odds := CalcWinOdds(pool)

	require.Len(t, odds, 3)
	assert.InDelta(t, 2.0, odds[1], 1e-9)
	assert.InDelta(t, 10.0/3.0, odds[2], 1e-9)
	assert.InDelta(t, 5.0, odds[3], 1e-9)

	// cavalo sem aposta não aparece: ausência, não zero
	_, ok := odds[4]
	assert.False(t, ok)
}

func TestCalcWinOddsEmptyPool(t *testing.T) {
	assert.Empty(t, CalcWinOdds(Pool{}))
}

func TestFloorOdds(t *testing.T) {
	assert.Equal(t, 1.5, FloorOdds(1.2, 1.5))
	assert.Equal(t, 2.4, FloorOdds(2.4, 1.5))
	assert.Equal(t, 2.4, FloorOdds(2.4, 0)) // sem piso configurado
}

func TestApplyWinFloor(t *testing.T) {
	odds := WinOdds{1: 1.1, 2: 4.0}
	out := ApplyWinFloor(odds, Overrides{betting.Win: 1.5})
	assert.InDelta(t, 1.5, out[1], 1e-9)
	assert.InDelta(t, 4.0, out[2], 1e-9)

	// sem override, odds cruas passam intactas
	raw := WinOdds{1: 1.1}
	same := ApplyWinFloor(raw, Overrides{})
	assert.InDelta(t, 1.1, same[1], 1e-9)
}

func TestCalcPlaceOdds(t *testing.T) {
	pool := Pool{"1": 600, "2": 300, "3": 100}
	odds := CalcPlaceOdds(pool, 2)
	require.Len(t, odds, 3)

	// cavalo 1: companheiro mais pesado = 300, mais leve = 100
	// min = 1 + (1000-600-300)/(2*600); max = 1 + (1000-600-100)/(2*600)
	assert.InDelta(t, 1.0+100.0/1200.0, odds[1].Min, 1e-9)
	assert.InDelta(t, 1.25, odds[1].Max, 1e-9)

	for h, r := range odds {
		assert.LessOrEqual(t, r.Min, r.Max, "horse %d", h)
		assert.GreaterOrEqual(t, r.Min, 1.0, "horse %d", h)
	}
}

func TestApplyPlaceFloor(t *testing.T) {
	odds := PlaceOdds{1: events.PlaceRange{Min: 1.02, Max: 1.3}}
	out := ApplyPlaceFloor(odds, Overrides{betting.Place: 1.1})
	assert.InDelta(t, 1.1, out[1].Min, 1e-9)
	assert.InDelta(t, 1.3, out[1].Max, 1e-9)
}

func TestSettledSharedOddsPlace(t *testing.T) {
	pool := Pool{"1": 600, "2": 300, "3": 100}

	// colocados 1 e 3: líquido (1000-700) dividido em 2 colocações
	got := SettledSharedOdds(pool, []string{"1", "3"}, "1")
	assert.InDelta(t, 1.25, got, 1e-9)

	assert.Zero(t, SettledSharedOdds(pool, []string{"1", "3"}, "9"))
}

func TestSettledSharedOddsWideConservesPool(t *testing.T) {
	// chegada 1-2-3: três chaves vencedoras dividem o pool, a soma dos
	// pagamentos nunca pode passar do total apostado
	pool := Pool{"1-2": 1000, "1-3": 1000, "2-3": 1000, "4-5": 1000}
	keys := WinningWideKeys([]int{1, 2, 3, 10})
	assert.Equal(t, []string{"1-2", "1-3", "2-3"}, keys)

	var paidOut int64
	for _, k := range keys {
		odd := SettledSharedOdds(pool, keys, k)
		assert.InDelta(t, 1.0+1000.0/3000.0, odd, 1e-9)
		paidOut += Payout(pool[k], odd)
	}
	assert.LessOrEqual(t, paidOut, pool.Total())
}

func TestWinningWideKeysShortOrder(t *testing.T) {
	assert.Equal(t, []string{"4-7"}, WinningWideKeys([]int{7, 4}))
	assert.Empty(t, WinningWideKeys([]int{7}))
}

func TestPayingPlacesFor(t *testing.T) {
	// campo cadastrado manda; sem cadastro vale o número de cavalos com
	// aposta de colocação
	assert.Equal(t, 3, PayingPlacesFor(10, 3, 2, 3))
	assert.Equal(t, 2, PayingPlacesFor(7, 12, 2, 3))
	assert.Equal(t, 2, PayingPlacesFor(0, 5, 2, 3))
	assert.Equal(t, 3, PayingPlacesFor(0, 9, 2, 3))
}

func TestRawKeyOdds(t *testing.T) {
	pool := Pool{"2-4": 400, "1-2": 600}
	assert.InDelta(t, 2.5, RawKeyOdds(pool, "2-4"), 1e-9)
	assert.Zero(t, RawKeyOdds(pool, "5-6"))
}

func TestPayout(t *testing.T) {
	assert.Equal(t, int64(250), Payout(100, 2.5))
	assert.Equal(t, int64(333), Payout(100, 10.0/3.0))
	assert.Equal(t, int64(0), Payout(100, 0))
}
