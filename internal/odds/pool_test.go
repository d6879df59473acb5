package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
)

func TestSelectionKey(t *testing.T) {
	tests := []struct {
		name string
		t    betting.BetType
		sel  []int
		want string
	}{
		{"win single", betting.Win, []int{7}, "7"},
		{"quinella sorts", betting.Quinella, []int{9, 2}, "2-9"},
		{"trio sorts", betting.Trio, []int{10, 3, 7}, "3-7-10"},
		{"exacta preserves order", betting.Exacta, []int{9, 2}, "9-2"},
		{"trifecta preserves order", betting.Trifecta, []int{10, 3, 7}, "10-3-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectionKey(tt.t, tt.sel))
		})
	}
}

func TestAggregate(t *testing.T) {
	bets := []betting.Bet{
		{Type: betting.Win, Selections: []int{1}, Stake: 500, Status: betting.StatusPending},
		{Type: betting.Win, Selections: []int{1}, Stake: 300, Status: betting.StatusPending},
		{Type: betting.Win, Selections: []int{2}, Stake: 200, Status: betting.StatusPending},
		// estornada fica fora do pool
		{Type: betting.Win, Selections: []int{2}, Stake: 900, Status: betting.StatusRefunded},
		// quinella em ordens diferentes cai na mesma chave
		{Type: betting.Quinella, Selections: []int{4, 2}, Stake: 100, Status: betting.StatusPending},
		{Type: betting.Quinella, Selections: []int{2, 4}, Stake: 100, Status: betting.StatusHit},
	}

	pools := Aggregate(bets)
	require.Len(t, pools, 2)

	win := pools[betting.Win]
	assert.Equal(t, int64(800), win["1"])
	assert.Equal(t, int64(200), win["2"])
	assert.Equal(t, int64(1000), win.Total())

	quinella := pools[betting.Quinella]
	assert.Equal(t, int64(200), quinella["2-4"])
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}
