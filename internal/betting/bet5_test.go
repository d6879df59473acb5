package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBet5CombinationCount(t *testing.T) {
	legs := [Bet5Legs][]int{{1}, {2, 3}, {4}, {5, 6, 7}, {8}}
	assert.Equal(t, 6, Bet5CombinationCount(legs))

	single := [Bet5Legs][]int{{1}, {2}, {3}, {4}, {5}}
	assert.Equal(t, 1, Bet5CombinationCount(single))
}

func TestBet5Dividend(t *testing.T) {
	tests := []struct {
		name    string
		pot     int64
		winners int
		want    int64
	}{
		{"no winners pays nothing", 1000, 0, 0},
		{"single winner takes pot", 1000, 1, 1000},
		{"floor division", 1000, 3, 333},
		{"negative winners guarded", 1000, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bet5Dividend(tt.pot, tt.winners))
		})
	}
}

func TestBet5IsWinner(t *testing.T) {
	legs := [Bet5Legs][]int{{1, 2}, {3}, {4, 5}, {6}, {7, 8}}

	assert.True(t, Bet5IsWinner(legs, [Bet5Legs]int{2, 3, 4, 6, 8}))
	assert.True(t, Bet5IsWinner(legs, [Bet5Legs]int{1, 3, 5, 6, 7}))

	// uma etapa errada derruba o bilhete inteiro: sem crédito parcial
	assert.False(t, Bet5IsWinner(legs, [Bet5Legs]int{2, 3, 4, 6, 9}))
	assert.False(t, Bet5IsWinner(legs, [Bet5Legs]int{9, 3, 4, 6, 8}))
}
