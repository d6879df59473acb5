package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWinningSelection(t *testing.T) {
	// chegada: 7, 3, 10, 1, ... num páreo de 12
	result := RaceResult{Order: []int{7, 3, 10, 1, 5}, FieldSize: 12}

	tests := []struct {
		name string
		t    BetType
		sel  []int
		want bool
	}{
		{"win hits winner", Win, []int{7}, true},
		{"win misses runner-up", Win, []int{3}, false},
		{"place third pays", Place, []int{10}, true},
		{"place fourth misses", Place, []int{1}, false},
		{"quinella any order", Quinella, []int{3, 7}, true},
		{"quinella reversed input", Quinella, []int{7, 3}, true},
		{"quinella with third", Quinella, []int{7, 10}, false},
		{"exacta exact order", Exacta, []int{7, 3}, true},
		{"exacta wrong order", Exacta, []int{3, 7}, false},
		{"wide both in top three", Wide, []int{3, 10}, true},
		{"wide one outside", Wide, []int{7, 1}, false},
		{"trio unordered", Trio, []int{10, 7, 3}, true},
		{"trio with fourth", Trio, []int{7, 3, 1}, false},
		{"trifecta exact", Trifecta, []int{7, 3, 10}, true},
		{"trifecta shuffled", Trifecta, []int{3, 7, 10}, false},
		{"arity mismatch rejected", Quinella, []int{7}, false},
		{"degenerate duplicate quinella never hits", Quinella, []int{7, 7}, false},
		{"degenerate duplicate wide never hits", Wide, []int{3, 3}, false},
		{"degenerate duplicate trio never hits", Trio, []int{7, 7, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWinningSelection(tt.t, tt.sel, result))
		})
	}
}

func TestIsWinningSelectionBracketQuinella(t *testing.T) {
	// páreo de 16: balizas em pares estritos; 7 -> baliza 4, 3 -> baliza 2
	result := RaceResult{Order: []int{7, 3, 10}, FieldSize: 16}

	assert.True(t, IsWinningSelection(BracketQuinella, []int{2, 4}, result))
	assert.True(t, IsWinningSelection(BracketQuinella, []int{4, 2}, result))
	assert.False(t, IsWinningSelection(BracketQuinella, []int{2, 5}, result))
}

func TestPayingPlaces(t *testing.T) {
	assert.Equal(t, 2, RaceResult{Order: []int{1, 2, 3, 4, 5, 6, 7}, FieldSize: 7}.PayingPlaces())
	assert.Equal(t, 3, RaceResult{Order: []int{1, 2, 3, 4, 5, 6, 7, 8}, FieldSize: 8}.PayingPlaces())
	// nunca mais colocações do que cavalos na ordem de chegada
	assert.Equal(t, 2, RaceResult{Order: []int{1, 2}, FieldSize: 18}.PayingPlaces())
}

func TestSmallFieldPlacePaysTwo(t *testing.T) {
	result := RaceResult{Order: []int{4, 2, 6, 1, 3}, FieldSize: 7}
	assert.True(t, IsWinningSelection(Place, []int{2}, result))
	assert.False(t, IsWinningSelection(Place, []int{6}, result), "third place does not pay under 8 runners")
}
