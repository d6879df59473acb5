package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinationCount(t *testing.T) {
	tests := []struct {
		name      string
		positions [][]int
		want      int
	}{
		{"single", [][]int{{7}}, 1},
		{"win formation", [][]int{{1, 2, 3}}, 3},
		{"trifecta formation", [][]int{{1}, {13, 14}, {2, 3, 4}}, 6},
		{"empty position", [][]int{{1}, {}, {2}}, 0},
		{"nothing selected", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombinationCount(tt.positions))
			assert.Equal(t, int64(tt.want)*100, TotalStake(tt.positions, 100))
		})
	}
}

func TestExpandFormation(t *testing.T) {
	got := ExpandFormation([][]int{{1}, {13, 14}, {2, 3}})
	want := [][]int{
		{1, 13, 2},
		{1, 13, 3},
		{1, 14, 2},
		{1, 14, 3},
	}
	assert.Equal(t, want, got)
	assert.Nil(t, ExpandFormation([][]int{{1}, {}}))
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name       string
		betCount   int
		unitStake  int64
		totalStake int64
		balance    int64
		wantErr    error
	}{
		{"nothing selected", 0, 100, 0, 1000, ErrNoSelection},
		{"stake below minimum", 1, 99, 99, 1000, ErrStakeBelowMinimum},
		{"insufficient balance", 1, 100, 1100, 1000, ErrInsufficientBalance},
		{"exact balance ok", 1, 100, 1000, 1000, nil},
		{"normal ok", 6, 100, 600, 1000, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(tt.betCount, tt.unitStake, tt.totalStake, tt.balance)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCombinations(t *testing.T) {
	// [[7],[7]] expande para a seleção degenerada [7,7]
	dup := ExpandFormation([][]int{{7}, {7}})
	assert.ErrorIs(t, ValidateCombinations(Quinella, dup), ErrDuplicateHorse)
	assert.ErrorIs(t, ValidateCombinations(Wide, dup), ErrDuplicateHorse)
	assert.ErrorIs(t, ValidateCombinations(Trifecta, ExpandFormation([][]int{{1, 2}, {2}, {3}})), ErrDuplicateHorse)

	assert.NoError(t, ValidateCombinations(Quinella, ExpandFormation([][]int{{7}, {3, 8}})))
	// no 枠連 a mesma baliza pode se repetir (dois cavalos da baliza)
	assert.NoError(t, ValidateCombinations(BracketQuinella, [][]int{{4, 4}}))
}

// As mensagens são contrato com a interface: precisam ser os literais exatos.
func TestValidationMessagesAreStable(t *testing.T) {
	assert.EqualError(t, ValidateSubmission(0, 100, 0, 1000), "馬を選択してください")
	assert.EqualError(t, ValidateSubmission(1, 99, 99, 1000), "金額は100円以上で入力してください")
	assert.EqualError(t, ValidateSubmission(1, 100, 1100, 1000), "残高が不足しています")
}

func TestCompressBets(t *testing.T) {
	bets := []Bet{
		{Type: Trifecta, Selections: []int{1, 13, 2}, Status: StatusPending},
		{Type: Trifecta, Selections: []int{1, 13, 3}, Status: StatusPending},
		{Type: Trifecta, Selections: []int{1, 14, 4}, Status: StatusPending},
	}
	rows := CompressBets(bets)
	require.Len(t, rows, 1)
	assert.Equal(t, Trifecta, rows[0].Type)
	assert.Equal(t, [][]int{{1}, {13, 14}, {2, 3, 4}}, rows[0].Positions)
	assert.Equal(t, 3, rows[0].BetCount)
	assert.False(t, rows[0].HasHit)
}

func TestCompressBetsHasHitAndGrouping(t *testing.T) {
	bets := []Bet{
		{Type: Win, Selections: []int{5}, Status: StatusHit},
		{Type: Win, Selections: []int{2}, Status: StatusLost},
		{Type: Quinella, Selections: []int{4, 6}, Status: StatusLost},
	}
	rows := CompressBets(bets)
	require.Len(t, rows, 2)
	// ordem canônica: Win antes de Quinella
	assert.Equal(t, Win, rows[0].Type)
	assert.Equal(t, [][]int{{2, 5}}, rows[0].Positions)
	assert.True(t, rows[0].HasHit)
	assert.Equal(t, Quinella, rows[1].Type)
	assert.False(t, rows[1].HasHit)
}

// Comprimir a expansão completa de uma formação reproduz os mesmos
// conjuntos candidatos (idempotência em entrada retangular).
func TestCompressionIdempotentOnRectangularInput(t *testing.T) {
	positions := [][]int{{1, 5}, {2, 8}, {3, 6, 9}}
	combos := ExpandFormation(positions)

	bets := make([]Bet, len(combos))
	for i, sel := range combos {
		bets[i] = Bet{Type: Trifecta, Selections: sel, Status: StatusPending}
	}

	rows := CompressBets(bets)
	require.Len(t, rows, 1)
	assert.Equal(t, positions, rows[0].Positions)
	assert.Equal(t, CombinationCount(positions), rows[0].BetCount)
}
