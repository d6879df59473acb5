package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBracketNumber(t *testing.T) {
	tests := []struct {
		name      string
		horseNo   int
		fieldSize int
		want      int
	}{
		{"identity small field", 3, 8, 3},
		{"identity field of one", 1, 1, 1},
		{"nine runners last horse pairs", 9, 9, 8},
		{"nine runners first singles", 7, 9, 7},
		{"nine runners first paired", 8, 9, 8},
		{"fifteen runners single head", 1, 15, 1},
		{"fifteen runners first pair", 2, 15, 2},
		{"fifteen runners tail", 15, 15, 8},
		{"sixteen strict pairs low", 1, 16, 1},
		{"sixteen strict pairs", 5, 16, 3},
		{"sixteen strict pairs high", 16, 16, 8},
		{"seventeen pairs", 14, 17, 7},
		{"seventeen triple tail", 15, 17, 8},
		{"seventeen last", 17, 17, 8},
		{"eighteen pairs", 12, 18, 6},
		{"eighteen bracket seven", 13, 18, 7},
		{"eighteen bracket seven upper", 15, 18, 7},
		{"eighteen bracket eight", 16, 18, 8},
		{"eighteen last", 18, 18, 8},
		{"oversized field clamps", 5, 25, 8},
		{"horse beyond field clamps", 19, 18, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BracketNumber(tt.horseNo, tt.fieldSize))
		})
	}
}

func TestBracketNumberAlwaysInRange(t *testing.T) {
	for fieldSize := 1; fieldSize <= 18; fieldSize++ {
		for horseNo := 1; horseNo <= fieldSize; horseNo++ {
			b := BracketNumber(horseNo, fieldSize)
			assert.GreaterOrEqual(t, b, 1, "horse %d field %d", horseNo, fieldSize)
			assert.LessOrEqual(t, b, 8, "horse %d field %d", horseNo, fieldSize)
			if fieldSize <= 8 {
				assert.Equal(t, horseNo, b)
			}
		}
	}
}
