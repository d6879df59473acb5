package betting

// BracketNumber mapeia o número de um cavalo para sua baliza (枠番, 1 a 8)
// conforme o tamanho do páreo. Regra JRA:
//   - até 8 corredores: baliza = número do cavalo;
//   - 9 a 15: os primeiros 16-fieldSize números ocupam balizas sozinhos,
//     os demais dividem em pares;
//   - 16: pares estritos;
//   - 17: 1-14 em pares, 15-17 na baliza 8;
//   - 18: 1-12 em pares, 13-15 na baliza 7, 16-18 na baliza 8.
//
// Entradas fora do mapeamento válido caem na baliza 8 em vez de falhar.
func BracketNumber(horseNo, fieldSize int) int {
	if horseNo < 1 {
		return 8
	}

	var b int
	switch {
	case fieldSize <= 8:
		b = horseNo
	case fieldSize <= 15:
		singles := 16 - fieldSize
		if horseNo <= singles {
			b = horseNo
		} else {
			b = singles + (horseNo-singles+1)/2
		}
	case fieldSize == 16:
		b = (horseNo + 1) / 2
	case fieldSize == 17:
		if horseNo <= 14 {
			b = (horseNo + 1) / 2
		} else {
			b = 8
		}
	case fieldSize == 18:
		switch {
		case horseNo <= 12:
			b = (horseNo + 1) / 2
		case horseNo <= 15:
			b = 7
		default:
			b = 8
		}
	default:
		b = 8
	}

	if b > 8 {
		b = 8
	}
	return b
}
