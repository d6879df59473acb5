package topics

const (
	// Apostas
	BetPlaced = "bet_placed"

	// Ciclo de vida da corrida (fechar/reabrir/finalizar/transmitir)
	RaceControl = "race_control"

	// Resultados oficiais (corridas e BET5)
	RaceResults = "race_results"

	// DLQs
	RaceResultsDLQ = "race_results_dlq"
)
