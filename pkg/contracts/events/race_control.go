package events

// Ações de ciclo de vida emitidas pela superfície administrativa.
const (
	ControlClose     = "CLOSE"
	ControlReopen    = "REOPEN"
	ControlFinalize  = "FINALIZE"
	ControlBroadcast = "BROADCAST"
)

// Evento publicado no tópico "race_control".
type RaceControl struct {
	RaceID   string `json:"race_id"`
	Action   string `json:"action"` // CLOSE | REOPEN | FINALIZE | BROADCAST
	TsUnixMs int64  `json:"ts_unix_ms"`
}
