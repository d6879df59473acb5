package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/keibalab/keiba-pool-poc/internal/bet-service/dto"
	"github.com/keibalab/keiba-pool-poc/internal/bet-service/repo"
	"github.com/keibalab/keiba-pool-poc/internal/betting"
	"github.com/keibalab/keiba-pool-poc/internal/broadcast"
	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

// Publisher é o que o server precisa do Kafka.
type Publisher interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
	PublishRaceControl(context.Context, events.RaceControl) error
}

type Server struct {
	log  *zap.Logger
	repo *repo.Postgres
	publ Publisher
	push broadcast.Publisher
}

func NewServer(log *zap.Logger, r *repo.Postgres, p Publisher, push broadcast.Publisher) *Server {
	return &Server{log: log, repo: r, publ: p, push: push}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Put("/v1/races/{id}", s.registerRace)
	r.Post("/v1/races/{id}/bets", s.placeFormation)
	r.Get("/v1/races/{id}/bets", s.listUserRaceBets)
	r.Get("/v1/bets/{id}", s.getBetStatus)
	r.Put("/v1/races/{id}/overrides", s.setOverride)
	r.Post("/v1/races/{id}/control/{action}", s.raceControl)
	r.Post("/v1/bet5/tickets", s.createBet5Ticket)
	r.Post("/v1/bet5/events/{id}/pot", s.initBet5Pot)
	r.Post("/v1/events/{id}/ranking", s.rankingUpdated)
	return r
}

// registerRace cadastra a corrida com o tamanho do campo, usado na
// escolha de colocações pagas do 複勝 exibido.
func (s *Server) registerRace(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "id")

	var req dto.RegisterRaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.FieldSize < 2 || req.FieldSize > 18 {
		writeError(w, http.StatusBadRequest, "fieldSize must be between 2 and 18")
		return
	}

	if err := s.repo.UpsertRace(r.Context(), raceID, req.FieldSize); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// placeFormation valida e expande uma formação, grava uma aposta por
// combinação debitando o saldo e publica bet_placed. A recomputação de
// pool e o broadcast acontecem no odds-worker: uma indisponibilidade lá
// degrada o frescor das odds, nunca a colocação da aposta.
func (s *Server) placeFormation(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "id")

	var req dto.PlaceFormationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || raceID == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	t, err := betting.ParseBetType(req.BetType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Positions) != t.Arity() {
		writeError(w, http.StatusBadRequest, "positions must match bet type arity")
		return
	}

	balance, err := s.repo.Balance(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	count := betting.CombinationCount(req.Positions)
	total := betting.TotalStake(req.Positions, req.UnitStake)
	if err := betting.ValidateSubmission(count, req.UnitStake, total, balance); err != nil {
		// mensagens estáveis voltadas ao usuário; entrada corrigível
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	combos := betting.ExpandFormation(req.Positions)
	if err := betting.ValidateCombinations(t, combos); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	ids, err := s.repo.InsertFormation(r.Context(), req.UserID, raceID, t, combos, req.UnitStake)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientFunds) {
			writeError(w, http.StatusUnprocessableEntity, betting.ErrInsufficientBalance.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// notificação desacoplada: falha aqui não desfaz a aposta
	if err := s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		RaceID:       raceID,
		UserID:       req.UserID,
		BetType:      t.String(),
		Combinations: count,
		UnitStake:    req.UnitStake,
		TotalStake:   total,
	}); err != nil {
		s.log.Warn("bet_placed publish failed", zap.String("raceId", raceID), zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, dto.PlaceFormationResponse{
		BetIDs:       ids,
		Combinations: count,
		TotalStake:   total,
		Status:       betting.StatusPending,
	})
}

func (s *Server) getBetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := s.repo.GetBet(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.BetStatusResponse{BetID: b.ID, Status: b.Status})
}

// listUserRaceBets devolve as apostas do usuário recomprimidas em uma
// linha de formação por modalidade (exibição compacta).
func (s *Server) listUserRaceBets(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	bets, err := s.repo.UserRaceBets(r.Context(), userID, raceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.UserRaceBetsResponse{
		RaceID: raceID,
		Rows:   betting.CompressBets(bets),
	})
}

func (s *Server) setOverride(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "id")

	var req dto.SetOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if _, err := betting.ParseBetType(req.BetType); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MinOdds <= 0 {
		writeError(w, http.StatusBadRequest, "minOdds must be positive")
		return
	}

	if err := s.repo.UpsertOverride(r.Context(), repo.GuaranteedOdds{
		RaceID:  raceID,
		BetType: req.BetType,
		MinOdds: req.MinOdds,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// raceControl publica um evento de ciclo de vida (close/reopen/finalize/
// broadcast) no tópico race_control; o odds-worker repassa aos clientes
// sem throttle.
func (s *Server) raceControl(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "id")

	var action string
	switch chi.URLParam(r, "action") {
	case "close":
		action = events.ControlClose
	case "reopen":
		action = events.ControlReopen
	case "finalize":
		action = events.ControlFinalize
	case "broadcast":
		action = events.ControlBroadcast
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	if err := s.publ.PublishRaceControl(r.Context(), events.RaceControl{
		RaceID: raceID,
		Action: action,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// createBet5Ticket grava um bilhete do acumulador de 5 corridas.
func (s *Server) createBet5Ticket(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBet5Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.UserID == "" || req.EventID == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.Legs) != betting.Bet5Legs {
		writeError(w, http.StatusBadRequest, "bet5 requires exactly 5 legs")
		return
	}

	var legs [betting.Bet5Legs][]int
	for i, leg := range req.Legs {
		if len(leg) == 0 {
			writeError(w, http.StatusUnprocessableEntity, betting.ErrNoSelection.Error())
			return
		}
		legs[i] = leg
	}

	count := betting.Bet5CombinationCount(legs)
	balance, err := s.repo.Balance(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := betting.ValidateSubmission(count, req.Stake, req.Stake, balance); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ticket := &betting.Bet5Ticket{
		EventID: req.EventID,
		UserID:  req.UserID,
		Legs:    legs,
		Stake:   req.Stake,
	}
	id, err := s.repo.CreateBet5Ticket(r.Context(), ticket)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientFunds) {
			writeError(w, http.StatusUnprocessableEntity, betting.ErrInsufficientBalance.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateBet5Response{TicketID: id, Combinations: count})
}

// initBet5Pot registra o carryover inicial de um evento BET5.
func (s *Server) initBet5Pot(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	var req struct {
		Carryover int64 `json:"carryover"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Carryover < 0 {
		writeError(w, http.StatusBadRequest, "carryover must be non-negative")
		return
	}

	if err := s.repo.InitBet5Pot(r.Context(), eventID, req.Carryover); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// rankingUpdated avisa os clientes que o ranking do evento mudou de
// modo de exibição (HIDDEN/ANONYMOUS/FULL). Push direto, sem throttle.
func (s *Server) rankingUpdated(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	switch req.Mode {
	case "HIDDEN", "ANONYMOUS", "FULL":
	default:
		writeError(w, http.StatusBadRequest, "unknown ranking mode")
		return
	}

	payload, _ := json.Marshal(events.RankingUpdated{
		Type:    events.TypeRankingUpdated,
		EventID: eventID,
		Mode:    req.Mode,
	})
	if err := s.push.Publish(r.Context(), payload); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}
