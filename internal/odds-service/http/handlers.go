package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/keibalab/keiba-pool-poc/internal/betting"
	"github.com/keibalab/keiba-pool-poc/internal/odds"
	"github.com/keibalab/keiba-pool-poc/internal/odds-worker/cache"
	"github.com/keibalab/keiba-pool-poc/internal/racestore"
	"github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

type API struct {
	Store *racestore.Store
	Cache *cache.RedisCache

	// colocações pagas no 複勝
	PayingPlacesSmall int
	PayingPlaces      int
}

func (a *API) Router(ws http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/races/{id}/odds", a.getOdds)
	r.Get("/ws", ws)
	return r
}

// getOdds devolve as odds correntes da corrida: cache primeiro, senão o
// caminho provisório, que recomputa na hora sobre o snapshot vivo de
// apostas e é utilizável a qualquer momento antes do fechamento.
func (a *API) getOdds(w http.ResponseWriter, r *http.Request) {
	raceID := chi.URLParam(r, "id")

	if payload, ok, _ := a.Cache.GetCurrent(r.Context(), raceID); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
		return
	}

	data, err := a.provisionalOdds(r.Context(), raceID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (a *API) provisionalOdds(ctx context.Context, raceID string) (events.RaceOddsUpdated, error) {
	var out events.RaceOddsUpdated

	bets, err := a.Store.BetsByRace(ctx, raceID)
	if err != nil {
		return out, err
	}
	ov, err := a.Store.OverridesByRace(ctx, raceID)
	if err != nil {
		return out, err
	}

	pools := odds.Aggregate(bets)
	fieldSize, err := a.Store.FieldSize(ctx, raceID)
	if err != nil {
		fieldSize = 0
	}
	places := odds.PayingPlacesFor(fieldSize, len(pools[betting.Place]), a.PayingPlacesSmall, a.PayingPlaces)

	out = events.RaceOddsUpdated{
		Type:   events.TypeRaceOddsUpdated,
		RaceID: raceID,
		Data: events.OddsData{
			WinOdds:   odds.ApplyWinFloor(odds.CalcWinOdds(pools[betting.Win]), ov),
			PlaceOdds: odds.ApplyPlaceFloor(odds.CalcPlaceOdds(pools[betting.Place], places), ov),
			UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
