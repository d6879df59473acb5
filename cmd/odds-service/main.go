package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/keibalab/keiba-pool-poc/internal/odds-service/http"
	"github.com/keibalab/keiba-pool-poc/internal/odds-service/ws"
	wcache "github.com/keibalab/keiba-pool-poc/internal/odds-worker/cache"
	"github.com/keibalab/keiba-pool-poc/internal/racestore"
	"github.com/keibalab/keiba-pool-poc/internal/shared/cache"
	"github.com/keibalab/keiba-pool-poc/internal/shared/config"
	"github.com/keibalab/keiba-pool-poc/internal/shared/db"
	"github.com/keibalab/keiba-pool-poc/internal/shared/logger"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Hub WebSocket alimentado pelo canal Redis Pub/Sub, com keepalive
	// em canais ociosos para detecção de falha silenciosa no cliente
	hub := ws.NewHub(func(r *http.Request) bool { return true }, cfg.WSKeepalive)
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	api := &httpapi.API{
		Store:             racestore.New(pg),
		Cache:             wcache.NewRedisCache(redisClient, cfg.OddsCacheTTL),
		PayingPlacesSmall: cfg.PayingPlacesSmall,
		PayingPlaces:      cfg.PayingPlaces,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(hub.HandleWS),
	}

	// metrics/health
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := pg.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres not healthy: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis not healthy: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health server starting", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Info("odds-service listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api server failed", zap.Error(err))
	}
}
