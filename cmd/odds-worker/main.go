package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/keibalab/keiba-pool-poc/internal/broadcast"
	wcache "github.com/keibalab/keiba-pool-poc/internal/odds-worker/cache"
	"github.com/keibalab/keiba-pool-poc/internal/odds-worker/worker"
	"github.com/keibalab/keiba-pool-poc/internal/racestore"
	sharedcache "github.com/keibalab/keiba-pool-poc/internal/shared/cache"
	"github.com/keibalab/keiba-pool-poc/internal/shared/config"
	"github.com/keibalab/keiba-pool-poc/internal/shared/db"
	"github.com/keibalab/keiba-pool-poc/internal/shared/kafka"
	"github.com/keibalab/keiba-pool-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumers Kafka: mutações de aposta e controle de corrida
	betReader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetPlaced, "odds-worker")
	defer betReader.Close()
	controlReader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRaceControl, "odds-worker")
	defer controlReader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_worker_mutations_consumed_total", Help: "mutações de aposta consumidas"})
	computed := prometheus.NewCounter(prometheus.CounterOpts{Name: "odds_worker_recomputes_total", Help: "recomputações de pool/odds"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "odds_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, computed, errorsBy)

	// Pipeline: snapshot -> pool -> odds -> throttler -> Redis Pub/Sub
	store := racestore.New(pg)
	oddsCache := wcache.NewRedisCache(redisClient, cfg.OddsCacheTTL)
	publisher := broadcast.NewRedisPublisher(redisClient, cfg.RedisPubSubChannel)
	lease := broadcast.NewRedisLease(redisClient)

	w := &worker.Worker{
		Log:               log,
		Store:             store,
		Cache:             oddsCache,
		PayingPlacesSmall: cfg.PayingPlacesSmall,
		PayingPlaces:      cfg.PayingPlaces,
		OnConsumed:        func() { consumed.Inc() },
		OnComputed:        func() { computed.Inc() },
		OnError:           func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	w.Throttler = broadcast.NewThrottler(log, lease, publisher, w.Snapshot, cfg.ThrottleWindow)

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := w.RunControl(ctx, controlReader); err != nil && ctx.Err() == nil {
			log.Error("control loop stopped", zap.Error(err))
		}
	}()

	log.Info("odds-worker started", zap.Duration("throttleWindow", cfg.ThrottleWindow))
	if err := w.RunBets(ctx, betReader); err != nil && ctx.Err() == nil {
		log.Fatal("worker stopped with error", zap.Error(err))
	}
	log.Info("odds-worker stopped")
}
