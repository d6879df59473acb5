package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/keibalab/keiba-pool-poc/internal/broadcast"
	"github.com/keibalab/keiba-pool-poc/internal/racestore"
	"github.com/keibalab/keiba-pool-poc/internal/settlement"
	srepo "github.com/keibalab/keiba-pool-poc/internal/settlement/repo"
	sharedcache "github.com/keibalab/keiba-pool-poc/internal/shared/cache"
	"github.com/keibalab/keiba-pool-poc/internal/shared/config"
	"github.com/keibalab/keiba-pool-poc/internal/shared/db"
	"github.com/keibalab/keiba-pool-poc/internal/shared/kafka"
	"github.com/keibalab/keiba-pool-poc/internal/shared/logger"
	ev "github.com/keibalab/keiba-pool-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com banco para leitura de apostas e escrita da liquidação
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka consumer: resultados oficiais; producer: DLQ de mensagens podres
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRaceResults, "settlement-worker")
	defer reader.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicResultsDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultsDLQ)
		defer dlqWriter.Close()
	}

	// Métricas
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_results_total", Help: "resultados processados"}, []string{"kind"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_failures_total", Help: "falhas de liquidação"})
	prometheus.MustRegister(settled, failures)

	settler := &settlement.Settler{
		Log:   log,
		Store: racestore.New(pg),
		Repo:  srepo.NewPostgres(pg),
	}
	publisher := broadcast.NewRedisPublisher(redisClient, cfg.RedisPubSubChannel)

	// Servidor HTTP para métricas Prometheus e healthcheck
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicRaceResults))

	// Loop principal: consome resultados, liquida e publica RACE_RESULT_UPDATED
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var result ev.RaceResults
		if jerr := json.Unmarshal(msg.Value, &result); jerr != nil {
			log.Error("unmarshal race_results", zap.Error(jerr))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}

		if err := processOne(ctx, log, settler, publisher, &result); err != nil {
			failures.Inc()
			log.Error("process result", zap.String("raceId", result.RaceID), zap.Error(err))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
			continue
		}
		settled.WithLabelValues(result.Kind).Inc()
	}

	log.Info("settlement-worker stopped")
}

// processOne executa o fluxo de um resultado:
// 1. Liquida as apostas (ou bilhetes BET5) conforme o tipo da mensagem
// 2. Publica RACE_RESULT_UPDATED no canal push
func processOne(
	ctx context.Context,
	log *zap.Logger,
	settler *settlement.Settler,
	publisher *broadcast.RedisPublisher,
	result *ev.RaceResults,
) error {
	switch result.Kind {
	case ev.ResultKindBet5:
		return settler.SettleBet5(ctx, *result)
	default:
		if err := settler.SettleRace(ctx, *result); err != nil {
			return err
		}
	}

	payload, _ := json.Marshal(settlement.ResultPayload(*result))

	pctx, pcancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer pcancel()
	if err := publisher.Publish(pctx, payload); err != nil {
		// push é melhor esforço: a liquidação já está persistida
		log.Warn("result broadcast publish failed", zap.Error(err))
	}
	return nil
}
