package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	bhttp "github.com/keibalab/keiba-pool-poc/internal/bet-service/http"
	kpub "github.com/keibalab/keiba-pool-poc/internal/bet-service/producer"
	"github.com/keibalab/keiba-pool-poc/internal/bet-service/repo"
	"github.com/keibalab/keiba-pool-poc/internal/broadcast"
	"github.com/keibalab/keiba-pool-poc/internal/shared/cache"
	"github.com/keibalab/keiba-pool-poc/internal/shared/config"
	"github.com/keibalab/keiba-pool-poc/internal/shared/db"
	"github.com/keibalab/keiba-pool-poc/internal/shared/kafka"
	"github.com/keibalab/keiba-pool-poc/internal/shared/logger"
	"github.com/keibalab/keiba-pool-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (healthcheck)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (bet_placed e race_control)
	betWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betWriter.Close()
	controlWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRaceControl)
	defer controlWriter.Close()

	// deps
	repository := repo.NewPostgres(pg)
	publ := kpub.NewKafkaPublisher(betWriter, controlWriter)
	push := broadcast.NewRedisPublisher(rdb, cfg.RedisPubSubChannel)

	// HTTP público
	api := bhttp.NewServer(log, repository, publ, push)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("bet-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
