package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/config"
	"github.com/hetulpatel/moneylinearb/internal/kafka"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/pipeline"
	sqlstore "github.com/hetulpatel/moneylinearb/internal/storage/sqlite"
	"github.com/hetulpatel/moneylinearb/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg := config.Load()
	logging.InitFromEnv()

	brokers := kafka.Brokers()
	snapshotTopic := kafka.TopicOr(cfg.SnapshotTopic, kafka.DefaultSnapshotTopic)
	resultsTopic := kafka.TopicOr(cfg.ResultsTopic, kafka.DefaultResultsTopic)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[arb-worker] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopics(ensureCtx, brokers, 1, snapshotTopic, resultsTopic); err != nil {
		logging.Warnf("[arb-worker] ensure topics warning: %v", err)
	}
	cancelEnsure()

	store, err := sqlstore.Open(cfg.SQLitePath)
	if err != nil {
		logging.Fatalf("[arb-worker] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[arb-worker] create tables: %v", err)
	}

	pcfg, cleanup, err := pipeline.FromConfig(cfg)
	if err != nil {
		logging.Fatalf("[arb-worker] setup: %v", err)
	}
	defer cleanup()

	opps := mustOpportunityCache(ctx, cfg)
	defer opps.Close()

	writer := kafka.NewWriter(brokers, resultsTopic)
	defer writer.Close()

	processor := workers.NewProcessor(pcfg, store, writer, opps)

	logging.Infof("[arb-worker] consuming %s with group %s (%d workers), publishing to %s", snapshotTopic, cfg.WorkerGroup, cfg.Workers, resultsTopic)
	workers.Run(ctx, brokers, snapshotTopic, cfg.WorkerGroup, cfg.Workers, func(ctx context.Context, snap models.Snapshot) error {
		if err := processor.Handle(ctx, snap); err != nil {
			return err
		}
		logging.Infof("[arb-worker] processed sport=%s captured=%s", snap.Sport, snap.CapturedAt.Format(time.RFC3339))
		return nil
	})
}

func mustOpportunityCache(ctx context.Context, cfg config.Config) cache.OpportunityCache {
	if cfg.RedisAddr == "" {
		logging.Warnf("[arb-worker] REDIS_ADDR not set, opportunity dedupe is per-process")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	c, err := cache.OpenOpportunityCache(pingCtx, cfg.Redis(cfg.OpportunityTTL))
	if err != nil {
		logging.Fatalf("[arb-worker] redis: %v", err)
	}
	return c
}
