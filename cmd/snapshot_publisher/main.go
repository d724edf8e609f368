package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/config"
	"github.com/hetulpatel/moneylinearb/internal/kafka"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/queue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg := config.Load()
	logging.InitFromEnv()

	brokers := kafka.Brokers()
	topic := kafka.TopicOr(cfg.SnapshotTopic, kafka.DefaultSnapshotTopic)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[snapshot-publisher] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopics(ensureCtx, brokers, 1, topic); err != nil {
		logging.Warnf("[snapshot-publisher] ensure topic warning: %v", err)
	}
	cancelEnsure()

	writer := kafka.NewWriter(brokers, topic)
	defer writer.Close()

	loader := &collectors.FileLoader{
		SnapshotPath:  cfg.SnapshotPath,
		BookmakerPath: cfg.BookmakerPath,
		MarketPath:    cfg.MarketPath,
	}
	collectors.RunLoop(ctx, loader, cfg.PollInterval, func(ctx context.Context, batch collectors.Batch) error {
		if batch.Empty() {
			logging.Warnf("[snapshot-publisher] empty batch, nothing to publish")
			return nil
		}
		snap := models.NewSnapshot(cfg.Sport, cfg.League, batch, time.Now().UTC())
		if err := queue.PublishSnapshot(ctx, writer, snap); err != nil {
			return err
		}
		logging.Infof("[snapshot-publisher] published sport=%s bookmakers=%d markets=%d to %s",
			snap.Sport, len(snap.Bookmakers), len(snap.Markets), topic)
		return nil
	})
}
