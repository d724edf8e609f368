package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/moneylinearb/internal/kafka"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

type Handler func(context.Context, models.Snapshot) error

// Reader is the part of *kafka.Reader a worker consumes from.
type Reader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	RunWithReaders(ctx, workerCount, func() Reader { return kafka.NewReader(brokers, topic, group) }, handler)
}

// RunWithReaders starts workerCount consumers, each with its own reader, and blocks
// until ctx is done and every consumer has returned.
func RunWithReaders(ctx context.Context, workerCount int, newReader func() Reader, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			reader := newReader()
			defer reader.Close()
			consume(ctx, id, reader, handler)
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
}

func consume(ctx context.Context, id int, reader Reader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("[worker-%d] read error: %v", id, err)
			continue
		}

		snapshot, err := DecodeSnapshot(msg.Value)
		if err != nil {
			logging.Errorf("[worker-%d] %v", id, err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, snapshot); err != nil {
				logging.Errorf("[worker-%d] handler error sport=%s: %v", id, snapshot.Sport, err)
			}
		}
	}
}

// DecodeSnapshot parses a snapshot message body.
func DecodeSnapshot(data []byte) (models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Sport == "" {
		return models.Snapshot{}, fmt.Errorf("snapshot missing sport")
	}
	if snapshot.League == "" {
		snapshot.League = teams.LeagueFromSport(snapshot.Sport)
	}
	return snapshot, nil
}
