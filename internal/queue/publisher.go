package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/moneylinearb/internal/matches"
	"github.com/hetulpatel/moneylinearb/internal/models"
)

// Writer is the part of *kafka.Writer the publishers use.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishSnapshot writes one snapshot keyed by sport.
func PublishSnapshot(ctx context.Context, writer Writer, snap models.Snapshot) error {
	if writer == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.Sport, err)
	}
	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(snap.Sport),
		Value: payload,
		Time:  snap.CapturedAt,
	})
}

// PublishResults writes one payload per ranked result, keyed by pair ID.
func PublishResults(ctx context.Context, writer Writer, runID, sport string, results []matches.Result, at time.Time) error {
	if writer == nil || len(results) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(results))
	for i, r := range results {
		payload, err := json.Marshal(matches.NewPayload(runID, sport, i+1, r, at))
		if err != nil {
			return fmt.Errorf("marshal result %s: %w", r.PairID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.PairID), Value: payload})
	}
	return writer.WriteMessages(ctx, msgs...)
}
