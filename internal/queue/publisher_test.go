package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/matches"
	"github.com/hetulpatel/moneylinearb/internal/models"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestPublishSnapshot(t *testing.T) {
	w := &captureWriter{}
	snap := models.NewSnapshot("basketball_nba", "", collectors.Batch{
		Bookmakers: []collectors.Line{{Provider: "DraftKings", EventID: "e1", SideAPrice: -110, SideBPrice: -110}},
	}, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if err := PublishSnapshot(context.Background(), w, snap); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "basketball_nba" {
		t.Fatalf("messages = %+v", w.msgs)
	}
	var got models.Snapshot
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatal(err)
	}
	if got.League != "nba" || len(got.Bookmakers) != 1 || got.Bookmakers[0].SideAPrice != -110 {
		t.Errorf("decoded snapshot = %+v", got)
	}
}

func TestPublishResults(t *testing.T) {
	w := &captureWriter{}
	results := []matches.Result{{PairID: "p1", HasOpportunity: true}, {PairID: "p2"}}
	if err := PublishResults(context.Background(), w, "run-1", "nba", results, time.Now()); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 2 || string(w.msgs[1].Key) != "p2" {
		t.Fatalf("messages = %+v", w.msgs)
	}
	var p matches.Payload
	if err := json.Unmarshal(w.msgs[0].Value, &p); err != nil {
		t.Fatal(err)
	}
	if p.RunID != "run-1" || p.Rank != 1 || p.PairID != "p1" || !p.Result.HasOpportunity {
		t.Errorf("payload = %+v", p)
	}

	w2 := &captureWriter{}
	if err := PublishResults(context.Background(), w2, "run-2", "nba", nil, time.Now()); err != nil || len(w2.msgs) != 0 {
		t.Errorf("empty results should publish nothing")
	}
}
