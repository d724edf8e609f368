package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/pipeline"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

func TestDecodeSnapshot(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"sport":"basketball_nba","bookmakers":[{"provider":"DK","event_id":"e1","side_a":"Heat","side_b":"Nuggets","side_a_price":-110,"side_b_price":-110}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if snap.League != "nba" || len(snap.Bookmakers) != 1 {
		t.Errorf("got %+v", snap)
	}
	if _, err := DecodeSnapshot([]byte(`{}`)); err == nil {
		t.Error("expected missing sport error")
	}
	if _, err := DecodeSnapshot([]byte(`not json`)); err == nil {
		t.Error("expected decode error")
	}
}

type fakeReader struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return kafkago.Message{Value: m}, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) Close() error { return nil }

func TestRunWithReaders(t *testing.T) {
	reader := &fakeReader{msgs: [][]byte{
		[]byte(`{"sport":"nba"}`),
		[]byte(`garbage`),
		[]byte(`{"sport":"nfl"}`),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan string, 3)
	done := make(chan struct{})
	go func() {
		RunWithReaders(ctx, 1, func() Reader { return reader }, func(_ context.Context, s models.Snapshot) error {
			seen <- s.Sport
			return errors.New("handler errors are logged, not fatal")
		})
		close(done)
	}()

	var got []string
	for len(got) < 2 {
		select {
		case s := <-seen:
			got = append(got, s)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}
	cancel()
	<-done
	if got[0] != "nba" || got[1] != "nfl" {
		t.Errorf("got %v", got)
	}
}

type memStore struct {
	reports []*pipeline.Report
}

func (m *memStore) InsertReport(_ context.Context, rep *pipeline.Report) error {
	m.reports = append(m.reports, rep)
	return nil
}

func TestProcessor(t *testing.T) {
	cfg := pipeline.Config{Finder: matcher.NewFinder(matcher.Config{Table: teams.DefaultRegistry().Table("nba")})}
	store := &memStore{}
	opps := cache.NewMemoryOpportunityCache()
	p := NewProcessor(cfg, store, nil, opps)

	snap := models.Snapshot{
		Sport: "nba",
		Bookmakers: []collectors.Line{
			{Provider: "DraftKings", EventID: "e1", SideA: "Houston Rockets", SideB: "Golden State Warriors", SideAPrice: -200, SideBPrice: 170},
		},
		Markets: []collectors.Line{
			{Provider: "Polymarket", EventID: "m1", SideA: "Rockets", SideB: "Warriors", SideAPrice: 0.60, SideBPrice: 0.41},
		},
	}
	rep, err := p.Process(context.Background(), snap)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(store.reports) != 1 || rep.OpportunityCount() != 1 {
		t.Fatalf("stored=%d opportunities=%d", len(store.reports), rep.OpportunityCount())
	}
	rec, ok, _ := opps.Get(context.Background(), rep.Results[0].PairID)
	if !ok || rec.ProfitPercent != rep.Results[0].ProfitPercent {
		t.Errorf("opportunity not cached: %+v", rec)
	}
}
