package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

func bookLine(provider, id, away, home string, a, b float64) collectors.Line {
	return collectors.Line{Provider: provider, EventID: id, SideA: away, SideB: home, SideAPrice: a, SideBPrice: b}
}

func fixture() models.Snapshot {
	return models.Snapshot{
		Sport:      "basketball_nba",
		League:     "nba",
		CapturedAt: time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC),
		Bookmakers: []collectors.Line{
			bookLine("DraftKings", "e1", "Miami Heat", "Denver Nuggets", -110, -110),
			bookLine("FanDuel", "e1", "Miami Heat", "Denver Nuggets", 108, -130),
			bookLine("DraftKings", "e2", "Utah Jazz", "Phoenix Suns", -120, 100),
			bookLine("Broken", "e3", "Boston Celtics", "LA Lakers", 0, 150),
			bookLine("DraftKings", "e4", "Houston Rockets", "Golden State Warriors", -200, 170),
		},
		Markets: []collectors.Line{
			bookLine("Polymarket", "m1", "Nuggets", "Heat", 0.55, 0.47),
			bookLine("Polymarket", "m4", "Rockets", "Warriors", 0.60, 0.41),
			bookLine("Polymarket", "m9", "Celtics", "Lakers", 1.0, 0.0),
		},
	}
}

func testConfig(workers int) Config {
	return Config{
		Finder:  matcher.NewFinder(matcher.Config{Table: teams.DefaultRegistry().Table("nba")}),
		Workers: workers,
	}
}

func TestRun(t *testing.T) {
	rep, err := Run(context.Background(), fixture(), testConfig(2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.RunID == "" || rep.Sport != "basketball_nba" {
		t.Errorf("report identity = %q %q", rep.RunID, rep.Sport)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(rep.Results))
	}

	first, second := rep.Results[0], rep.Results[1]
	if first.Event.ID != "e4" || second.Event.ID != "e1" {
		t.Errorf("ranking = %s, %s; want e4, e1", first.Event.ID, second.Event.ID)
	}
	if !first.HasOpportunity || math.Abs(first.CombinedCost-(0.60+100.0/270)) > 1e-9 {
		t.Errorf("e4 = opp %v cost %v", first.HasOpportunity, first.CombinedCost)
	}
	if !second.Swapped || second.MarketEvent.ID != "m1" {
		t.Errorf("e1 should match m1 swapped, got %+v", second.MarketEvent)
	}
	// Heat on the market (0.47) plus the cheapest Nuggets price (DraftKings -110).
	if math.Abs(second.CombinedCost-(0.47+110.0/210)) > 1e-9 {
		t.Errorf("e1 cost = %v", second.CombinedCost)
	}
	if leg := second.Leg(collectors.SideB); leg.Provider != "DraftKings" || leg.Source != collectors.SourceBookmaker {
		t.Errorf("e1 side B leg = %+v", leg)
	}

	if len(rep.Unmatched) != 1 || rep.Unmatched[0].ID != "e2" {
		t.Errorf("unmatched = %+v", rep.Unmatched)
	}
	if len(rep.Skipped) != 2 {
		t.Errorf("skipped = %+v", rep.Skipped)
	}
	if len(rep.Lines) != 6 {
		t.Errorf("priced lines = %d, want 6", len(rep.Lines))
	}
	for _, l := range rep.Lines {
		if sum := l.Market.Outcomes[0].True + l.Market.Outcomes[1].True; math.Abs(sum-1) > 1e-9 {
			t.Errorf("line %s/%s true probabilities sum to %v", l.Line.Provider, l.Line.EventID, sum)
		}
	}
	if rep.OpportunityCount() != 2 {
		t.Errorf("opportunities = %d", rep.OpportunityCount())
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	var want []string
	for _, workers := range []int{1, 3, 16} {
		rep, err := Run(context.Background(), fixture(), testConfig(workers))
		if err != nil {
			t.Fatal(err)
		}
		var got []string
		for _, r := range rep.Results {
			got = append(got, r.PairID)
		}
		if want == nil {
			want = got
			continue
		}
		if len(got) != len(want) {
			t.Fatalf("workers=%d: %v vs %v", workers, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("workers=%d: order differs: %v vs %v", workers, got, want)
			}
		}
	}
}

func TestRunEmptySnapshot(t *testing.T) {
	rep, err := Run(context.Background(), models.Snapshot{Sport: "nba"}, testConfig(0))
	if err != nil {
		t.Fatalf("empty snapshot should not fail: %v", err)
	}
	if len(rep.Results) != 0 || len(rep.Unmatched) != 0 || len(rep.Skipped) != 0 {
		t.Errorf("expected empty report, got %+v", rep)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(context.Background(), fixture(), Config{}); err == nil {
		t.Error("expected error without finder")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, fixture(), testConfig(1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunRecordsAmbiguity(t *testing.T) {
	snap := models.Snapshot{
		Sport: "nba",
		Bookmakers: []collectors.Line{
			bookLine("DraftKings", "b1", "Brooklyn Nets", "Charlotte Hornets", 120, -140),
		},
		Markets: []collectors.Line{
			bookLine("Polymarket", "c1", "Nets", "Hornets", 0.45, 0.56),
			bookLine("Polymarket", "c2", "Hornets", "Nets", 0.56, 0.45),
		},
	}
	cfg := testConfig(1)
	cfg.Finder = matcher.NewFinder(matcher.Config{Table: teams.DefaultRegistry().Table("nba"), Policy: matcher.PolicyScored})
	rep, err := Run(context.Background(), snap, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Results) != 0 || len(rep.Ambiguous) != 1 || len(rep.Ambiguous[0].Candidates) != 2 {
		t.Errorf("expected one ambiguity with two candidates, got results=%d ambiguous=%+v", len(rep.Results), rep.Ambiguous)
	}
}

func TestPriceLine(t *testing.T) {
	m, err := PriceLine(collectors.SourceBookmaker, bookLine("X", "e", "A", "B", 150, -150))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m.Outcomes[0].True-0.4) > 1e-9 || math.Abs(m.Margin) > 1e-9 {
		t.Errorf("got %+v", m)
	}
	if _, err := PriceLine(collectors.SourceMarket, bookLine("P", "e", "A", "B", 0.5, 1.2)); err == nil {
		t.Error("expected invalid price error")
	}
}

func TestRunOrientsLinesWithinEvent(t *testing.T) {
	snap := models.Snapshot{
		Sport: "basketball_nba",
		Bookmakers: []collectors.Line{
			bookLine("DraftKings", "e1", "Miami Heat", "Denver Nuggets", -110, -110),
			// Same game, teams listed home first.
			bookLine("FanDuel", "e1", "Denver Nuggets", "Miami Heat", -130, 108),
			bookLine("Mislabeled", "e1", "Boston Celtics", "LA Lakers", 150, -170),
		},
		Markets: []collectors.Line{
			bookLine("Polymarket", "m1", "Heat", "Nuggets", 0.47, 0.55),
		},
	}
	rep, err := Run(context.Background(), snap, testConfig(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].Provider != "Mislabeled" {
		t.Errorf("skipped = %+v", rep.Skipped)
	}
	if len(rep.Results) != 1 {
		t.Fatalf("got %d results", len(rep.Results))
	}
	book := rep.Results[0].BookmakerQuotes
	if book.SideA.Lowest.Provider != "FanDuel" || math.Abs(book.SideA.Lowest.Implied-100.0/208) > 1e-9 {
		t.Errorf("Heat lowest = %+v", book.SideA.Lowest)
	}
	if book.SideB.Lowest.Provider != "DraftKings" || book.SideA.Count != 2 || book.SideB.Count != 2 {
		t.Errorf("Nuggets = %+v", book.SideB)
	}
	fd := rep.Lines[1].Line
	if fd.Provider != "FanDuel" || fd.SideA != "Miami Heat" || fd.SideAPrice != 108 {
		t.Errorf("stored FanDuel line not oriented: %+v", fd)
	}
}
