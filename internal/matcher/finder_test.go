package matcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

func ev(id, a, b string) collectors.Event {
	return collectors.Event{ID: id, SideA: a, SideB: b}
}

func nbaFinder(cfg Config) *Finder {
	cfg.Table = teams.DefaultRegistry().Table("nba")
	return NewFinder(cfg)
}

func TestFindMatch(t *testing.T) {
	f := nbaFinder(Config{})
	pool := []collectors.Event{
		ev("m1", "Miami Heat", "Denver Nuggets"),
		ev("m2", "Lakers", "Celtics"),
	}
	tests := []struct {
		name        string
		target      collectors.Event
		wantID      string
		wantSwapped bool
		wantOK      bool
	}{
		{"same orientation", ev("b1", "Los Angeles Lakers", "Boston Celtics"), "m2", false, true},
		{"swapped orientation", ev("b2", "Boston Celtics", "LA Lakers"), "m2", true, true},
		{"no match", ev("b3", "Houston Rockets", "Utah Jazz"), "", false, false},
		{"one side only", ev("b4", "Miami Heat", "Boston Celtics"), "", false, false},
	}
	for _, tt := range tests {
		m, ok := f.FindMatch(tt.target, pool)
		if ok != tt.wantOK {
			t.Fatalf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
		}
		if !ok {
			continue
		}
		if m.Candidate.ID != tt.wantID || m.Swapped != tt.wantSwapped {
			t.Errorf("%s: got %s swapped=%v", tt.name, m.Candidate.ID, m.Swapped)
		}
		if m.Target.ID != tt.target.ID {
			t.Errorf("%s: target not carried", tt.name)
		}
	}
}

func TestFindMatchIsSymmetric(t *testing.T) {
	f := nbaFinder(Config{})
	pairs := [][2]collectors.Event{
		{ev("x", "Houston Rockets", "Golden State Warriors"), ev("y", "Warriors", "Rockets")},
		{ev("x", "Miami Heat", "Denver Nuggets"), ev("y", "Heat", "Nuggets")},
		{ev("x", "Miami Heat", "Denver Nuggets"), ev("y", "Lakers", "Nuggets")},
	}
	for _, p := range pairs {
		_, xy := f.FindMatch(p[0], []collectors.Event{p[1]})
		_, yx := f.FindMatch(p[1], []collectors.Event{p[0]})
		if xy != yx {
			t.Errorf("asymmetric match for %v / %v: %v vs %v", p[0], p[1], xy, yx)
		}
	}
}

func TestFindMatchFirstWins(t *testing.T) {
	f := nbaFinder(Config{})
	pool := []collectors.Event{ev("m1", "Lakers", "Celtics"), ev("m2", "Los Angeles Lakers", "Boston Celtics")}
	m, ok := f.FindMatch(ev("b", "Lakers", "Celtics"), pool)
	if !ok || m.Candidate.ID != "m1" {
		t.Errorf("expected first candidate, got %+v", m)
	}
}

func TestFindMatchPrefersExactOrientation(t *testing.T) {
	f := nbaFinder(Config{})
	// "nets" is a substring of "hornets", so both orientations are equivalent.
	m, ok := f.FindMatch(ev("b", "Brooklyn Nets", "Charlotte Hornets"), []collectors.Event{ev("m", "Hornets", "Nets")})
	if !ok || !m.Swapped {
		t.Errorf("expected swapped match, got ok=%v %+v", ok, m)
	}
}

func TestMatchCandidateSide(t *testing.T) {
	m := Match{Swapped: true}
	if m.CandidateSide(collectors.SideA) != collectors.SideB {
		t.Error("swapped match should map A to B")
	}
	if (Match{}).CandidateSide(collectors.SideB) != collectors.SideB {
		t.Error("direct match should keep sides")
	}
}

func TestFindBest(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 30, 0, 0, time.UTC)
	at := func(e collectors.Event, d time.Duration) collectors.Event {
		e.ScheduledAt = start.Add(d)
		return e
	}
	f := nbaFinder(Config{Policy: PolicyScored, MaxStartSkew: 6 * time.Hour})
	target := at(ev("b1", "Brooklyn Nets", "Charlotte Hornets"), 0)

	t.Run("exact beats substring", func(t *testing.T) {
		pool := []collectors.Event{
			at(ev("sub", "BKN Nets", "CHA Hornets"), 0),
			at(ev("exact", "Nets", "Hornets"), time.Hour),
		}
		out := f.FindBest(target, pool)
		if out.Status != StatusMatched || out.Match.Candidate.ID != "exact" {
			t.Errorf("got %v %+v", out.Status, out.Match)
		}
	})

	t.Run("closer start wins", func(t *testing.T) {
		pool := []collectors.Event{
			at(ev("late", "Nets", "Hornets"), 3*time.Hour),
			at(ev("near", "Hornets", "Nets"), 10*time.Minute),
		}
		out := f.FindBest(target, pool)
		if out.Status != StatusMatched || out.Match.Candidate.ID != "near" || !out.Match.Swapped {
			t.Errorf("got %v %+v", out.Status, out.Match)
		}
	})

	t.Run("skew rejects", func(t *testing.T) {
		pool := []collectors.Event{at(ev("tomorrow", "Nets", "Hornets"), 24*time.Hour)}
		if out := f.FindBest(target, pool); out.Status != StatusUnmatched {
			t.Errorf("expected unmatched, got %v", out.Status)
		}
	})

	t.Run("tie is ambiguous", func(t *testing.T) {
		pool := []collectors.Event{
			at(ev("c1", "Nets", "Hornets"), time.Hour),
			at(ev("c2", "Hornets", "Nets"), -time.Hour),
			at(ev("c3", "Lakers", "Celtics"), 0),
		}
		out := f.FindBest(target, pool)
		if out.Status != StatusAmbiguous || len(out.Candidates) != 2 {
			t.Fatalf("got %v with %d candidates", out.Status, len(out.Candidates))
		}
		if out.Candidates[0].Candidate.ID != "c1" || out.Candidates[1].Candidate.ID != "c2" {
			t.Errorf("tied candidates should keep pool order: %+v", out.Candidates)
		}
	})
}

type stubResolver struct {
	idx   int
	err   error
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, _ collectors.Event, _ []collectors.Event) (int, string, error) {
	s.calls++
	return s.idx, "stub", s.err
}

func TestFindResolvesAmbiguity(t *testing.T) {
	pool := []collectors.Event{ev("c1", "Nets", "Hornets"), ev("c2", "Hornets", "Nets")}
	target := ev("b1", "Brooklyn Nets", "Charlotte Hornets")
	res := &stubResolver{idx: 1}
	verdicts := cache.NewMemoryVerdictCache()
	f := nbaFinder(Config{Policy: PolicyScored, Resolver: res, VerdictCache: verdicts})

	out := f.Find(context.Background(), target, pool)
	if out.Status != StatusMatched || out.Match.Candidate.ID != "c2" || !out.Match.Swapped {
		t.Fatalf("got %v %+v", out.Status, out.Match)
	}
	if out.Verdict == nil || out.Verdict.Cached {
		t.Errorf("expected fresh verdict, got %+v", out.Verdict)
	}

	out = f.Find(context.Background(), target, pool)
	if res.calls != 1 {
		t.Errorf("resolver called %d times, want 1 (second call should hit cache)", res.calls)
	}
	if out.Verdict == nil || !out.Verdict.Cached || out.Match.Candidate.ID != "c2" {
		t.Errorf("expected cached verdict for c2, got %+v", out)
	}
}

func TestFindResolverFailureStaysAmbiguous(t *testing.T) {
	pool := []collectors.Event{ev("c1", "Nets", "Hornets"), ev("c2", "Hornets", "Nets")}
	target := ev("b1", "Brooklyn Nets", "Charlotte Hornets")
	for _, res := range []*stubResolver{{idx: -1}, {err: errors.New("boom")}} {
		f := nbaFinder(Config{Policy: PolicyScored, Resolver: res})
		if out := f.Find(context.Background(), target, pool); out.Status != StatusAmbiguous {
			t.Errorf("resolver %+v: expected ambiguous, got %v", res, out.Status)
		}
	}
}

func TestFindFirstPolicy(t *testing.T) {
	f := nbaFinder(Config{})
	pool := []collectors.Event{ev("c1", "Nets", "Hornets"), ev("c2", "Hornets", "Nets")}
	out := f.Find(context.Background(), ev("b1", "Brooklyn Nets", "Charlotte Hornets"), pool)
	if out.Status != StatusMatched || out.Match.Candidate.ID != "c1" {
		t.Errorf("first policy should take c1, got %v %+v", out.Status, out.Match)
	}
	out = f.Find(context.Background(), ev("b2", "Utah Jazz", "Phoenix Suns"), pool)
	if out.Status != StatusUnmatched {
		t.Errorf("expected unmatched, got %v", out.Status)
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("Scored") != PolicyScored || ParsePolicy("") != PolicyFirst || ParsePolicy("bogus") != PolicyFirst {
		t.Error("unexpected policy parse")
	}
}

func TestLoggerAppendsMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.log")
	f := nbaFinder(Config{Logger: NewLogger(LogModeSummary, path)})
	pool := []collectors.Event{ev("m1", "Heat", "Nuggets")}
	f.Find(context.Background(), ev("b1", "Miami Heat", "Denver Nuggets"), pool)
	f.Find(context.Background(), ev("b2", "Utah Jazz", "Phoenix Suns"), pool)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], `"m1"`) {
		t.Errorf("unexpected match log: %q", data)
	}
}

func TestOrientation(t *testing.T) {
	f := NewFinder(Config{Table: teams.DefaultRegistry().Table("nba")})
	a := collectors.Event{SideA: "Miami Heat", SideB: "Denver Nuggets"}
	tests := []struct {
		name        string
		b           collectors.Event
		wantSwapped bool
		wantOK      bool
	}{
		{"same order", collectors.Event{SideA: "Heat", SideB: "Nuggets"}, false, true},
		{"reversed", collectors.Event{SideA: "Denver Nuggets", SideB: "Miami Heat"}, true, true},
		{"other game", collectors.Event{SideA: "Boston Celtics", SideB: "LA Lakers"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			swapped, ok := f.Orientation(a, tt.b)
			if swapped != tt.wantSwapped || ok != tt.wantOK {
				t.Errorf("Orientation = (%v, %v), want (%v, %v)", swapped, ok, tt.wantSwapped, tt.wantOK)
			}
		})
	}
}
