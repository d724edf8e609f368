package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/moneylinearb/internal/aggregate"
	"github.com/hetulpatel/moneylinearb/internal/arb"
	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/matches"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/odds"
	"github.com/hetulpatel/moneylinearb/internal/rank"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

const defaultWorkers = 4

type Config struct {
	// Finders picks the matcher for each snapshot's league.
	Finders *Finders
	// Finder, when Finders is nil, is used for every snapshot regardless of league.
	Finder  *matcher.Finder
	Arb     arb.Config
	Workers int
	Now     func() time.Time
}

func (c Config) finderFor(league string) *matcher.Finder {
	if c.Finders != nil {
		return c.Finders.For(league)
	}
	return c.Finder
}

// PricedLine is an input line after conversion and de-vig.
type PricedLine struct {
	Source collectors.Source `json:"source"`
	Line   collectors.Line   `json:"line"`
	Market odds.Market       `json:"market"`
}

// Skip records input that was dropped without failing the run.
type Skip struct {
	Source   collectors.Source `json:"source"`
	Provider string            `json:"provider,omitempty"`
	EventID  string            `json:"event_id"`
	Reason   string            `json:"reason"`
}

// Ambiguity is a bookmaker event that tied between several market events.
type Ambiguity struct {
	Event      collectors.Event   `json:"event"`
	Candidates []collectors.Event `json:"candidates"`
}

// Report is everything one run produced. Results are ranked.
type Report struct {
	RunID      string             `json:"run_id"`
	Sport      string             `json:"sport"`
	League     string             `json:"league"`
	CapturedAt time.Time          `json:"captured_at"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Results    []matches.Result   `json:"results"`
	Unmatched  []collectors.Event `json:"unmatched"`
	Ambiguous  []Ambiguity        `json:"ambiguous"`
	Skipped    []Skip             `json:"skipped"`
	BookHedges []arb.BookHedge    `json:"book_hedges"`
	Lines      []PricedLine       `json:"lines"`
}

// OpportunityCount returns how many results carry a hedge.
func (r *Report) OpportunityCount() int {
	n := 0
	for _, res := range r.Results {
		if res.HasOpportunity {
			n++
		}
	}
	return n
}

type grouped struct {
	events map[string]collectors.Event
	order  []collectors.Event
	quotes map[string][]aggregate.Priced
	finder *matcher.Finder
}

func newGrouped(finder *matcher.Finder) *grouped {
	return &grouped{
		events: make(map[string]collectors.Event),
		quotes: make(map[string][]aggregate.Priced),
		finder: finder,
	}
}

// orient lines a line up with the event already filed under its ID. A line listing
// the teams in the opposite order comes back with names and prices swapped; one
// naming different teams is an error. The first line of an event is returned as is.
func (g *grouped) orient(l collectors.Line) (collectors.Line, error) {
	ev, seen := g.events[l.EventID]
	if !seen {
		return l, nil
	}
	swapped, ok := g.finder.Orientation(ev, l.Event())
	if !ok {
		return l, fmt.Errorf("teams %q/%q differ from event %q/%q", l.SideA, l.SideB, ev.SideA, ev.SideB)
	}
	if swapped {
		l.SideA, l.SideB = l.SideB, l.SideA
		l.SideAPrice, l.SideBPrice = l.SideBPrice, l.SideAPrice
	}
	return l, nil
}

func (g *grouped) add(l collectors.Line, m odds.Market) {
	if _, seen := g.events[l.EventID]; !seen {
		ev := l.Event()
		g.events[l.EventID] = ev
		g.order = append(g.order, ev)
	}
	g.quotes[l.EventID] = append(g.quotes[l.EventID], aggregate.FromMarket(l.Provider, m)...)
}

type slot struct {
	result    *matches.Result
	unmatched bool
	ambiguous *Ambiguity
	skip      *Skip
}

// Run evaluates one snapshot end to end. Bad quotes and unmatched events are
// recorded in the report, never returned as errors; only context cancellation
// aborts a run.
func Run(ctx context.Context, snap models.Snapshot, cfg Config) (*Report, error) {
	league := snap.League
	if league == "" {
		league = teams.LeagueFromSport(snap.Sport)
	}
	finder := cfg.finderFor(league)
	if finder == nil {
		return nil, fmt.Errorf("pipeline: finder is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:      uuid.NewString(),
		Sport:      snap.Sport,
		League:     league,
		CapturedAt: snap.CapturedAt,
		StartedAt:  now().UTC(),
	}

	books := newGrouped(finder)
	markets := newGrouped(finder)
	var validBookLines []collectors.Line
	for _, src := range []struct {
		source collectors.Source
		lines  []collectors.Line
		into   *grouped
	}{
		{collectors.SourceBookmaker, snap.Bookmakers, books},
		{collectors.SourceMarket, snap.Markets, markets},
	} {
		for _, raw := range src.lines {
			l, err := src.into.orient(raw)
			var m odds.Market
			if err == nil {
				m, err = PriceLine(src.source, l)
			}
			if err != nil {
				logging.Warnf("[pipeline] skip %s line provider=%s event=%s: %v", src.source, raw.Provider, raw.EventID, err)
				rep.Skipped = append(rep.Skipped, Skip{Source: src.source, Provider: raw.Provider, EventID: raw.EventID, Reason: err.Error()})
				continue
			}
			src.into.add(l, m)
			rep.Lines = append(rep.Lines, PricedLine{Source: src.source, Line: l, Market: m})
			if src.source == collectors.SourceBookmaker {
				validBookLines = append(validBookLines, l)
			}
		}
	}

	slots := make([]slot, len(books.order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ev := range books.order {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = evaluateEvent(gctx, finder, cfg.Arb, ev, books.quotes[ev.ID], markets)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []matches.Result
	for i, s := range slots {
		switch {
		case s.result != nil:
			results = append(results, *s.result)
		case s.ambiguous != nil:
			rep.Ambiguous = append(rep.Ambiguous, *s.ambiguous)
		case s.skip != nil:
			rep.Skipped = append(rep.Skipped, *s.skip)
		case s.unmatched:
			logging.Infof("[pipeline] no market match for %s", matcher.Describe(books.order[i]))
			rep.Unmatched = append(rep.Unmatched, books.order[i])
		}
	}
	rep.Results = rank.Rank(results)
	rep.BookHedges = arb.FindBookmakerArbs(validBookLines, cfg.Arb)
	rep.FinishedAt = now().UTC()

	logging.WithFields(logging.Fields{
		"run_id":        rep.RunID,
		"sport":         rep.Sport,
		"events":        len(books.order),
		"results":       len(rep.Results),
		"opportunities": rep.OpportunityCount(),
		"unmatched":     len(rep.Unmatched),
		"ambiguous":     len(rep.Ambiguous),
		"skipped":       len(rep.Skipped),
		"book_hedges":   len(rep.BookHedges),
	}).Info("[pipeline] run complete")
	return rep, nil
}

func evaluateEvent(ctx context.Context, finder *matcher.Finder, arbCfg arb.Config, ev collectors.Event, bookQuotes []aggregate.Priced, markets *grouped) slot {
	out := finder.Find(ctx, ev, markets.order)
	switch out.Status {
	case matcher.StatusUnmatched:
		return slot{unmatched: true}
	case matcher.StatusAmbiguous:
		amb := &Ambiguity{Event: ev}
		for _, c := range out.Candidates {
			amb.Candidates = append(amb.Candidates, c.Candidate)
		}
		return slot{ambiguous: amb}
	}

	bookSum, err := aggregate.Aggregate(collectors.SourceBookmaker, bookQuotes)
	if err != nil {
		return slot{skip: &Skip{Source: collectors.SourceBookmaker, EventID: ev.ID, Reason: err.Error()}}
	}
	candidate := out.Match.Candidate
	marketSum, err := aggregate.Aggregate(collectors.SourceMarket, markets.quotes[candidate.ID])
	if err != nil {
		return slot{skip: &Skip{Source: collectors.SourceMarket, EventID: candidate.ID, Reason: err.Error()}}
	}
	res := arb.EvaluatePair(out.Match, bookSum, marketSum, arbCfg)
	res.Verdict = out.Verdict
	if res.HasOpportunity {
		logging.Infof("[pipeline] opportunity %s cost=%.4f profit=%.2f%%", matcher.Describe(ev), res.CombinedCost, res.ProfitPercent)
	}
	return slot{result: &res}
}

// PriceLine converts both prices on a line to implied probabilities and de-vigs them.
func PriceLine(src collectors.Source, l collectors.Line) (odds.Market, error) {
	var implied [2]float64
	for i, q := range l.Quotes(src) {
		p, err := q.Price.Implied()
		if err != nil {
			return odds.Market{}, fmt.Errorf("side %s: %w", q.Side, err)
		}
		implied[i] = p
	}
	return odds.RemoveVig(implied)
}
