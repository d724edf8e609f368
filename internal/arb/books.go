package arb

import (
	"sort"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/odds"
)

// BookLeg is one bet of a bookmaker-vs-bookmaker hedge.
type BookLeg struct {
	Provider  string          `json:"provider"`
	Side      collectors.Side `json:"side"`
	Team      string          `json:"team"`
	American  int             `json:"american"`
	Implied   float64         `json:"implied"`
	StakeUSD  float64         `json:"stake_usd"`
	ReturnUSD float64         `json:"return_usd"`
}

// BookHedge is a guaranteed-profit pair of bets at two different bookmakers.
type BookHedge struct {
	Event               collectors.Event `json:"event"`
	Legs                [2]BookLeg       `json:"legs"`
	TotalImplied        float64          `json:"total_implied"`
	BudgetUSD           float64          `json:"budget_usd"`
	GuaranteedReturnUSD float64          `json:"guaranteed_return_usd"`
	ProfitUSD           float64          `json:"profit_usd"`
	ProfitPercent       float64          `json:"profit_percent"`
}

type bookQuote struct {
	provider string
	american [2]int
	implied  [2]float64
}

// FindBookmakerArbs checks every pair of bookmakers quoting the same event, in both
// directions (side A at the first, side B at the second, and the reverse). Lines with
// invalid odds are ignored. Hedges are sorted by profit, highest first.
func FindBookmakerArbs(lines []collectors.Line, cfg Config) []BookHedge {
	budget := cfg.budget()
	var order []string
	events := make(map[string]collectors.Event)
	quotes := make(map[string][]bookQuote)
	for _, l := range lines {
		q, ok := newBookQuote(l)
		if !ok {
			continue
		}
		if _, seen := events[l.EventID]; !seen {
			events[l.EventID] = l.Event()
			order = append(order, l.EventID)
		}
		quotes[l.EventID] = append(quotes[l.EventID], q)
	}

	var out []BookHedge
	for _, id := range order {
		event := events[id]
		qs := quotes[id]
		for i := 0; i < len(qs); i++ {
			for j := i + 1; j < len(qs); j++ {
				if h, ok := hedge(event, qs[i], collectors.SideA, qs[j], collectors.SideB, budget); ok {
					out = append(out, h)
				}
				if h, ok := hedge(event, qs[i], collectors.SideB, qs[j], collectors.SideA, budget); ok {
					out = append(out, h)
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProfitPercent > out[j].ProfitPercent })
	return out
}

func newBookQuote(l collectors.Line) (bookQuote, bool) {
	q := bookQuote{provider: l.Provider}
	for i, raw := range []float64{l.SideAPrice, l.SideBPrice} {
		price := collectors.NewPrice(collectors.SourceBookmaker, raw)
		p, err := price.Implied()
		if err != nil {
			return bookQuote{}, false
		}
		q.american[i] = price.American
		q.implied[i] = p
	}
	return q, true
}

func sideIndex(s collectors.Side) int {
	if s == collectors.SideB {
		return 1
	}
	return 0
}

func hedge(event collectors.Event, q1 bookQuote, s1 collectors.Side, q2 bookQuote, s2 collectors.Side, budget float64) (BookHedge, bool) {
	i1, i2 := sideIndex(s1), sideIndex(s2)
	total := q1.implied[i1] + q2.implied[i2]
	if total >= 1 {
		return BookHedge{}, false
	}
	d1, err := odds.AmericanToDecimal(q1.american[i1])
	if err != nil {
		return BookHedge{}, false
	}
	d2, err := odds.AmericanToDecimal(q2.american[i2])
	if err != nil {
		return BookHedge{}, false
	}
	split := SplitStake(d1, d2, budget)
	return BookHedge{
		Event: event,
		Legs: [2]BookLeg{
			{Provider: q1.provider, Side: s1, Team: event.Name(s1), American: q1.american[i1], Implied: q1.implied[i1], StakeUSD: split.Stake1, ReturnUSD: split.Return1},
			{Provider: q2.provider, Side: s2, Team: event.Name(s2), American: q2.american[i2], Implied: q2.implied[i2], StakeUSD: split.Stake2, ReturnUSD: split.Return2},
		},
		TotalImplied:        total,
		BudgetUSD:           budget,
		GuaranteedReturnUSD: split.Guaranteed,
		ProfitUSD:           split.Profit,
		ProfitPercent:       split.Profit / budget * 100,
	}, true
}
