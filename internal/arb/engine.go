package arb

import (
	"github.com/hetulpatel/moneylinearb/internal/aggregate"
	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/matches"
	"github.com/hetulpatel/moneylinearb/internal/odds"
)

const defaultBudgetUSD = 100

type Config struct {
	BudgetUSD float64
}

func (c Config) budget() float64 {
	if c.BudgetUSD <= 0 {
		return defaultBudgetUSD
	}
	return c.BudgetUSD
}

// Evaluation is the verdict for one pair of leg probabilities.
type Evaluation struct {
	ProbA          float64
	ProbB          float64
	CombinedCost   float64
	HasOpportunity bool
	ProfitPercent  float64
}

// Evaluate prices a two-leg hedge. An opportunity exists only when the combined cost
// is strictly below 1; a cost of exactly 1 breaks even and is not one.
func Evaluate(probA, probB float64) Evaluation {
	ev := Evaluation{ProbA: probA, ProbB: probB, CombinedCost: probA + probB}
	if ev.CombinedCost > 0 && ev.CombinedCost < 1 {
		ev.HasOpportunity = true
		ev.ProfitPercent = (1 - ev.CombinedCost) / ev.CombinedCost * 100
	}
	return ev
}

// EvaluatePair crosses the two sources for a matched event: market side A against
// bookmaker side B, and bookmaker side A against market side B. The cheaper
// combination is the usable one; the other is kept as the alternative. The market
// summary is in the candidate's own orientation and is re-oriented with the match.
func EvaluatePair(m matcher.Match, book, market aggregate.Summary, cfg Config) matches.Result {
	if m.Swapped {
		market = market.Swapped()
	}
	event := m.Target

	marketFirst := combine(matches.DirectionBuyAMarketBuyBBookmaker,
		legFrom(collectors.SideA, event, collectors.SourceMarket, market),
		legFrom(collectors.SideB, event, collectors.SourceBookmaker, book))
	bookFirst := combine(matches.DirectionBuyABookmakerBuyBMarket,
		legFrom(collectors.SideA, event, collectors.SourceBookmaker, book),
		legFrom(collectors.SideB, event, collectors.SourceMarket, market))

	best, alt := marketFirst, bookFirst
	if bookFirst.CombinedCost < marketFirst.CombinedCost {
		best, alt = bookFirst, marketFirst
	}

	res := matches.Result{
		PairID:          matches.PairID(m.Target, m.Candidate),
		Event:           event,
		MarketEvent:     m.Candidate,
		Swapped:         m.Swapped,
		HasOpportunity:  best.HasOpportunity,
		CombinedCost:    best.CombinedCost,
		ProfitPercent:   best.ProfitPercent,
		Alternative:     &alt,
		BudgetUSD:       cfg.budget(),
		BookmakerQuotes: book,
		MarketQuotes:    market,
	}

	a, b := best.Legs[0], best.Legs[1]
	split := SplitStake(decimalFromProbability(a.Probability), decimalFromProbability(b.Probability), res.BudgetUSD)
	best.Legs[0].StakeUSD, best.Legs[0].PayoutUSD = split.Stake1, split.Return1
	best.Legs[1].StakeUSD, best.Legs[1].PayoutUSD = split.Stake2, split.Return2
	res.Best = best
	res.GuaranteedReturnUSD = split.Guaranteed
	res.ProfitUSD = split.Profit
	return res
}

func legFrom(side collectors.Side, event collectors.Event, src collectors.Source, sum aggregate.Summary) matches.Leg {
	low := sum.Side(side).Lowest
	return matches.Leg{
		Side:        side,
		Team:        event.Name(side),
		Source:      src,
		Provider:    low.Provider,
		Probability: low.Implied,
	}
}

func combine(dir matches.Direction, legA, legB matches.Leg) matches.Evaluation {
	ev := Evaluate(legA.Probability, legB.Probability)
	return matches.Evaluation{
		Direction:      dir,
		CombinedCost:   ev.CombinedCost,
		HasOpportunity: ev.HasOpportunity,
		ProfitPercent:  ev.ProfitPercent,
		Legs:           [2]matches.Leg{legA, legB},
	}
}

// decimalFromProbability is 0 for a probability outside (0,1), which SplitStake
// turns into a zero split.
func decimalFromProbability(p float64) float64 {
	d, err := odds.ProbabilityToDecimal(p)
	if err != nil {
		return 0
	}
	return d
}
