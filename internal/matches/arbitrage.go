package matches

import (
	"github.com/hetulpatel/moneylinearb/internal/aggregate"
	"github.com/hetulpatel/moneylinearb/internal/collectors"
)

// Direction names which source supplies which side of the hedge.
type Direction string

const (
	DirectionNone                    Direction = ""
	DirectionBuyAMarketBuyBBookmaker Direction = "BUY_A_MARKET_BUY_B_BOOKMAKER"
	DirectionBuyABookmakerBuyBMarket Direction = "BUY_A_BOOKMAKER_BUY_B_MARKET"
)

// Leg is one side of a two-outcome hedge, sourced from one provider.
type Leg struct {
	Side        collectors.Side   `json:"side"`
	Team        string            `json:"team"`
	Source      collectors.Source `json:"source"`
	Provider    string            `json:"provider"`
	Probability float64           `json:"probability"`
	StakeUSD    float64           `json:"stake_usd"`
	PayoutUSD   float64           `json:"payout_usd"`
}

// Evaluation is the verdict for one leg combination.
type Evaluation struct {
	Direction      Direction `json:"direction"`
	CombinedCost   float64   `json:"combined_cost"`
	HasOpportunity bool      `json:"has_opportunity"`
	ProfitPercent  float64   `json:"profit_percent"`
	Legs           [2]Leg    `json:"legs"`
}

// Result is the arbitrage verdict for one matched event. It is computed once per run
// and never mutated afterwards.
type Result struct {
	PairID      string             `json:"pair_id"`
	Event       collectors.Event   `json:"event"`
	MarketEvent collectors.Event   `json:"market_event"`
	Swapped     bool               `json:"swapped"`
	Verdict     *ResolutionVerdict `json:"resolution_verdict,omitempty"`

	HasOpportunity bool        `json:"has_opportunity"`
	CombinedCost   float64     `json:"combined_cost"`
	ProfitPercent  float64     `json:"profit_percent"`
	Best           Evaluation  `json:"best"`
	Alternative    *Evaluation `json:"alternative,omitempty"`

	BudgetUSD           float64 `json:"budget_usd"`
	GuaranteedReturnUSD float64 `json:"guaranteed_return_usd"`
	ProfitUSD           float64 `json:"profit_usd"`

	BookmakerQuotes aggregate.Summary `json:"bookmaker_quotes"`
	MarketQuotes    aggregate.Summary `json:"market_quotes"` // oriented onto the bookmaker event's sides
}

// Leg returns the winning leg that backs the given side.
func (r Result) Leg(side collectors.Side) Leg {
	for _, l := range r.Best.Legs {
		if l.Side == side {
			return l
		}
	}
	return Leg{}
}
