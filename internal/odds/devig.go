package odds

import (
	"errors"
	"fmt"
)

// ErrDegenerateMarket is returned when a market's implied probabilities sum to zero.
var ErrDegenerateMarket = errors.New("degenerate market")

// Outcome is one side of a two-way market after vig removal.
type Outcome struct {
	Implied float64 `json:"implied"` // raw, includes the margin
	True    float64 `json:"true"`    // normalized
}

// Market is a de-vigged two-way (no draw) moneyline market.
type Market struct {
	Outcomes [2]Outcome `json:"outcomes"`
	// Margin is sum(implied) - 1. Negative when the quote is arbitrage-free by construction.
	Margin float64 `json:"margin"`
}

// MarginPercent returns the vig as a percentage (4.76 for a -110/-110 market).
func (m Market) MarginPercent() float64 {
	return m.Margin * 100
}

// RemoveVig normalizes two implied probabilities so they sum to 1.
//
// Side A: -110 (52.38% implied) | Side B: -110 (52.38% implied)
// Overround: 104.76% (4.76% vig)
// Fair: 50% / 50%
func RemoveVig(implied [2]float64) (Market, error) {
	total := implied[0] + implied[1]
	if total == 0 {
		return Market{}, fmt.Errorf("%w: implied probabilities sum to zero", ErrDegenerateMarket)
	}
	return Market{
		Outcomes: [2]Outcome{
			{Implied: implied[0], True: implied[0] / total},
			{Implied: implied[1], True: implied[1] / total},
		},
		Margin: total - 1,
	}, nil
}

// DeVigAmerican converts a bookmaker's two American prices and removes the vig.
func DeVigAmerican(a, b int) (Market, error) {
	pa, err := AmericanToImpliedProbability(a)
	if err != nil {
		return Market{}, fmt.Errorf("side A: %w", err)
	}
	pb, err := AmericanToImpliedProbability(b)
	if err != nil {
		return Market{}, fmt.Errorf("side B: %w", err)
	}
	return RemoveVig([2]float64{pa, pb})
}

// DeVigMarket validates two prediction-market prices and removes the vig.
func DeVigMarket(a, b float64) (Market, error) {
	pa, err := MarketPriceToImpliedProbability(a)
	if err != nil {
		return Market{}, fmt.Errorf("side A: %w", err)
	}
	pb, err := MarketPriceToImpliedProbability(b)
	if err != nil {
		return Market{}, fmt.Errorf("side B: %w", err)
	}
	return RemoveVig([2]float64{pa, pb})
}
