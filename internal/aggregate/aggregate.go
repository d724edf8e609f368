package aggregate

import (
	"errors"
	"fmt"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/odds"
)

// ErrEmptyQuoteSet is returned when an event has no quotes from a source.
var ErrEmptyQuoteSet = errors.New("empty quote set")

// Priced is an outcome quote after conversion to an implied probability.
type Priced struct {
	Provider string
	Side     collectors.Side
	Implied  float64
}

// Price is an implied probability tagged with the provider that offered it.
type Price struct {
	Provider string  `json:"provider"`
	Implied  float64 `json:"implied"`
}

// Extremes holds the lowest and highest implied probability seen for one side.
// Lowest is the cheapest way to back that side and is what hedge math uses;
// Highest is kept for reporting.
type Extremes struct {
	Lowest  Price `json:"lowest"`
	Highest Price `json:"highest"`
	Count   int   `json:"count"`
}

// Summary is the per-side aggregate for one event from one source.
type Summary struct {
	Source collectors.Source `json:"source"`
	SideA  Extremes          `json:"side_a"`
	SideB  Extremes          `json:"side_b"`
}

// Side returns the extremes for the given role.
func (s Summary) Side(side collectors.Side) Extremes {
	if side == collectors.SideB {
		return s.SideB
	}
	return s.SideA
}

// Swapped returns the summary with side A and side B exchanged, used to orient one
// source's event onto the other's.
func (s Summary) Swapped() Summary {
	return Summary{Source: s.Source, SideA: s.SideB, SideB: s.SideA}
}

// Aggregate derives per-side lowest and highest implied probabilities. On ties the
// first-seen quote wins, so the result is deterministic for a fixed input order.
// An empty input, or one that never quotes a side, is ErrEmptyQuoteSet.
func Aggregate(src collectors.Source, quotes []Priced) (Summary, error) {
	if len(quotes) == 0 {
		return Summary{}, fmt.Errorf("%s: %w", src, ErrEmptyQuoteSet)
	}
	sum := Summary{Source: src}
	for _, q := range quotes {
		ext := &sum.SideA
		if q.Side == collectors.SideB {
			ext = &sum.SideB
		}
		p := Price{Provider: q.Provider, Implied: q.Implied}
		if ext.Count == 0 {
			ext.Lowest, ext.Highest = p, p
		} else {
			if q.Implied < ext.Lowest.Implied {
				ext.Lowest = p
			}
			if q.Implied > ext.Highest.Implied {
				ext.Highest = p
			}
		}
		ext.Count++
	}
	if sum.SideA.Count == 0 || sum.SideB.Count == 0 {
		return Summary{}, fmt.Errorf("%s: one side has no quotes: %w", src, ErrEmptyQuoteSet)
	}
	return sum, nil
}

// FromMarket turns one provider's priced two-way market into aggregator input. The
// raw implied probability is used, since that is the price actually obtainable.
func FromMarket(provider string, m odds.Market) []Priced {
	return []Priced{
		{Provider: provider, Side: collectors.SideA, Implied: m.Outcomes[0].Implied},
		{Provider: provider, Side: collectors.SideB, Implied: m.Outcomes[1].Implied},
	}
}
