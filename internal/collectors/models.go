package collectors

import (
	"context"
	"math"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/odds"
)

// Source identifies which of the two disjoint quote sources a line came from.
type Source string

const (
	SourceBookmaker Source = "bookmaker"
	SourceMarket    Source = "market"
)

// Side is a canonical outcome role. In the input contract side A is the away team.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Other returns the complementary side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Loader is implemented by whatever supplies a materialized snapshot for a run
// (files written by the fetch scripts, a Kafka message, a test fixture).
type Loader interface {
	Name() string
	Load(ctx context.Context) (Batch, error)
}

// Batch is every line for one sport, from both sources, for a single run.
type Batch struct {
	Bookmakers []Line `json:"bookmakers"`
	Markets    []Line `json:"markets"`
}

// Empty reports whether the batch carries no lines at all.
func (b Batch) Empty() bool {
	return len(b.Bookmakers) == 0 && len(b.Markets) == 0
}

// Line is one provider's two-way moneyline for one event. For bookmaker lines the
// prices are American odds; for market lines they are probabilities in (0,1).
type Line struct {
	Provider    string    `json:"provider"`
	EventID     string    `json:"event_id"`
	SideA       string    `json:"side_a"`
	SideB       string    `json:"side_b"`
	SideAPrice  float64   `json:"side_a_price"`
	SideBPrice  float64   `json:"side_b_price"`
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
	Status      string    `json:"status,omitempty"`
}

// Event returns the event identity carried by the line.
func (l Line) Event() Event {
	return Event{
		ID:          l.EventID,
		SideA:       l.SideA,
		SideB:       l.SideB,
		ScheduledAt: l.ScheduledAt,
		Status:      l.Status,
	}
}

// Quotes splits the line into its two outcome quotes.
func (l Line) Quotes(src Source) [2]Quote {
	return [2]Quote{
		{Source: src, Provider: l.Provider, EventID: l.EventID, Side: SideA, Price: NewPrice(src, l.SideAPrice)},
		{Source: src, Provider: l.Provider, EventID: l.EventID, Side: SideB, Price: NewPrice(src, l.SideBPrice)},
	}
}

// Event is a scheduled two-sided contest as seen by one source.
type Event struct {
	ID          string    `json:"id"`
	SideA       string    `json:"side_a"`
	SideB       string    `json:"side_b"`
	ScheduledAt time.Time `json:"scheduled_at,omitempty"`
	Status      string    `json:"status,omitempty"`
}

// Name returns the side with the given role.
func (e Event) Name(s Side) string {
	if s == SideB {
		return e.SideB
	}
	return e.SideA
}

// PriceFormat says how a quoted price should be read.
type PriceFormat string

const (
	FormatAmerican    PriceFormat = "american"
	FormatProbability PriceFormat = "probability"
)

// Price is either an American-odds integer or a market probability.
type Price struct {
	Format      PriceFormat `json:"format"`
	American    int         `json:"american,omitempty"`
	Probability float64     `json:"probability,omitempty"`
}

// NewPrice reads a raw numeric price according to the source's convention.
func NewPrice(src Source, raw float64) Price {
	if src == SourceBookmaker {
		return Price{Format: FormatAmerican, American: int(math.Round(raw))}
	}
	return Price{Format: FormatProbability, Probability: raw}
}

// Implied converts the price to an implied probability.
func (p Price) Implied() (float64, error) {
	if p.Format == FormatAmerican {
		return odds.AmericanToImpliedProbability(p.American)
	}
	return odds.MarketPriceToImpliedProbability(p.Probability)
}

// Quote is a single outcome price observed from one provider. Immutable once built.
type Quote struct {
	Source   Source `json:"source"`
	Provider string `json:"provider"`
	EventID  string `json:"event_id"`
	Side     Side   `json:"side"`
	Price    Price  `json:"price"`
}
