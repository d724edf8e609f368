package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/matches"
)

// Header is the column order of the results CSV.
var Header = []string{
	"Date",
	"Time",
	"Away Team",
	"Home Team",
	"Status",
	"Arb Opportunity",
	"Lowest Away Bookmaker",
	"Lowest Away Implied Prob (%)",
	"Lowest Home Bookmaker",
	"Lowest Home Implied Prob (%)",
	"Market Away Implied Prob (%)",
	"Market Home Implied Prob (%)",
	"Profit %",
	"Best Option Cost",
	"Away Leg",
	"Home Leg",
}

// Row is one flat results record.
type Row struct {
	Date                string
	Time                string
	AwayTeam            string
	HomeTeam            string
	Status              string
	Opportunity         bool
	LowestAwayBookmaker string
	LowestAwayImplied   float64 // percent
	LowestHomeBookmaker string
	LowestHomeImplied   float64
	MarketAwayImplied   float64
	MarketHomeImplied   float64
	ProfitPercent       float64
	BestCost            float64
	AwayLeg             string // "source:provider"
	HomeLeg             string
}

// FromResult flattens a result. Times are rendered in loc, or UTC when loc is nil.
func FromResult(r matches.Result, loc *time.Location) Row {
	if loc == nil {
		loc = time.UTC
	}
	row := Row{
		AwayTeam:            r.Event.SideA,
		HomeTeam:            r.Event.SideB,
		Status:              r.Event.Status,
		Opportunity:         r.HasOpportunity,
		LowestAwayBookmaker: r.BookmakerQuotes.SideA.Lowest.Provider,
		LowestAwayImplied:   r.BookmakerQuotes.SideA.Lowest.Implied * 100,
		LowestHomeBookmaker: r.BookmakerQuotes.SideB.Lowest.Provider,
		LowestHomeImplied:   r.BookmakerQuotes.SideB.Lowest.Implied * 100,
		MarketAwayImplied:   r.MarketQuotes.SideA.Lowest.Implied * 100,
		MarketHomeImplied:   r.MarketQuotes.SideB.Lowest.Implied * 100,
		ProfitPercent:       r.ProfitPercent,
		BestCost:            r.CombinedCost,
		AwayLeg:             legLabel(r.Leg(collectors.SideA)),
		HomeLeg:             legLabel(r.Leg(collectors.SideB)),
	}
	if !r.Event.ScheduledAt.IsZero() {
		at := r.Event.ScheduledAt.In(loc)
		row.Date = at.Format("2006-01-02")
		row.Time = at.Format("15:04")
	}
	return row
}

func legLabel(l matches.Leg) string {
	if l.Provider == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", l.Source, l.Provider)
}

// Rows flattens results in their given order.
func Rows(results []matches.Result, loc *time.Location) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, FromResult(r, loc))
	}
	return rows
}

func (r Row) record() []string {
	yes := "NO"
	if r.Opportunity {
		yes = "YES"
	}
	return []string{
		r.Date,
		r.Time,
		r.AwayTeam,
		r.HomeTeam,
		r.Status,
		yes,
		r.LowestAwayBookmaker,
		pct(r.LowestAwayImplied),
		r.LowestHomeBookmaker,
		pct(r.LowestHomeImplied),
		pct(r.MarketAwayImplied),
		pct(r.MarketHomeImplied),
		pct(r.ProfitPercent),
		strconv.FormatFloat(r.BestCost, 'f', 4, 64),
		r.AwayLeg,
		r.HomeLeg,
	}
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename returns dir/arb_<sport>_<date>.csv.
func Filename(dir, sport string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("arb_%s_%s.csv", sport, day.Format("2006-01-02")))
}

// WriteFile creates the parent directory and writes rows to path.
func WriteFile(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
