package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/hashutil"
	"github.com/hetulpatel/moneylinearb/internal/pipeline"
)

// InsertReport stores a whole run in one transaction: the run row, every ranked
// result (profitable or not), every priced line and every bookmaker hedge.
func (s *Store) InsertReport(ctx context.Context, rep *pipeline.Report) error {
	if s == nil || s.db == nil || rep == nil {
		return fmt.Errorf("sqlite store not initialized or report nil")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := insertReport(ctx, tx, rep); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertReport(ctx context.Context, tx *sql.Tx, rep *pipeline.Report) error {
	unmatched, err := json.Marshal(rep.Unmatched)
	if err != nil {
		return fmt.Errorf("marshal unmatched: %w", err)
	}
	ambiguous, err := json.Marshal(rep.Ambiguous)
	if err != nil {
		return fmt.Errorf("marshal ambiguous: %w", err)
	}
	skipped, err := json.Marshal(rep.Skipped)
	if err != nil {
		return fmt.Errorf("marshal skipped: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (
	run_id, sport, league, captured_at, started_at, finished_at,
	result_count, opportunity_count, unmatched_json, ambiguous_json, skipped_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID, rep.Sport, rep.League,
		formatTime(rep.CapturedAt), formatTime(rep.StartedAt), formatTime(rep.FinishedAt),
		len(rep.Results), rep.OpportunityCount(),
		string(unmatched), string(ambiguous), string(skipped),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	resultStmt, err := tx.PrepareContext(ctx, `
INSERT INTO arb_results (
	run_id, result_rank, pair_id, book_event_id, market_event_id, side_a, side_b, scheduled_at,
	swapped, has_opportunity, combined_cost, profit_percent, direction,
	leg_a_source, leg_a_provider, leg_a_probability,
	leg_b_source, leg_b_provider, leg_b_probability,
	budget_usd, guaranteed_return_usd, profit_usd, raw_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer resultStmt.Close()
	for i, r := range rep.Results {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		a, b := r.Leg(collectors.SideA), r.Leg(collectors.SideB)
		if _, err := resultStmt.ExecContext(ctx,
			rep.RunID, i+1, r.PairID, r.Event.ID, r.MarketEvent.ID, r.Event.SideA, r.Event.SideB,
			formatTime(r.Event.ScheduledAt), boolInt(r.Swapped), boolInt(r.HasOpportunity),
			r.CombinedCost, r.ProfitPercent, string(r.Best.Direction),
			string(a.Source), a.Provider, a.Probability,
			string(b.Source), b.Provider, b.Probability,
			r.BudgetUSD, r.GuaranteedReturnUSD, r.ProfitUSD, string(raw),
		); err != nil {
			return fmt.Errorf("insert result %s: %w", r.PairID, err)
		}
	}

	lineStmt, err := tx.PrepareContext(ctx, `
INSERT INTO lines (
	run_id, source, provider, event_id, side_a, side_b, side_a_price, side_b_price,
	side_a_implied, side_b_implied, side_a_true, side_b_true, margin, line_hash
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer lineStmt.Close()
	for _, pl := range rep.Lines {
		l, m := pl.Line, pl.Market
		hash := hashutil.HashStrings(string(pl.Source), l.Provider, l.EventID,
			fmt.Sprintf("%g", l.SideAPrice), fmt.Sprintf("%g", l.SideBPrice))
		if _, err := lineStmt.ExecContext(ctx,
			rep.RunID, string(pl.Source), l.Provider, l.EventID, l.SideA, l.SideB, l.SideAPrice, l.SideBPrice,
			m.Outcomes[0].Implied, m.Outcomes[1].Implied, m.Outcomes[0].True, m.Outcomes[1].True, m.Margin, hash,
		); err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
	}

	for _, h := range rep.BookHedges {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO book_hedges (
	run_id, event_id,
	leg_1_provider, leg_1_side, leg_1_american, leg_1_stake_usd,
	leg_2_provider, leg_2_side, leg_2_american, leg_2_stake_usd,
	total_implied, profit_usd, profit_percent
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rep.RunID, h.Event.ID,
			h.Legs[0].Provider, string(h.Legs[0].Side), h.Legs[0].American, h.Legs[0].StakeUSD,
			h.Legs[1].Provider, string(h.Legs[1].Side), h.Legs[1].American, h.Legs[1].StakeUSD,
			h.TotalImplied, h.ProfitUSD, h.ProfitPercent,
		); err != nil {
			return fmt.Errorf("insert book hedge: %w", err)
		}
	}
	return nil
}

// StoredResult is a persisted arbitrage result row.
type StoredResult struct {
	RunID          string
	Rank           int
	PairID         string
	SideA          string
	SideB          string
	HasOpportunity bool
	CombinedCost   float64
	ProfitPercent  float64
}

// ResultsForRun returns a run's results in rank order.
func (s *Store) ResultsForRun(ctx context.Context, runID string) ([]StoredResult, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, result_rank, pair_id, side_a, side_b, has_opportunity, combined_cost, profit_percent
FROM arb_results WHERE run_id = ? ORDER BY result_rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		var opp int
		if err := rows.Scan(&r.RunID, &r.Rank, &r.PairID, &r.SideA, &r.SideB, &opp, &r.CombinedCost, &r.ProfitPercent); err != nil {
			return nil, err
		}
		r.HasOpportunity = opp == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRows returns the number of rows in one of the store's tables.
func (s *Store) CountRows(ctx context.Context, table string) (int, error) {
	known := false
	for _, t := range tables {
		if t == table {
			known = true
		}
	}
	if !known {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n)
	return n, err
}
