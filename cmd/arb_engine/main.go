package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/config"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/odds"
	"github.com/hetulpatel/moneylinearb/internal/pipeline"
	"github.com/hetulpatel/moneylinearb/internal/rank"
	"github.com/hetulpatel/moneylinearb/internal/report"
	sqlstore "github.com/hetulpatel/moneylinearb/internal/storage/sqlite"
	"github.com/hetulpatel/moneylinearb/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cfg := config.Load()
	logging.InitFromEnv()

	pcfg, cleanup, err := pipeline.FromConfig(cfg)
	if err != nil {
		logging.Fatalf("[arb-engine] setup: %v", err)
	}
	defer cleanup()

	var reports workers.ReportStore
	if cfg.SQLitePath != "" {
		store, err := sqlstore.Open(cfg.SQLitePath)
		if err != nil {
			logging.Fatalf("[arb-engine] open sqlite: %v", err)
		}
		defer store.Close()
		if err := store.CreateTables(ctx); err != nil {
			logging.Fatalf("[arb-engine] create tables: %v", err)
		}
		reports = store
	}

	opps := opportunityCache(ctx, cfg)
	defer opps.Close()

	processor := workers.NewProcessor(pcfg, reports, nil, opps)
	loader := &collectors.FileLoader{
		SnapshotPath:  cfg.SnapshotPath,
		BookmakerPath: cfg.BookmakerPath,
		MarketPath:    cfg.MarketPath,
	}
	loc := cfg.Location()

	logging.Infof("[arb-engine] sport=%s league=%s policy=%s budget=%.2f", cfg.Sport, cfg.League, pcfg.Finders.Policy(), cfg.BudgetUSD)
	collectors.RunLoop(ctx, loader, cfg.PollInterval, func(ctx context.Context, batch collectors.Batch) error {
		snap := models.NewSnapshot(cfg.Sport, cfg.League, batch, time.Now().UTC())
		rep, err := processor.Process(ctx, snap)
		if rep == nil {
			return err
		}
		if err != nil {
			logging.Errorf("[arb-engine] run %s: %v", rep.RunID, err)
		}

		path := report.Filename(cfg.OutputDir, cfg.Sport, rep.StartedAt.In(loc))
		if err := report.WriteFile(path, report.Rows(rep.Results, loc)); err != nil {
			return err
		}
		logSummary(rep, path)
		return nil
	})
}

func logSummary(rep *pipeline.Report, path string) {
	logging.Infof("[arb-engine] run=%s league=%s matched=%d opportunities=%d unmatched=%d ambiguous=%d skipped=%d csv=%s",
		rep.RunID, rep.League, len(rep.Results), rep.OpportunityCount(), len(rep.Unmatched), len(rep.Ambiguous), len(rep.Skipped), path)
	for _, s := range rep.Skipped {
		logging.Warnf("[arb-engine] skipped %s %s/%s: %s", s.Source, s.Provider, s.EventID, s.Reason)
	}
	for i, r := range rank.Opportunities(rep.Results) {
		a, b := r.Best.Legs[0], r.Best.Legs[1]
		logging.Infof("[arb-engine] #%d %s cost=%.4f profit=%.2f%% %s via %s:%s, %s via %s:%s",
			i+1, matcher.Describe(r.Event), r.CombinedCost, r.ProfitPercent,
			a.Team, a.Source, a.Provider, b.Team, b.Source, b.Provider)
	}
	for _, h := range rep.BookHedges {
		logging.Infof("[book-hedge] event=%s %s %s@%s + %s %s@%s implied=%.4f profit=%.2f%%",
			h.Event.ID,
			h.Legs[0].Team, odds.FormatAmerican(h.Legs[0].American), h.Legs[0].Provider,
			h.Legs[1].Team, odds.FormatAmerican(h.Legs[1].American), h.Legs[1].Provider,
			h.TotalImplied, h.ProfitPercent)
	}
}

func opportunityCache(ctx context.Context, cfg config.Config) cache.OpportunityCache {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	c, err := cache.OpenOpportunityCache(pingCtx, cfg.Redis(cfg.OpportunityTTL))
	if err != nil {
		logging.Warnf("[arb-engine] %v, using in-memory opportunity cache", err)
		return cache.NewMemoryOpportunityCache()
	}
	return c
}
