package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/models"
	"github.com/hetulpatel/moneylinearb/internal/pipeline"
	"github.com/hetulpatel/moneylinearb/internal/queue"
)

// ReportStore persists finished runs; *sqlite.Store satisfies it.
type ReportStore interface {
	InsertReport(ctx context.Context, rep *pipeline.Report) error
}

// Processor runs the pipeline for each snapshot, then persists, publishes and
// announces what it found. Every collaborator except the pipeline config is optional.
type Processor struct {
	pipeline      pipeline.Config
	store         ReportStore
	results       queue.Writer
	opportunities cache.OpportunityCache
	now           func() time.Time
}

func NewProcessor(cfg pipeline.Config, store ReportStore, results queue.Writer, opportunities cache.OpportunityCache) *Processor {
	return &Processor{
		pipeline:      cfg,
		store:         store,
		results:       results,
		opportunities: opportunities,
		now:           time.Now,
	}
}

// Handle satisfies Handler.
func (p *Processor) Handle(ctx context.Context, snap models.Snapshot) error {
	_, err := p.Process(ctx, snap)
	return err
}

// Process runs one snapshot. A storage or publish failure is returned after the
// remaining steps have been attempted.
func (p *Processor) Process(ctx context.Context, snap models.Snapshot) (*pipeline.Report, error) {
	rep, err := pipeline.Run(ctx, snap, p.pipeline)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	var firstErr error
	if p.store != nil {
		if err := p.store.InsertReport(ctx, rep); err != nil {
			firstErr = fmt.Errorf("store report: %w", err)
		}
	}
	if p.results != nil {
		if err := queue.PublishResults(ctx, p.results, rep.RunID, rep.Sport, rep.Results, p.now()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("publish results: %w", err)
		}
	}
	p.announce(ctx, rep)
	return rep, firstErr
}

func (p *Processor) announce(ctx context.Context, rep *pipeline.Report) {
	for _, r := range rep.Results {
		if !r.HasOpportunity {
			continue
		}
		record := cache.OpportunityRecord{
			ProfitPercent: r.ProfitPercent,
			CombinedCost:  r.CombinedCost,
			Direction:     string(r.Best.Direction),
			UpdatedAt:     p.now().UTC(),
		}
		if p.opportunities != nil {
			prev, _, err := p.opportunities.Get(ctx, r.PairID)
			if err != nil {
				logging.Errorf("[opportunity-cache] get pair=%s: %v", r.PairID, err)
			}
			if !cache.ShouldAnnounce(prev, record) {
				logging.Debugf("[opportunity-cache] suppress pair=%s profit=%.2f%%", r.PairID, r.ProfitPercent)
				continue
			}
			if err := p.opportunities.Set(ctx, r.PairID, record); err != nil {
				logging.Errorf("[opportunity-cache] set pair=%s: %v", r.PairID, err)
			}
		}
		a, b := r.Best.Legs[0], r.Best.Legs[1]
		logging.WithFields(logging.Fields{
			"run_id":     rep.RunID,
			"pair_id":    r.PairID,
			"event":      matcher.Describe(r.Event),
			"cost":       fmt.Sprintf("%.4f", r.CombinedCost),
			"profit_pct": fmt.Sprintf("%.2f", r.ProfitPercent),
			"leg_a":      fmt.Sprintf("%s %s:%s @ %.4f stake=%.2f", a.Team, a.Source, a.Provider, a.Probability, a.StakeUSD),
			"leg_b":      fmt.Sprintf("%s %s:%s @ %.4f stake=%.2f", b.Team, b.Source, b.Provider, b.Probability, b.StakeUSD),
		}).Info("[arb-opportunity]")
	}
}
