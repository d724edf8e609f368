package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/arb"
	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/config"
	"github.com/hetulpatel/moneylinearb/internal/llm"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/validator"
)

// FromConfig assembles a pipeline Config from the environment config. Alias tables
// are picked per snapshot league, so one worker serves every sport on the topic.
// The returned cleanup closes any cache connections it opened.
func FromConfig(cfg config.Config) (Config, func(), error) {
	reg, err := cfg.Registry()
	if err != nil {
		return Config{}, nil, fmt.Errorf("load team aliases: %w", err)
	}

	mcfg := matcher.Config{
		Policy:       matcher.ParsePolicy(cfg.MatchPolicy),
		MaxStartSkew: cfg.MaxStartSkew,
		Logger:       matcher.NewLogger(matcher.ParseLogMode(cfg.MatchLogMode), cfg.MatchLogPath),
	}
	cleanup := func() {}
	var svc *validator.Service

	if mcfg.Policy == matcher.PolicyScored && cfg.LLMAPIKey != "" {
		client, err := llm.New(llm.Config{APIKey: cfg.LLMAPIKey, BaseURL: cfg.LLMBaseURL, Model: cfg.LLMModel, JSONMode: true})
		if err != nil {
			return Config{}, nil, fmt.Errorf("llm client: %w", err)
		}
		svc, err = validator.NewService(validator.Config{LLMClient: client, League: cfg.League})
		if err != nil {
			return Config{}, nil, err
		}
		logging.Infof("[pipeline] ambiguous matches resolved with %s", client.Model())

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		vc, err := cache.OpenVerdictCache(ctx, cfg.Redis(cfg.VerdictTTL))
		cancel()
		if err != nil {
			logging.Warnf("[pipeline] verdict cache unavailable, using memory: %v", err)
			vc = cache.NewMemoryVerdictCache()
		}
		mcfg.VerdictCache = vc
		cleanup = func() { vc.Close() }
	}

	finders := NewFinders(reg, mcfg)
	if svc != nil {
		finders.Configure = func(league string, c *matcher.Config) {
			c.Resolver = svc.ForLeague(league)
		}
	}
	return Config{
		Finders: finders,
		Arb:     arb.Config{BudgetUSD: cfg.BudgetUSD},
		Workers: cfg.Workers,
	}, cleanup, nil
}
