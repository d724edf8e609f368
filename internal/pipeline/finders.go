package pipeline

import (
	"strings"
	"sync"

	"github.com/hetulpatel/moneylinearb/internal/matcher"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

// Finders hands out one matcher per league, each built from the registry's table
// for that league and a shared base config. Safe for concurrent use.
type Finders struct {
	registry *teams.Registry
	base     matcher.Config
	// Configure, when set, adjusts the per-league config before the finder is built.
	Configure func(league string, cfg *matcher.Config)

	mu       sync.Mutex
	byLeague map[string]*matcher.Finder
}

func NewFinders(reg *teams.Registry, base matcher.Config) *Finders {
	return &Finders{registry: reg, base: base, byLeague: make(map[string]*matcher.Finder)}
}

// For returns the finder for league, building it on first use.
func (f *Finders) For(league string) *matcher.Finder {
	league = strings.ToLower(strings.TrimSpace(league))
	f.mu.Lock()
	defer f.mu.Unlock()
	if finder, ok := f.byLeague[league]; ok {
		return finder
	}
	cfg := f.base
	cfg.Table = f.registry.Table(league)
	if f.Configure != nil {
		f.Configure(league, &cfg)
	}
	finder := matcher.NewFinder(cfg)
	f.byLeague[league] = finder
	return finder
}

// Policy is the match policy every league's finder uses.
func (f *Finders) Policy() matcher.Policy {
	if f.base.Policy == "" {
		return matcher.PolicyFirst
	}
	return f.base.Policy
}
