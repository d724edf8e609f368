package matcher

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/hashutil"
	"github.com/hetulpatel/moneylinearb/internal/logging"
	"github.com/hetulpatel/moneylinearb/internal/matches"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

// Policy selects how a target is matched against the candidate pool.
type Policy string

const (
	// PolicyFirst returns the first equivalent candidate in pool order.
	PolicyFirst Policy = "first"
	// PolicyScored ranks every equivalent candidate and reports ties as ambiguous.
	PolicyScored Policy = "scored"
)

// ParsePolicy maps a config string onto a Policy, defaulting to PolicyFirst.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyScored)) {
		return PolicyScored
	}
	return PolicyFirst
}

// Match pairs a target event with the candidate it corresponds to. When Swapped is
// set, the candidate's side A is the target's side B and vice versa.
type Match struct {
	Target    collectors.Event
	Candidate collectors.Event
	Swapped   bool
}

// CandidateSide maps a target side onto the candidate's side.
func (m Match) CandidateSide(side collectors.Side) collectors.Side {
	if m.Swapped {
		return side.Other()
	}
	return side
}

// Status is the outcome of a match attempt.
type Status int

const (
	StatusUnmatched Status = iota
	StatusMatched
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "unmatched"
	}
}

// Outcome is the verdict for one target. Candidates holds the tied matches when the
// status is ambiguous.
type Outcome struct {
	Status     Status
	Match      Match
	Candidates []Match
	Verdict    *matches.ResolutionVerdict
}

// Resolver picks one of several equally scored candidates. It returns the index of
// the chosen candidate, or -1 when none of them is the target.
type Resolver interface {
	Resolve(ctx context.Context, target collectors.Event, candidates []collectors.Event) (int, string, error)
}

type Config struct {
	Table        *teams.Table
	Policy       Policy
	MaxStartSkew time.Duration
	Resolver     Resolver
	VerdictCache cache.VerdictCache
	Logger       *Logger
}

type Finder struct {
	table        *teams.Table
	policy       Policy
	maxStartSkew time.Duration
	resolver     Resolver
	verdictCache cache.VerdictCache
	logger       *Logger
}

func NewFinder(cfg Config) *Finder {
	table := cfg.Table
	if table == nil {
		table = teams.NewTable("", nil)
	}
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyFirst
	}
	return &Finder{
		table:        table,
		policy:       policy,
		maxStartSkew: cfg.MaxStartSkew,
		resolver:     cfg.Resolver,
		verdictCache: cfg.VerdictCache,
		logger:       cfg.Logger,
	}
}

// Policy returns the configured policy.
func (f *Finder) Policy() Policy {
	return f.policy
}

// orient reports whether candidate is the target event and in which orientation.
// When both orientations are equivalent (substring names such as "nets" and
// "hornets") the one with more exact-name sides wins, direct on a tie.
func (f *Finder) orient(target, candidate collectors.Event) (swapped bool, exact int, ok bool) {
	direct := Match{Target: target, Candidate: candidate}
	cross := Match{Target: target, Candidate: candidate, Swapped: true}
	directOK := f.table.Equivalent(target.SideA, candidate.SideA) && f.table.Equivalent(target.SideB, candidate.SideB)
	crossOK := f.table.Equivalent(target.SideA, candidate.SideB) && f.table.Equivalent(target.SideB, candidate.SideA)
	switch {
	case directOK && crossOK:
		de, ce := f.exactSides(direct), f.exactSides(cross)
		if ce > de {
			return true, ce, true
		}
		return false, de, true
	case directOK:
		return false, f.exactSides(direct), true
	case crossOK:
		return true, f.exactSides(cross), true
	}
	return false, 0, false
}

// Orientation reports whether b names the same two teams as a, and whether its
// sides are listed in the opposite order.
func (f *Finder) Orientation(a, b collectors.Event) (swapped, ok bool) {
	swapped, _, ok = f.orient(a, b)
	return swapped, ok
}

// FindMatch scans pool in order and returns the first candidate whose sides are
// equivalent to the target's in either orientation.
func (f *Finder) FindMatch(target collectors.Event, pool []collectors.Event) (Match, bool) {
	for _, candidate := range pool {
		if swapped, _, ok := f.orient(target, candidate); ok {
			return Match{Target: target, Candidate: candidate, Swapped: swapped}, true
		}
	}
	return Match{}, false
}

type scored struct {
	match     Match
	exact     int
	skew      time.Duration
	skewKnown bool
}

// better orders scored candidates: more exact-name sides first, then a known start
// time beats an unknown one, then smaller start-time skew.
func (s scored) better(o scored) bool {
	if s.exact != o.exact {
		return s.exact > o.exact
	}
	if s.skewKnown != o.skewKnown {
		return s.skewKnown
	}
	return s.skew < o.skew
}

func (s scored) ties(o scored) bool {
	return !s.better(o) && !o.better(s)
}

// FindBest scores every equivalent candidate and returns the single best one. When
// the top candidates cannot be told apart the outcome is ambiguous and lists them.
func (f *Finder) FindBest(target collectors.Event, pool []collectors.Event) Outcome {
	var found []scored
	for _, candidate := range pool {
		swapped, exact, ok := f.orient(target, candidate)
		if !ok {
			continue
		}
		s := scored{match: Match{Target: target, Candidate: candidate, Swapped: swapped}, exact: exact}
		if !target.ScheduledAt.IsZero() && !candidate.ScheduledAt.IsZero() {
			s.skew = target.ScheduledAt.Sub(candidate.ScheduledAt)
			if s.skew < 0 {
				s.skew = -s.skew
			}
			s.skewKnown = true
			if f.maxStartSkew > 0 && s.skew > f.maxStartSkew {
				logging.Debugf("[matcher] rejected %s for %s: start skew %s", candidate.ID, target.ID, s.skew)
				continue
			}
		}
		found = append(found, s)
	}
	if len(found) == 0 {
		return Outcome{Status: StatusUnmatched}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].better(found[j]) })
	top := found[0]
	var tied []Match
	for _, s := range found {
		if !s.ties(top) {
			break
		}
		tied = append(tied, s.match)
	}
	if len(tied) > 1 {
		return Outcome{Status: StatusAmbiguous, Candidates: tied}
	}
	return Outcome{Status: StatusMatched, Match: top.match}
}

func (f *Finder) exactSides(m Match) int {
	n := 0
	for _, side := range []collectors.Side{collectors.SideA, collectors.SideB} {
		if f.table.Exact(m.Target.Name(side), m.Candidate.Name(m.CandidateSide(side))) {
			n++
		}
	}
	return n
}

// Find applies the configured policy. Under the scored policy an ambiguous outcome
// is handed to the resolver, when one is configured.
func (f *Finder) Find(ctx context.Context, target collectors.Event, pool []collectors.Event) Outcome {
	var out Outcome
	if f.policy == PolicyScored {
		out = f.FindBest(target, pool)
		if out.Status == StatusAmbiguous && f.resolver != nil {
			out = f.resolve(ctx, target, out)
		}
	} else if m, ok := f.FindMatch(target, pool); ok {
		out = Outcome{Status: StatusMatched, Match: m}
	}
	f.logger.LogOutcome(target, out)
	return out
}

func (f *Finder) resolve(ctx context.Context, target collectors.Event, out Outcome) Outcome {
	candidates := make([]collectors.Event, len(out.Candidates))
	for i, m := range out.Candidates {
		candidates[i] = m.Candidate
	}
	key := matches.VerdictCacheKey(target, candidates)

	if f.verdictCache != nil && key != "" {
		id, ok, err := f.verdictCache.Get(ctx, key)
		switch {
		case err != nil:
			logging.Errorf("[verdict-cache] get error key=%s: %v", hashutil.Short(key), err)
		case ok:
			for _, m := range out.Candidates {
				if m.Candidate.ID == id {
					logging.Debugf("[verdict-cache] hit key=%s candidate=%s", hashutil.Short(key), id)
					return Outcome{Status: StatusMatched, Match: m, Verdict: matches.NewResolutionVerdict(id, "cached", true)}
				}
			}
		}
	}

	idx, reason, err := f.resolver.Resolve(ctx, target, candidates)
	if err != nil {
		logging.Errorf("[matcher] resolve %s failed: %v", target.ID, err)
		return out
	}
	if idx < 0 || idx >= len(out.Candidates) {
		logging.Infof("[matcher] resolver rejected all %d candidates for %s: %s", len(candidates), target.ID, reason)
		return out
	}
	chosen := out.Candidates[idx]
	if f.verdictCache != nil && key != "" {
		if err := f.verdictCache.Set(ctx, key, chosen.Candidate.ID); err != nil {
			logging.Errorf("[verdict-cache] set error key=%s: %v", hashutil.Short(key), err)
		}
	}
	return Outcome{Status: StatusMatched, Match: chosen, Verdict: matches.NewResolutionVerdict(chosen.Candidate.ID, reason, false)}
}

// Describe renders an event as "away @ home" for log lines.
func Describe(e collectors.Event) string {
	return fmt.Sprintf("%s @ %s", e.SideA, e.SideB)
}
