package teams

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps city/metro qualifiers (or full names) to a canonical franchise nickname
// for one league. Keys are matched as whole-word prefixes of the normalized name.
type Table struct {
	League  string            `yaml:"-"`
	Aliases map[string]string `yaml:"aliases"`

	keys []string // normalized alias keys, longest first
}

// Registry holds alias tables keyed by league ("nba", "nfl", ...).
type Registry struct {
	Leagues map[string]*Table `yaml:"leagues"`
}

// NewTable builds a table, normalizing keys and values.
func NewTable(league string, aliases map[string]string) *Table {
	t := &Table{League: strings.ToLower(strings.TrimSpace(league)), Aliases: make(map[string]string, len(aliases))}
	for k, v := range aliases {
		key := collapse(k)
		if key == "" {
			continue
		}
		t.Aliases[key] = collapse(v)
	}
	t.index()
	return t
}

func (t *Table) index() {
	t.keys = t.keys[:0]
	for k := range t.Aliases {
		t.keys = append(t.keys, k)
	}
	sort.Slice(t.keys, func(i, j int) bool {
		if len(t.keys[i]) != len(t.keys[j]) {
			return len(t.keys[i]) > len(t.keys[j])
		}
		return t.keys[i] < t.keys[j]
	})
}

// Table returns the league's table. Unknown leagues get an empty table, which still
// normalizes case and whitespace.
func (r *Registry) Table(league string) *Table {
	league = strings.ToLower(strings.TrimSpace(league))
	if r != nil && r.Leagues != nil {
		if t, ok := r.Leagues[league]; ok && t != nil {
			return t
		}
	}
	return NewTable(league, nil)
}

// LeagueFromSport maps odds-API sport keys such as "basketball_nba" onto a
// registry key ("nba"). Keys without an underscore are returned lowercased.
func LeagueFromSport(sport string) string {
	sport = strings.ToLower(strings.TrimSpace(sport))
	if i := strings.LastIndex(sport, "_"); i >= 0 {
		return sport[i+1:]
	}
	return sport
}

// LoadFile reads a YAML registry:
//
//	leagues:
//	  nba:
//	    aliases:
//	      houston: rockets
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML registry document.
func Parse(data []byte) (*Registry, error) {
	var raw Registry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse alias file: %w", err)
	}
	reg := &Registry{Leagues: make(map[string]*Table, len(raw.Leagues))}
	for league, t := range raw.Leagues {
		var aliases map[string]string
		if t != nil {
			aliases = t.Aliases
		}
		tbl := NewTable(league, aliases)
		reg.Leagues[tbl.League] = tbl
	}
	return reg, nil
}

// DefaultRegistry returns the built-in NBA and NFL tables.
func DefaultRegistry() *Registry {
	return &Registry{Leagues: map[string]*Table{
		"nba": NewTable("nba", nbaAliases),
		"nfl": NewTable("nfl", nflAliases),
	}}
}

var nbaAliases = map[string]string{
	"los angeles lakers":    "lakers",
	"la lakers":             "lakers",
	"los angeles clippers":  "clippers",
	"la clippers":           "clippers",
	"houston":               "rockets",
	"minnesota":             "timberwolves",
	"denver":                "nuggets",
	"miami":                 "heat",
	"atlanta":               "hawks",
	"charlotte":             "hornets",
	"orlando":               "magic",
	"toronto":               "raptors",
	"washington":            "wizards",
	"boston":                "celtics",
	"brooklyn":              "nets",
	"new york":              "knicks",
	"philadelphia":          "76ers",
	"chicago":               "bulls",
	"cleveland":             "cavaliers",
	"detroit":               "pistons",
	"indiana":               "pacers",
	"milwaukee":             "bucks",
	"dallas":                "mavericks",
	"memphis":               "grizzlies",
	"new orleans":           "pelicans",
	"san antonio":           "spurs",
	"golden state":          "warriors",
	"oklahoma city":         "thunder",
	"phoenix":               "suns",
	"portland":              "trail blazers",
	"sacramento":            "kings",
	"utah":                  "jazz",
}

var nflAliases = map[string]string{
	"los angeles rams":     "rams",
	"la rams":              "rams",
	"los angeles chargers": "chargers",
	"la chargers":          "chargers",
	"new york giants":      "giants",
	"ny giants":            "giants",
	"new york jets":        "jets",
	"ny jets":              "jets",
	"arizona":              "cardinals",
	"atlanta":              "falcons",
	"baltimore":            "ravens",
	"buffalo":              "bills",
	"carolina":             "panthers",
	"chicago":              "bears",
	"cincinnati":           "bengals",
	"cleveland":            "browns",
	"dallas":               "cowboys",
	"denver":               "broncos",
	"detroit":              "lions",
	"green bay":            "packers",
	"houston":              "texans",
	"indianapolis":         "colts",
	"jacksonville":         "jaguars",
	"kansas city":          "chiefs",
	"las vegas":            "raiders",
	"miami":                "dolphins",
	"minnesota":            "vikings",
	"new england":          "patriots",
	"new orleans":          "saints",
	"philadelphia":         "eagles",
	"pittsburgh":           "steelers",
	"san francisco":        "49ers",
	"seattle":              "seahawks",
	"tampa bay":            "buccaneers",
	"tennessee":            "titans",
	"washington":           "commanders",
}
