package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hetulpatel/moneylinearb/internal/cache"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

// Config is everything the binaries read from the environment.
type Config struct {
	Sport  string
	League string

	SnapshotPath  string
	BookmakerPath string
	MarketPath    string
	OutputDir     string
	Timezone      string

	AliasFile    string
	MatchPolicy  string
	MaxStartSkew time.Duration
	MatchLogMode string
	MatchLogPath string

	BudgetUSD float64
	Workers   int

	SQLitePath string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	OpportunityTTL time.Duration
	VerdictTTL     time.Duration

	SnapshotTopic string
	ResultsTopic  string
	WorkerGroup   string
	PollInterval  time.Duration

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
}

// Load reads .env when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() Config {
	sport := envString("SPORT", "basketball_nba")
	return Config{
		Sport:  sport,
		League: strings.ToLower(envString("LEAGUE", teams.LeagueFromSport(sport))),

		SnapshotPath:  os.Getenv("SNAPSHOT_PATH"),
		BookmakerPath: os.Getenv("BOOKMAKER_PATH"),
		MarketPath:    os.Getenv("MARKET_PATH"),
		OutputDir:     envString("OUTPUT_DIR", "outputs/final_arb"),
		Timezone:      envString("REPORT_TIMEZONE", "America/New_York"),

		AliasFile:    os.Getenv("TEAM_ALIASES_FILE"),
		MatchPolicy:  envString("MATCH_POLICY", "first"),
		MaxStartSkew: envDuration("MATCH_MAX_START_SKEW", 12*time.Hour),
		MatchLogMode: envString("MATCH_LOG_MODE", "quiet"),
		MatchLogPath: os.Getenv("MATCH_LOG_PATH"),

		BudgetUSD: envFloat("ARB_BUDGET_USD", 100),
		Workers:   envInt("ARB_WORKERS", 4),

		SQLitePath: os.Getenv("SQLITE_PATH"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		OpportunityTTL: envDuration("REDIS_OPPORTUNITY_TTL", 24*time.Hour),
		VerdictTTL:     envDuration("REDIS_VERDICT_TTL", 72*time.Hour),

		SnapshotTopic: os.Getenv("SNAPSHOT_KAFKA_TOPIC"),
		ResultsTopic:  os.Getenv("RESULTS_KAFKA_TOPIC"),
		WorkerGroup:   envString("ARB_WORKER_GROUP", "arb-worker"),
		PollInterval:  envDuration("POLL_INTERVAL", 0),

		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMModel:   os.Getenv("LLM_MODEL"),
	}
}

// Registry returns the alias registry: the YAML file when configured, otherwise the
// built-in tables.
func (c Config) Registry() (*teams.Registry, error) {
	if c.AliasFile == "" {
		return teams.DefaultRegistry(), nil
	}
	return teams.LoadFile(c.AliasFile)
}

// Redis returns the connection settings for a cache with the given TTL.
func (c Config) Redis(ttl time.Duration) cache.RedisConfig {
	return cache.RedisConfig{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB, TTL: ttl}
}

// Location resolves the report timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return def
}
