package models

import (
	"time"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/teams"
)

// Snapshot is the payload placed on Kafka topics: every line for one sport, fully
// materialized, so a consumer can run the whole pipeline from one message.
type Snapshot struct {
	Sport      string            `json:"sport"`
	League     string            `json:"league"`
	CapturedAt time.Time         `json:"captured_at"`
	Bookmakers []collectors.Line `json:"bookmakers"`
	Markets    []collectors.Line `json:"markets"`
}

// NewSnapshot copies the batch slices so later mutation of the batch does not leak
// into a published snapshot.
func NewSnapshot(sport, league string, batch collectors.Batch, capturedAt time.Time) Snapshot {
	if league == "" {
		league = teams.LeagueFromSport(sport)
	}
	return Snapshot{
		Sport:      sport,
		League:     league,
		CapturedAt: capturedAt,
		Bookmakers: append([]collectors.Line(nil), batch.Bookmakers...),
		Markets:    append([]collectors.Line(nil), batch.Markets...),
	}
}
