package matches

import "time"

// Payload is the envelope published for each evaluated pair and consumed by
// downstream reporting.
type Payload struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Sport     string    `json:"sport"`
	Rank      int       `json:"rank"`
	PairID    string    `json:"pair_id"`
	MatchedAt time.Time `json:"matched_at"`
	Result    Result    `json:"result"`
}

const payloadVersion = 1

// NewPayload wraps a ranked result for publishing.
func NewPayload(runID, sport string, rank int, res Result, matchedAt time.Time) Payload {
	return Payload{
		Version:   payloadVersion,
		RunID:     runID,
		Sport:     sport,
		Rank:      rank,
		PairID:    res.PairID,
		MatchedAt: matchedAt.UTC(),
		Result:    res,
	}
}
