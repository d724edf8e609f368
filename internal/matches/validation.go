package matches

// ResolutionVerdict records how an ambiguous match was settled.
type ResolutionVerdict struct {
	CandidateID string `json:"candidate_id"`
	Reason      string `json:"reason"`
	Cached      bool   `json:"cached"`
}

// NewResolutionVerdict builds a verdict struct.
func NewResolutionVerdict(candidateID, reason string, cached bool) *ResolutionVerdict {
	return &ResolutionVerdict{
		CandidateID: candidateID,
		Reason:      reason,
		Cached:      cached,
	}
}
