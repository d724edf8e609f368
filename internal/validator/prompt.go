package validator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
)

type promptPayload struct {
	League         string         `json:"league,omitempty"`
	GeneratedAtUTC string         `json:"generated_at_utc"`
	Target         eventPayload   `json:"bookmaker_event"`
	Candidates     []eventPayload `json:"market_candidates"`
}

type eventPayload struct {
	Index          int    `json:"index"`
	EventID        string `json:"event_id"`
	Away           string `json:"away"`
	Home           string `json:"home"`
	ScheduledAtUTC string `json:"scheduled_at_utc,omitempty"`
	Status         string `json:"status,omitempty"`
}

func buildPromptPayload(league string, target collectors.Event, candidates []collectors.Event) *promptPayload {
	out := &promptPayload{
		League:         league,
		GeneratedAtUTC: formatTime(time.Now().UTC()),
		Target:         buildEventPayload(-1, target),
		Candidates:     make([]eventPayload, 0, len(candidates)),
	}
	for i, c := range candidates {
		out.Candidates = append(out.Candidates, buildEventPayload(i, c))
	}
	return out
}

func buildEventPayload(idx int, e collectors.Event) eventPayload {
	return eventPayload{
		Index:          idx,
		EventID:        e.ID,
		Away:           strings.TrimSpace(e.SideA),
		Home:           strings.TrimSpace(e.SideB),
		ScheduledAtUTC: formatTime(e.ScheduledAt),
		Status:         e.Status,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("validator: empty llm response")
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	res := Result{Index: -1}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
