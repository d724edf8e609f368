package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
)

const systemPrompt = "You are a strict sports data reconciler. Decide which prediction-market listing is the same scheduled game as a sportsbook listing. Team names may use city names, nicknames or abbreviations. Respond only with JSON."

// Service resolves ambiguous event matches via LLM.
type Service struct {
	llm          Completer
	systemPrompt string
	league       string
}

// NewService creates a resolver.
func NewService(cfg Config) (*Service, error) {
	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("validator: llm client is required")
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = systemPrompt
	}
	return &Service{
		llm:          cfg.LLMClient,
		systemPrompt: system,
		league:       cfg.League,
	}, nil
}

// ForLeague returns a copy of the service that names league in its prompts.
func (s *Service) ForLeague(league string) *Service {
	cp := *s
	cp.league = league
	return &cp
}

// Resolve asks the model which candidate is the target game. It returns -1 when the
// model rejects every candidate.
func (s *Service) Resolve(ctx context.Context, target collectors.Event, candidates []collectors.Event) (int, string, error) {
	if s == nil {
		return -1, "", fmt.Errorf("validator: service is nil")
	}
	if len(candidates) == 0 {
		return -1, "", fmt.Errorf("validator: no candidates")
	}

	promptInput := buildPromptPayload(s.league, target, candidates)
	inputJSON, err := json.MarshalIndent(promptInput, "", "  ")
	if err != nil {
		return -1, "", fmt.Errorf("validator: marshal prompt input: %w", err)
	}

	userPrompt := strings.Join([]string{
		"A sportsbook lists the game below. Several prediction-market listings have the same two teams and could not be told apart automatically.",
		"Pick the one listing that is the same game: same two teams and the same scheduled start. Home/away order may be reversed between sources.",
		"A listing for a different date is a different game. If none of the listings is the same game, answer -1.",
		"Return EXACTLY this JSON format:\n{\n  \"Index\": <candidate index or -1>,\n  \"Reason\": \"short explanation\"\n}\n\nInput JSON:\n" + string(inputJSON),
	}, "\n")

	raw, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		return -1, "", fmt.Errorf("validator: llm call: %w", err)
	}

	res, err := parseResult(raw)
	if err != nil {
		return -1, "", fmt.Errorf("validator: parse response: %w", err)
	}
	if res.Index < -1 || res.Index >= len(candidates) {
		return -1, res.Reason, fmt.Errorf("validator: index %d out of range for %d candidates", res.Index, len(candidates))
	}
	return res.Index, res.Reason, nil
}
