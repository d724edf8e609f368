package validator

import "context"

// Result is the structured LLM verdict. Index is the zero-based candidate the model
// picked, or -1 when none of them is the same game.
type Result struct {
	Index  int    `json:"Index"`
	Reason string `json:"Reason"`
}

// Completer is the single LLM call the resolver needs; *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config controls the resolver behavior.
type Config struct {
	LLMClient    Completer
	SystemPrompt string
	League       string
}
