// Package llm defines the generative backend contract and its two
// implementations: an Ollama-backed client and a placeholder stub used when
// no model is available. Which one runs is decided once at startup, never
// per request.
package llm

import "context"

// Options are the per-request sampling parameters, taken from the bot's
// generation settings.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Generator produces a reply for a composed prompt. Implementations may
// fail; the orchestrator substitutes PlaceholderReply and never surfaces the
// error to the chat caller.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// PlaceholderReply is the stable reply used whenever the generative backend
// is absent, errors out, or times out. Callers can only distinguish "model
// answered" from "model unreachable" by this literal content, so it must not
// change between releases.
const PlaceholderReply = "[LLM placeholder] Aún no estoy conectado a un modelo real. " +
	"Se agregará generación dinámica en próximos sprints."

// Placeholder is the stub Generator installed when no backend is configured.
type Placeholder struct{}

// Generate always returns PlaceholderReply.
func (Placeholder) Generate(context.Context, string, Options) (string, error) {
	return PlaceholderReply, nil
}
