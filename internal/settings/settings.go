// Package settings defines per-bot configuration and its persistence. Each
// bot identifier owns one Settings document; loads always return a usable
// snapshot, substituting documented defaults when nothing is stored or the
// stored payload is malformed.
package settings

import (
	"strings"

	"github.com/kalambet/vecino/internal/rules"
)

// Well-known bot identities. The free-conversation channel maps to FreeBot;
// every other channel maps to DefaultBot.
const (
	DefaultBot = "municipal"
	FreeBot    = "mar2"
)

const defaultRAGThreshold = 0.28

// PickStrategy selects which configured no-match reply is used.
type PickStrategy string

const (
	PickFirst  PickStrategy = "first"
	PickRandom PickStrategy = "random"
)

// Generation holds sampling parameters passed to the generative backend.
type Generation struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// Features toggles the phases of the decision waterfall.
type Features struct {
	UseRules           bool `json:"use_rules"`
	UseRAG             bool `json:"use_rag"`
	UseGenericNoMatch  bool `json:"use_generic_no_match"`
	EnableDefaultRules bool `json:"enable_default_rules"`
}

// MenuItem is a suggested quick action shown by the chat frontend. The
// waterfall never consults these.
type MenuItem struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// Settings is the full per-bot configuration document.
type Settings struct {
	Generation      Generation     `json:"generation"`
	Features        Features       `json:"features"`
	RAGThreshold    float64        `json:"rag_threshold"`
	GroundedOnly    bool           `json:"grounded_only"`
	PrePrompts      []string       `json:"pre_prompts"`
	NoMatchReplies  []string       `json:"no_match_replies"`
	NoMatchPick     PickStrategy   `json:"no_match_pick"`
	MenuSuggestions []MenuItem     `json:"menu_suggestions"`
	CustomRules     []rules.Config `json:"custom_rules"`
}

// Clamped returns a copy with every numeric field forced into its documented
// range, blank pre-prompts dropped and an unrecognized pick strategy
// collapsed to "first". Settings are always clamped before use.
func (s Settings) Clamped() Settings {
	out := s
	out.Generation.Temperature = clamp(s.Generation.Temperature, 0.0, 2.0)
	out.Generation.TopP = clamp(s.Generation.TopP, 0.0, 1.0)
	if out.Generation.MaxTokens < 1 {
		out.Generation.MaxTokens = 1
	}
	out.RAGThreshold = clamp(s.RAGThreshold, 0.0, 1.0)

	out.PrePrompts = nil
	for _, p := range s.PrePrompts {
		if strings.TrimSpace(p) != "" {
			out.PrePrompts = append(out.PrePrompts, strings.TrimSpace(p))
		}
	}

	if out.NoMatchPick != PickRandom {
		out.NoMatchPick = PickFirst
	}
	return out
}

// EffectiveRules builds the merged, ordered rule list for this bot: valid
// custom rules first, defaults appended when enabled.
func (s Settings) EffectiveRules() []rules.Rule {
	return rules.Merge(s.CustomRules, s.Features.EnableDefaultRules)
}

// IsFreeChannel reports whether the channel runs in free-conversation mode,
// bypassing classification, rules and retrieval.
func IsFreeChannel(channel string) bool {
	switch strings.ToLower(channel) {
	case "mar2", "free":
		return true
	}
	return false
}

// ResolveBot returns the effective bot identifier for a request: the
// explicit value when present, otherwise a channel-derived default.
func ResolveBot(botID, channel string) string {
	if botID != "" {
		return botID
	}
	if IsFreeChannel(channel) {
		return FreeBot
	}
	return DefaultBot
}

// Defaults returns the documented baseline settings for a bot. The free
// bot disables rules and retrieval; the municipal bot runs the full
// waterfall with default rules and the stock menu.
func Defaults(botID, channel string) Settings {
	gen := Generation{Temperature: 0.7, TopP: 0.9, MaxTokens: 256}

	if botID == FreeBot || IsFreeChannel(channel) {
		return Settings{
			Generation:   gen,
			Features:     Features{UseRules: false, UseRAG: false, UseGenericNoMatch: false, EnableDefaultRules: false},
			RAGThreshold: defaultRAGThreshold,
			NoMatchPick:  PickFirst,
		}
	}

	return Settings{
		Generation: gen,
		Features: Features{
			UseRules:           true,
			UseRAG:             true,
			UseGenericNoMatch:  false,
			EnableDefaultRules: true,
		},
		RAGThreshold: defaultRAGThreshold,
		NoMatchPick:  PickFirst,
		MenuSuggestions: []MenuItem{
			{Label: "Pagar impuestos", Message: "¿Cómo pago mis impuestos?"},
			{Label: "Sacar turno", Message: "Quiero sacar un turno"},
			{Label: "Hacer reclamo", Message: "Quiero hacer un reclamo"},
			{Label: "Ayuda", Message: "ayuda"},
		},
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
