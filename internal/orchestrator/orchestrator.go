// Package orchestrator composes the classifier, rule engine and retrieval
// engine into the per-request decision waterfall, delegating to the
// generative backend as last resort.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/kalambet/vecino/internal/intent"
	"github.com/kalambet/vecino/internal/llm"
	"github.com/kalambet/vecino/internal/retrieval"
	"github.com/kalambet/vecino/internal/rules"
	"github.com/kalambet/vecino/internal/settings"
)

// Source tags where a reply came from.
type Source string

const (
	SourceFAQ      Source = "faq"
	SourceRAG      Source = "rag"
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// ChatRequest is the single inbound message shape.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Channel   string `json:"channel"`
	BotID     string `json:"bot_id,omitempty"`
}

// ChatResponse carries the reply with its provenance.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Source    Source `json:"source"`
	Escalated bool   `json:"escalated"`
}

// ErrEmptyMessage rejects requests before they enter the pipeline. It is the
// only error Respond returns; everything past validation resolves to a reply.
var ErrEmptyMessage = errors.New("message must not be empty")

const (
	handoffReply = "Te derivo con un agente humano para poder ayudarte mejor."

	defaultNoMatchReply = "No logré entender tu consulta. Probá reformularla o escribí ‘menu’ " +
		"para ver las opciones disponibles."

	groundedOnlyReply = "Por ahora sólo puedo responder consultas sobre trámites y servicios " +
		"municipales. Probá reformular tu pregunta o escribí ‘menu’."
)

// SettingsProvider loads the per-bot settings snapshot for a request.
// Loads must be idempotent given identical inputs and never fail: malformed
// stored settings resolve to defaults inside the provider.
type SettingsProvider interface {
	Load(botID, channel string) settings.Settings
}

// Config wires an Orchestrator.
type Config struct {
	Settings  SettingsProvider
	Generator llm.Generator
	// Patterns seeds the intent classifier; nil installs the defaults.
	Patterns []intent.Pattern
	// Knowledge seeds the retrieval index; empty leaves retrieval detached.
	Knowledge []retrieval.Entry
	// GroundedOnly forbids generative answers process-wide.
	GroundedOnly bool
}

// Orchestrator is the public pipeline entry point. It is stateless across
// requests: every request loads a fresh settings snapshot and the only
// mutable shared state is the threshold-keyed engine cache.
type Orchestrator struct {
	settings     SettingsProvider
	generator    llm.Generator
	classifier   *intent.Classifier
	groundedOnly bool

	mu      sync.Mutex
	index   *retrieval.Index
	engines map[int]*retrieval.Engine
}

// New builds an Orchestrator. The knowledge entries are indexed once here;
// per-threshold engines are derived lazily from that shared index.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		settings:     cfg.Settings,
		generator:    cfg.Generator,
		classifier:   intent.NewClassifier(cfg.Patterns),
		groundedOnly: cfg.GroundedOnly,
		engines:      make(map[int]*retrieval.Engine),
	}
	if len(cfg.Knowledge) > 0 {
		o.index = retrieval.NewIndex(cfg.Knowledge)
	}
	return o
}

// Respond routes one message through the decision waterfall and returns
// exactly one response. Later phases are entered only when earlier phases
// did not resolve; a rules-phase abstention never falls through to
// retrieval. The context is propagated only to the generative call.
func (o *Orchestrator) Respond(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatResponse{}, ErrEmptyMessage
	}

	channel := strings.ToLower(req.Channel)
	botID := settings.ResolveBot(req.BotID, channel)
	st := o.settings.Load(botID, channel)

	// Free-conversation channels skip classification, rules and retrieval.
	if settings.IsFreeChannel(channel) {
		return o.generate(ctx, req, st), nil
	}

	pred := o.classifier.Classify(req.Message)
	slog.Debug("message classified", "session", req.SessionID, "bot", botID,
		"intent", pred.Intent, "confidence", pred.Confidence)

	// Handoff bypasses every feature toggle.
	if pred.Intent == intent.Handoff {
		return ChatResponse{
			SessionID: req.SessionID,
			Reply:     handoffReply,
			Source:    SourceFallback,
			Escalated: true,
		}, nil
	}

	if (pred.Intent == intent.FAQ || pred.Intent == intent.Smalltalk) && st.Features.UseRules {
		engine := rules.NewEngine(st.EffectiveRules())
		if reply, src, ok := engine.Respond(req.Message); ok {
			return o.build(req, reply, Source(src)), nil
		}
		// The rules branch resolves here one way or the other: an
		// abstention never falls through to retrieval.
		if st.Features.UseGenericNoMatch {
			return o.build(req, noMatchReply(st), SourceFallback), nil
		}
	}

	if pred.Intent == intent.RAG && st.Features.UseRAG {
		if engine := o.engineFor(st.RAGThreshold); engine != nil {
			if answer, ok := engine.Search(req.Message); ok {
				return o.build(req, answer, SourceRAG), nil
			}
		}
	}

	if pred.Intent == intent.Unknown && st.Features.UseGenericNoMatch {
		return o.build(req, noMatchReply(st), SourceFallback), nil
	}

	if o.groundedOnly || st.GroundedOnly {
		return o.build(req, groundedOnlyReply, SourceFallback), nil
	}

	return o.generate(ctx, req, st), nil
}

// SwapPatterns replaces the active intent-pattern set for subsequent
// requests. In-flight requests keep the snapshot they classified with.
func (o *Orchestrator) SwapPatterns(patterns []intent.Pattern) {
	o.classifier.Swap(patterns)
}

// Patterns returns a copy of the active intent-pattern set.
func (o *Orchestrator) Patterns() []intent.Pattern {
	return o.classifier.Patterns()
}

// Reindex replaces the knowledge base for subsequent requests. The new
// index is built outside the lock; the swap and the threshold-cache
// invalidation happen atomically, so a request never pairs stale engines
// with fresh entries. Passing no entries detaches retrieval.
func (o *Orchestrator) Reindex(entries []retrieval.Entry) {
	var ix *retrieval.Index
	if len(entries) > 0 {
		ix = retrieval.NewIndex(entries)
	}

	o.mu.Lock()
	o.index = ix
	o.engines = make(map[int]*retrieval.Engine)
	o.mu.Unlock()

	slog.Info("knowledge base reindexed", "entries", len(entries))
}

// KnowledgeSize returns the number of indexed knowledge entries.
func (o *Orchestrator) KnowledgeSize() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.index == nil {
		return 0
	}
	return o.index.Len()
}

// engineFor returns the cached retrieval engine for a threshold, creating
// it on first use. The cache key is the threshold in integer basis points:
// float values that round to the same ten-thousandth share an engine, so
// rounding noise (0.28 vs 0.28000000001) cannot duplicate entries.
func (o *Orchestrator) engineFor(threshold float64) *retrieval.Engine {
	key := int(math.Round(threshold * 10000))

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.index == nil {
		return nil
	}
	if e, ok := o.engines[key]; ok {
		return e
	}
	e := retrieval.NewEngine(o.index, threshold)
	o.engines[key] = e
	return e
}

// generate composes the message with any configured pre-prompt instructions
// and delegates to the generative backend. Backend failures and empty
// completions degrade to the documented placeholder reply; the source stays
// "llm" either way.
func (o *Orchestrator) generate(ctx context.Context, req ChatRequest, st settings.Settings) ChatResponse {
	prompt := composePrompt(st.PrePrompts, req.Message)
	reply, err := o.generator.Generate(ctx, prompt, llm.Options{
		Temperature: st.Generation.Temperature,
		TopP:        st.Generation.TopP,
		MaxTokens:   st.Generation.MaxTokens,
	})
	if err != nil {
		slog.Warn("generative backend failed, using placeholder", "session", req.SessionID, "error", err)
		reply = llm.PlaceholderReply
	}
	if reply == "" {
		reply = llm.PlaceholderReply
	}
	return o.build(req, reply, SourceLLM)
}

func (o *Orchestrator) build(req ChatRequest, reply string, source Source) ChatResponse {
	return ChatResponse{
		SessionID: req.SessionID,
		Reply:     reply,
		Source:    source,
	}
}

// composePrompt prepends the pre-prompt instructions as an instruction
// block. With no instructions the message passes through untouched.
func composePrompt(prePrompts []string, message string) string {
	var instructions []string
	for _, p := range prePrompts {
		if s := strings.TrimSpace(p); s != "" {
			instructions = append(instructions, "- "+s)
		}
	}
	if len(instructions) == 0 {
		return message
	}
	return fmt.Sprintf("Seguí estas instrucciones al responder:\n%s\n\n%s",
		strings.Join(instructions, "\n"), message)
}

// noMatchReply picks the generic abstention reply per the configured
// strategy. With no replies configured a fixed default is used.
func noMatchReply(st settings.Settings) string {
	if len(st.NoMatchReplies) == 0 {
		return defaultNoMatchReply
	}
	if st.NoMatchPick == settings.PickRandom {
		return st.NoMatchReplies[rand.IntN(len(st.NoMatchReplies))]
	}
	return st.NoMatchReplies[0]
}
