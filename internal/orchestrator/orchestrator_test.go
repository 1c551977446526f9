package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kalambet/vecino/internal/intent"
	"github.com/kalambet/vecino/internal/knowledge"
	"github.com/kalambet/vecino/internal/llm"
	"github.com/kalambet/vecino/internal/retrieval"
	"github.com/kalambet/vecino/internal/rules"
	"github.com/kalambet/vecino/internal/settings"
)

// stubSettings serves fixed settings for selected bots and documented
// defaults for everything else.
type stubSettings struct {
	byBot map[string]settings.Settings
}

func (s stubSettings) Load(botID, channel string) settings.Settings {
	if st, ok := s.byBot[botID]; ok {
		return st.Clamped()
	}
	return settings.Defaults(botID, channel)
}

// stubGenerator records the last call and returns a canned reply.
type stubGenerator struct {
	reply    string
	err      error
	calls    int
	lastText string
	lastOpts llm.Options
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, opts llm.Options) (string, error) {
	g.calls++
	g.lastText = prompt
	g.lastOpts = opts
	return g.reply, g.err
}

func newTestOrchestrator(t *testing.T, cfg Config) (*Orchestrator, *stubGenerator) {
	t.Helper()
	gen := &stubGenerator{reply: "respuesta generada"}
	if cfg.Generator == nil {
		cfg.Generator = gen
	}
	if cfg.Settings == nil {
		cfg.Settings = stubSettings{}
	}
	if cfg.Knowledge == nil {
		cfg.Knowledge = knowledge.Default()
	}
	return New(cfg), gen
}

func respond(t *testing.T, o *Orchestrator, message, channel string) ChatResponse {
	t.Helper()
	resp, err := o.Respond(context.Background(), ChatRequest{
		SessionID: "s1",
		Message:   message,
		Channel:   channel,
	})
	if err != nil {
		t.Fatalf("Respond(%q): %v", message, err)
	}
	return resp
}

func TestRespond_BusinessHoursFAQ(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{})

	resp := respond(t, o, "¿Cuál es el horario de atención?", "web")
	if resp.Source != SourceFAQ {
		t.Errorf("Source = %q, want faq", resp.Source)
	}
	if !strings.Contains(resp.Reply, "lunes a viernes de 9 a 17") {
		t.Errorf("Reply = %q, want business-hours text", resp.Reply)
	}
	if resp.Escalated {
		t.Error("Escalated = true, want false")
	}
}

func TestRespond_GreetingRule(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{})

	resp := respond(t, o, "hola", "web")
	if resp.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", resp.Source)
	}
	if resp.Reply != "¡Hola! ¿En qué puedo ayudarte hoy?" {
		t.Errorf("Reply = %q, want the greeting rule's fixed text", resp.Reply)
	}
}

func TestRespond_OrdinanceRetrieval(t *testing.T) {
	o, gen := newTestOrchestrator(t, Config{})

	resp := respond(t, o, "Necesito conocer la ordenanza vigente sobre podas", "web")
	if resp.Source != SourceRAG {
		t.Fatalf("Source = %q, want rag (reply %q)", resp.Source, resp.Reply)
	}
	if !strings.Contains(resp.Reply, "4521/2023") {
		t.Errorf("Reply = %q, want the pruning ordinance answer", resp.Reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times during retrieval, want 0", gen.calls)
	}
}

func TestRespond_HandoffAlwaysEscalates(t *testing.T) {
	// Every toggle off: the handoff check must still fire.
	st := settings.Defaults(settings.DefaultBot, "web")
	st.Features.UseRules = false
	st.Features.UseRAG = false
	st.Features.UseGenericNoMatch = true

	o, gen := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.DefaultBot: st}},
	})

	resp := respond(t, o, "Quiero hablar con un agente humano", "web")
	if resp.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", resp.Source)
	}
	if !resp.Escalated {
		t.Error("Escalated = false, want true")
	}
	if resp.Reply != handoffReply {
		t.Errorf("Reply = %q, want the handoff reply", resp.Reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestRespond_UnmatchedFallsThroughToLLM(t *testing.T) {
	o, gen := newTestOrchestrator(t, Config{})

	resp := respond(t, o, "¿Cuál es la capital de Marte?", "web")
	if resp.Source != SourceLLM {
		t.Errorf("Source = %q, want llm", resp.Source)
	}
	if resp.Reply != "respuesta generada" {
		t.Errorf("Reply = %q", resp.Reply)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestRespond_GroundedOnlySkipsGenerator(t *testing.T) {
	o, gen := newTestOrchestrator(t, Config{GroundedOnly: true})

	resp := respond(t, o, "¿Cuál es la capital de Marte?", "web")
	if resp.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", resp.Source)
	}
	if resp.Reply != groundedOnlyReply {
		t.Errorf("Reply = %q, want the grounded-only abstention", resp.Reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestRespond_PerBotGroundedOnly(t *testing.T) {
	st := settings.Defaults(settings.DefaultBot, "web")
	st.GroundedOnly = true

	o, gen := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.DefaultBot: st}},
	})

	resp := respond(t, o, "¿Cuál es la capital de Marte?", "web")
	if resp.Source != SourceFallback || gen.calls != 0 {
		t.Errorf("Source = %q, generator calls = %d; want fallback and 0", resp.Source, gen.calls)
	}
}

func TestRespond_EmptyMessageRejected(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{})

	_, err := o.Respond(context.Background(), ChatRequest{SessionID: "s1", Message: "   ", Channel: "web"})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Respond(blank) error = %v, want ErrEmptyMessage", err)
	}
}

func TestRespond_FreeChannelShortcut(t *testing.T) {
	st := settings.Defaults(settings.FreeBot, "mar2")
	st.PrePrompts = []string{"Respondé en español rioplatense"}
	st.Generation.Temperature = 1.1
	st.Generation.MaxTokens = 64

	o, gen := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.FreeBot: st}},
	})

	// "hola" would hit a rule on the guided channel; the free channel goes
	// straight to the generative backend.
	resp := respond(t, o, "hola", "mar2")
	if resp.Source != SourceLLM {
		t.Errorf("Source = %q, want llm", resp.Source)
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want 1", gen.calls)
	}
	if !strings.HasPrefix(gen.lastText, "Seguí estas instrucciones al responder:\n- Respondé en español rioplatense") {
		t.Errorf("prompt = %q, want pre-prompt instruction block first", gen.lastText)
	}
	if !strings.HasSuffix(gen.lastText, "hola") {
		t.Errorf("prompt = %q, want original message last", gen.lastText)
	}
	if gen.lastOpts.Temperature != 1.1 || gen.lastOpts.MaxTokens != 64 {
		t.Errorf("options = %+v, want bot generation settings", gen.lastOpts)
	}
}

func TestRespond_RulesAbstentionStopsWaterfall(t *testing.T) {
	st := settings.Defaults(settings.DefaultBot, "web")
	st.Features.UseGenericNoMatch = true
	st.NoMatchReplies = []string{"Primera respuesta genérica", "Segunda"}

	o, gen := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.DefaultBot: st}},
	})

	// Force a faq intent that no rule answers so the engine abstains.
	o.SwapPatterns([]intent.Pattern{
		{Intent: intent.FAQ, Keywords: []string{"marte"}, Confidence: 0.9},
	})

	resp := respond(t, o, "tema sobre marte", "web")
	if resp.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", resp.Source)
	}
	if resp.Reply != "Primera respuesta genérica" {
		t.Errorf("Reply = %q, want first configured no-match reply", resp.Reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times after rules abstention, want 0", gen.calls)
	}
}

func TestRespond_UnknownIntentGenericNoMatch(t *testing.T) {
	st := settings.Defaults(settings.DefaultBot, "web")
	st.Features.UseGenericNoMatch = true

	o, gen := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.DefaultBot: st}},
	})

	resp := respond(t, o, "¿Cuál es la capital de Marte?", "web")
	if resp.Source != SourceFallback {
		t.Errorf("Source = %q, want fallback", resp.Source)
	}
	if resp.Reply != defaultNoMatchReply {
		t.Errorf("Reply = %q, want the fixed default abstention", resp.Reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestRespond_GeneratorFailureYieldsPlaceholder(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model exploded")}
	o := New(Config{Settings: stubSettings{}, Generator: gen})

	resp := respond(t, o, "¿Cuál es la capital de Marte?", "web")
	if resp.Source != SourceLLM {
		t.Errorf("Source = %q, want llm even on backend failure", resp.Source)
	}
	if resp.Reply != llm.PlaceholderReply {
		t.Errorf("Reply = %q, want the documented placeholder", resp.Reply)
	}
}

func TestRespond_CustomRuleOverridesDefault(t *testing.T) {
	st := settings.Defaults(settings.DefaultBot, "web")
	st.CustomRules = []rules.Config{
		{Keywords: []string{"hola"}, Response: "¡Buenas! Soy el bot de prueba.", Source: "fallback"},
	}

	o, _ := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.DefaultBot: st}},
	})

	resp := respond(t, o, "hola", "web")
	if resp.Reply != "¡Buenas! Soy el bot de prueba." {
		t.Errorf("Reply = %q, want the custom rule's reply", resp.Reply)
	}
}

func TestRespond_RAGDisabledFallsThrough(t *testing.T) {
	st := settings.Defaults(settings.DefaultBot, "web")
	st.Features.UseRAG = false

	o, gen := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.DefaultBot: st}},
	})

	resp := respond(t, o, "Necesito conocer la ordenanza vigente sobre podas", "web")
	if resp.Source != SourceLLM {
		t.Errorf("Source = %q, want llm with retrieval disabled", resp.Source)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestRespond_ThresholdAboveScoreFallsThrough(t *testing.T) {
	st := settings.Defaults(settings.DefaultBot, "web")
	st.RAGThreshold = 0.99

	o, _ := newTestOrchestrator(t, Config{
		Settings: stubSettings{byBot: map[string]settings.Settings{settings.DefaultBot: st}},
	})

	resp := respond(t, o, "Necesito conocer la ordenanza vigente sobre podas", "web")
	if resp.Source != SourceLLM {
		t.Errorf("Source = %q, want llm when threshold exceeds best score", resp.Source)
	}
}

func TestEngineFor_CachesByBasisPoints(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{})

	a := o.engineFor(0.28)
	b := o.engineFor(0.28)
	if a != b {
		t.Error("same threshold produced distinct engines")
	}

	// Floating rounding noise lands on the same basis-point key.
	c := o.engineFor(0.28000000001)
	if a != c {
		t.Error("rounding noise produced a duplicate engine")
	}

	d := o.engineFor(0.35)
	if a == d {
		t.Error("distinct thresholds share an engine")
	}
}

func TestReindex_SwapsEntriesAndClearsCache(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{})

	stale := o.engineFor(0.28)
	if stale == nil {
		t.Fatal("no engine before reindex")
	}

	o.Reindex([]retrieval.Entry{{
		UID:      "kb-pileta-001",
		Question: "¿Cuándo abre la pileta municipal?",
		Answer:   "La pileta municipal abre el 1 de diciembre.",
		Tags:     []string{"pileta", "natatorio"},
	}})

	fresh := o.engineFor(0.28)
	if fresh == stale {
		t.Error("threshold cache survived reindex")
	}
	if o.KnowledgeSize() != 1 {
		t.Errorf("KnowledgeSize() = %d, want 1", o.KnowledgeSize())
	}

	if _, ok := fresh.Search("Necesito conocer la ordenanza vigente sobre podas"); ok {
		t.Error("old entries still searchable after reindex")
	}
}

func TestReindex_EmptyDetachesRetrieval(t *testing.T) {
	o, gen := newTestOrchestrator(t, Config{})

	o.Reindex(nil)
	resp := respond(t, o, "Necesito conocer la ordenanza vigente sobre podas", "web")
	if resp.Source != SourceLLM {
		t.Errorf("Source = %q, want llm with retrieval detached", resp.Source)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestSwapPatterns_AffectsSubsequentRequests(t *testing.T) {
	o, _ := newTestOrchestrator(t, Config{})

	o.SwapPatterns([]intent.Pattern{
		{Intent: intent.Handoff, Keywords: []string{"hola"}, Confidence: 0.9},
	})

	resp := respond(t, o, "hola", "web")
	if !resp.Escalated {
		t.Error("swapped pattern set not in effect")
	}
}

func TestComposePrompt(t *testing.T) {
	if got := composePrompt(nil, "hola"); got != "hola" {
		t.Errorf("composePrompt(nil) = %q, want passthrough", got)
	}

	got := composePrompt([]string{"Sé breve", " ", "No inventes datos"}, "hola")
	want := "Seguí estas instrucciones al responder:\n- Sé breve\n- No inventes datos\n\nhola"
	if got != want {
		t.Errorf("composePrompt() = %q, want %q", got, want)
	}
}

func TestNoMatchReply_PickStrategies(t *testing.T) {
	st := settings.Settings{}
	if got := noMatchReply(st); got != defaultNoMatchReply {
		t.Errorf("noMatchReply(empty) = %q, want default", got)
	}

	st.NoMatchReplies = []string{"uno", "dos", "tres"}
	st.NoMatchPick = settings.PickFirst
	if got := noMatchReply(st); got != "uno" {
		t.Errorf("noMatchReply(first) = %q, want uno", got)
	}

	st.NoMatchPick = settings.PickRandom
	seen := map[string]bool{}
	for range 100 {
		seen[noMatchReply(st)] = true
	}
	for reply := range seen {
		if reply != "uno" && reply != "dos" && reply != "tres" {
			t.Errorf("random pick produced unconfigured reply %q", reply)
		}
	}
}
