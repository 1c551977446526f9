package rules

// Config is the persisted, per-bot form of a rule. Unlike Rule it carries an
// enabled flag and arrives from storage, so it is validated before it ever
// reaches the engine: disabled or malformed entries are filtered here, not
// at match time.
type Config struct {
	Keywords   []string `json:"keywords"`
	Response   string   `json:"response"`
	Source     string   `json:"source,omitempty"`
	MinMatches int      `json:"min_matches,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty"`
}

// rule converts a validated Config into an engine Rule. The boolean is false
// for entries that must be dropped: disabled, empty keyword list, or missing
// response.
func (c Config) rule() (Rule, bool) {
	if c.Enabled != nil && !*c.Enabled {
		return Rule{}, false
	}
	if len(c.Keywords) == 0 || c.Response == "" {
		return Rule{}, false
	}
	keywords := make([]string, 0, len(c.Keywords))
	for _, kw := range c.Keywords {
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return Rule{}, false
	}
	src := SourceFAQ
	if c.Source == string(SourceFallback) {
		src = SourceFallback
	}
	min := c.MinMatches
	if min < 0 {
		min = 0
	}
	return Rule{Keywords: keywords, Response: c.Response, Source: src, MinMatches: min}, true
}

// Merge builds the effective ordered rule list for a request: valid custom
// rules first, then the built-in defaults when includeDefaults is true.
// Custom rules therefore always take precedence over defaults.
func Merge(custom []Config, includeDefaults bool) []Rule {
	var out []Rule
	for _, c := range custom {
		if r, ok := c.rule(); ok {
			out = append(out, r)
		}
	}
	if includeDefaults {
		out = append(out, DefaultRules()...)
	}
	return out
}
