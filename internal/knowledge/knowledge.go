// Package knowledge loads knowledge-base entries for the retrieval engine.
// Sources are a structured FAQ file (JSON with comments allowed) and plain
// documents (text, PDF, HTML) split into paragraph-sized entries. Loading is
// a pure transformation into retrieval entries; a missing source means an
// empty knowledge base, never a startup failure.
package knowledge

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/kalambet/vecino/internal/retrieval"
)

//go:embed data/municipal_faqs.json
var defaultFS embed.FS

// Default returns the embedded municipal FAQ set.
func Default() []retrieval.Entry {
	raw, err := defaultFS.ReadFile("data/municipal_faqs.json")
	if err != nil {
		// Embedded asset, unreachable unless the build is broken.
		panic(fmt.Sprintf("reading embedded knowledge: %v", err))
	}
	entries, err := parseEntries(raw)
	if err != nil {
		panic(fmt.Sprintf("parsing embedded knowledge: %v", err))
	}
	return entries
}

// LoadFile reads a knowledge file: a JSON array of {uid, question, answer,
// tags} objects. Line (//) and block (/* */) comments are stripped before
// parsing so the file can carry inline documentation. Entries without a uid
// are assigned a generated one. An absent file yields no entries and no
// error, like a missing docs directory.
func LoadFile(path string) ([]retrieval.Entry, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Warn("knowledge file missing, starting with an empty knowledge base", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading knowledge file: %w", err)
	}
	entries, err := parseEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing knowledge file %s: %w", path, err)
	}
	return entries, nil
}

func parseEntries(raw []byte) ([]retrieval.Entry, error) {
	cleaned := stripComments(string(raw))

	var payload []struct {
		UID      string   `json:"uid"`
		Question string   `json:"question"`
		Answer   string   `json:"answer"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	entries := make([]retrieval.Entry, 0, len(payload))
	for _, item := range payload {
		uid := item.UID
		if uid == "" {
			uid = uuid.NewString()
		}
		entries = append(entries, retrieval.Entry{
			UID:      uid,
			Question: item.Question,
			Answer:   item.Answer,
			Tags:     item.Tags,
		})
	}
	return entries, nil
}
