package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	entries := Default()
	if len(entries) == 0 {
		t.Fatal("Default() returned no entries")
	}
	for _, e := range entries {
		if e.UID == "" || e.Question == "" || e.Answer == "" {
			t.Errorf("entry %+v has empty required field", e)
		}
	}

	// The embedded set must cover the pruning ordinance.
	found := false
	for _, e := range entries {
		if strings.Contains(e.Answer, "ordenanza vigente sobre podas") {
			found = true
		}
	}
	if !found {
		t.Error("embedded knowledge base is missing the pruning ordinance entry")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faqs.json")
	content := `// comentario de línea
[
  {"uid": "x-1", "question": "¿Pregunta?", "answer": "Respuesta.", "tags": ["a", "b"]},
  /* bloque */
  {"question": "Sin uid", "answer": "También vale // no es comentario", "tags": []}
]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("LoadFile() = %d entries, want 2", len(entries))
	}
	if entries[0].UID != "x-1" {
		t.Errorf("UID = %q, want x-1", entries[0].UID)
	}
	if entries[1].UID == "" {
		t.Error("missing uid was not assigned")
	}
	if entries[1].Answer != "También vale // no es comentario" {
		t.Errorf("comment stripping corrupted string content: %q", entries[1].Answer)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	entries, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFile() on missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("LoadFile() = %d entries, want 0", len(entries))
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{not an array`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() on malformed file returned nil error")
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"line comment", "[1, 2] // tail", "[1, 2] "},
		{"block comment", "[1, /* gone */ 2]", "[1,  2]"},
		{"slashes inside string", `{"url": "http://example.com"}`, `{"url": "http://example.com"}`},
		{"escaped quote", `{"a": "say \" // ok"}`, `{"a": "say \" // ok"}`},
		{"multiline block", "[1,\n/* a\nb */ 2]", "[1,\n 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripComments(tt.in); got != tt.want {
				t.Errorf("stripComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadDocsDir(t *testing.T) {
	dir := t.TempDir()

	long := strings.Repeat("La ordenanza municipal regula la poda del arbolado urbano. ", 4)
	content := "Encabezado corto\n\n" + long + "\n\n" + "Otro párrafo corto."
	if err := os.WriteFile(filepath.Join(dir, "ordenanza-poda.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadDocsDir(dir)
	if err != nil {
		t.Fatalf("LoadDocsDir() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("LoadDocsDir() = %d entries, want 1 (short paragraphs discarded)", len(entries))
	}

	e := entries[0]
	if e.UID != "txt-ordenanza-poda-001" {
		t.Errorf("UID = %q, want txt-ordenanza-poda-001", e.UID)
	}
	if e.Question != "La ordenanza municipal regula la poda del arbolado urbano." {
		t.Errorf("Question = %q, want first sentence", e.Question)
	}
	if e.Answer != strings.TrimSpace(long) {
		t.Errorf("Answer should be the full paragraph, got %q", e.Answer)
	}
	wantTags := []string{"ordenanza", "poda"}
	if len(e.Tags) != len(wantTags) || e.Tags[0] != "ordenanza" || e.Tags[1] != "poda" {
		t.Errorf("Tags = %v, want %v", e.Tags, wantTags)
	}
}

func TestLoadDocsDir_Missing(t *testing.T) {
	entries, err := LoadDocsDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("LoadDocsDir() on missing dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("LoadDocsDir() = %d entries, want 0", len(entries))
	}
}

func TestEntriesFromText_LongFirstSentenceTruncated(t *testing.T) {
	para := strings.Repeat("palabra ", 40) // single long "sentence" with no period
	entries := entriesFromText("txt", "doc", para)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	q := entries[0].Question
	if !strings.HasSuffix(q, "…") {
		t.Errorf("Question %q not truncated with ellipsis", q)
	}
	if len([]rune(q)) > 120 {
		t.Errorf("Question is %d runes, want <= 120", len([]rune(q)))
	}
}

func TestEntriesFromText_AccentedLengthsCountRunes(t *testing.T) {
	// 101 runes but 201 bytes: short enough to keep whole, so no ellipsis.
	sentence := strings.Repeat("ñ", 100) + "."
	para := sentence + " " + strings.Repeat("palabra ", 10)
	entries := entriesFromText("txt", "doc", para)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].Question; got != sentence {
		t.Errorf("Question = %q, want the untruncated first sentence", got)
	}

	// 150 runes but 300 bytes: below the paragraph minimum, so discarded.
	short := strings.Repeat("ñ", 150)
	if entries := entriesFromText("txt", "doc", short); len(entries) != 0 {
		t.Errorf("got %d entries for a short accented paragraph, want 0", len(entries))
	}
}

func TestHTMLText(t *testing.T) {
	doc := `<html><head><style>p{color:red}</style><script>var x=1;</script></head>` +
		`<body><h1>Título</h1><p>Primer párrafo.</p><p>Segundo párrafo.</p></body></html>`
	text := htmlText(doc)
	if strings.Contains(text, "color:red") || strings.Contains(text, "var x=1") {
		t.Errorf("htmlText() kept script/style content: %q", text)
	}
	for _, want := range []string{"Título", "Primer párrafo.", "Segundo párrafo."} {
		if !strings.Contains(text, want) {
			t.Errorf("htmlText() missing %q in %q", want, text)
		}
	}
}
