package knowledge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/vecino/internal/retrieval"
)

// Paragraphs shorter than this are discarded during document ingestion:
// headings, greetings and boilerplate carry no retrievable answer.
const minParagraphLen = 160

// Synthetic questions are truncated to this many characters.
const maxQuestionLen = 120

var (
	paragraphSplit = regexp.MustCompile(`\n\s*\n+`)
	sentenceSplit  = regexp.MustCompile(`(?:[.!?])\s+`)
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
)

// LoadDocsDir walks a directory of plain documents (*.txt, *.pdf, *.html,
// *.htm) and synthesizes knowledge entries from their paragraphs. A missing
// or empty directory yields no entries and no error. Files that fail to
// parse are skipped.
func LoadDocsDir(dir string) ([]retrieval.Entry, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading docs directory: %w", err)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name() < names[j].Name() })

	// Parse files concurrently; PDF extraction dominates ingestion time.
	// Results land in a per-file slot so entry order stays deterministic.
	perFile := make([][]retrieval.Entry, len(names))
	var g errgroup.Group
	g.SetLimit(4)
	for i, de := range names {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(dir, de.Name())
		stem := fileStem(de.Name())
		ext := strings.ToLower(filepath.Ext(de.Name()))
		g.Go(func() error {
			var (
				text string
				kind string
			)
			switch ext {
			case ".txt":
				raw, err := os.ReadFile(path)
				if err != nil {
					return nil
				}
				text, kind = string(raw), "txt"
			case ".pdf":
				extracted, err := pdfText(path)
				if err != nil {
					return nil
				}
				text, kind = extracted, "pdf"
			case ".html", ".htm":
				raw, err := os.ReadFile(path)
				if err != nil {
					return nil
				}
				text, kind = htmlText(string(raw)), "html"
			default:
				return nil
			}
			perFile[i] = entriesFromText(kind, stem, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []retrieval.Entry
	for _, batch := range perFile {
		entries = append(entries, batch...)
	}
	return entries, nil
}

// entriesFromText splits raw document text into paragraph entries. Each
// sufficiently long paragraph becomes one entry: the first sentence (or a
// truncated prefix) as the synthetic question, the full paragraph as the
// answer, and filename-derived tokens as tags.
func entriesFromText(kind, stem string, text string) []retrieval.Entry {
	var tags []string
	for _, t := range nonAlnum.Split(strings.ToLower(stem), -1) {
		if t != "" {
			tags = append(tags, t)
		}
	}

	var entries []retrieval.Entry
	for i, block := range paragraphSplit.Split(text, -1) {
		para := strings.TrimSpace(block)
		if utf8.RuneCountInString(para) < minParagraphLen {
			continue
		}

		question := para
		if loc := sentenceSplit.FindStringIndex(para); loc != nil {
			question = strings.TrimSpace(para[:loc[0]+1])
		}
		if utf8.RuneCountInString(question) > maxQuestionLen {
			question = strings.TrimSpace(truncateRunes(question, maxQuestionLen-3)) + "…"
		}

		entries = append(entries, retrieval.Entry{
			UID:      fmt.Sprintf("%s-%s-%03d", kind, stem, i),
			Question: question,
			Answer:   para,
			Tags:     tags,
		})
	}
	return entries
}

func fileStem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// pdfText extracts the plain text of a PDF file.
func pdfText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return string(raw), nil
}

// htmlText strips markup from an HTML document, keeping text nodes outside
// script and style elements. Block-level boundaries are approximated with
// newlines so paragraph splitting still works.
func htmlText(doc string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))

	var sb strings.Builder
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				skipDepth++
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "tr":
				sb.WriteString("\n\n")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if n := string(name); (n == "script" || n == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.WriteString(string(tokenizer.Text()))
			}
		}
	}
}
