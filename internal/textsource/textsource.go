package textsource

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Document is one loaded Klassenbuch export, ready for extraction.
type Document struct {
	ID   string
	Name string
	Size int64
	Text string
}

// Load reads an already-decoded Klassenbuch export from disk. Plain .txt
// dumps pass through as-is; .html/.htm exports are flattened to plain text
// first. All text is NFC-normalized so combining diacritics from OCR or
// export layers match the extractor's precomposed character classes.
func Load(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}

	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text = FromHTML(raw)
	default:
		text = string(raw)
	}

	return Document{
		ID:   uuid.NewString(),
		Name: filepath.Base(path),
		Size: int64(len(raw)),
		Text: norm.NFC.String(text),
	}, nil
}

// FromHTML flattens a Klassenbuch HTML export to plain text. Script, style
// and navigation subtrees are skipped; block elements and table rows break
// lines, table cells separate with spaces. The result keeps enough layout
// for the header and due-date scans to find their markers in reading order.
func FromHTML(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	var b strings.Builder
	flatten(&b, node)
	return tidy(b.String())
}

func flatten(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "head":
			return
		case "br", "tr", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "tr", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "table":
			b.WriteString("\n")
		}
	}
}

// tidy collapses space runs within lines and drops consecutive blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, strings.Join(fields, " "))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}
