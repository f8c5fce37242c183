package excerpt

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultMaxLen = 200

// Meta is what the content service derives from a template's HTML body on
// every create/update.
type Meta struct {
	Text      string   `json:"text"`
	Links     []string `json:"links,omitempty"`
	WordCount int      `json:"word_count"`
}

// Extract pulls a plain-text excerpt and the outbound links out of template
// HTML. maxLen <= 0 uses the default of 200 runes; truncation happens at a
// word boundary with a trailing ellipsis.
func Extract(html string, maxLen int) (Meta, error) {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Meta{}, err
	}

	doc.Find("script, style").Remove()

	text := normalizeWhitespace(doc.Text())
	words := strings.Fields(text)

	meta := Meta{
		Text:      truncateWords(text, maxLen),
		WordCount: len(words),
	}

	seen := map[string]bool{}
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true
		meta.Links = append(meta.Links, href)
	})

	return meta, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateWords(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	cut := string(runes[:maxLen])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
