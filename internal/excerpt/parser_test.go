package excerpt

import (
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{"plain paragraph", "<p>Pack light for Lisbon</p>", "Pack light for Lisbon"},
		{"nested markup", "<div><h1>Bali</h1><p>Surf &amp; temples</p></div>", "Bali Surf & temples"},
		{"script stripped", "<p>Visible</p><script>alert(1)</script>", "Visible"},
		{"style stripped", "<style>p{color:red}</style><p>Visible</p>", "Visible"},
		{"whitespace collapsed", "<p>a\n\n   b\t c</p>", "a b c"},
		{"empty body", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Extract(tt.html, 0)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if meta.Text != tt.expected {
				t.Errorf("Extract().Text = %q, want %q", meta.Text, tt.expected)
			}
		})
	}
}

func TestExtractTruncation(t *testing.T) {
	html := "<p>" + strings.Repeat("wander ", 100) + "</p>"
	meta, err := Extract(html, 50)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len([]rune(meta.Text)) > 51 { // 50 plus ellipsis
		t.Errorf("excerpt length = %d runes, want <= 51", len([]rune(meta.Text)))
	}
	if !strings.HasSuffix(meta.Text, "…") {
		t.Errorf("truncated excerpt should end with ellipsis, got %q", meta.Text)
	}
	for _, w := range strings.Fields(strings.TrimSuffix(meta.Text, "…")) {
		if w != "wander" {
			t.Errorf("truncation split a word: %q", meta.Text)
		}
	}
}

func TestExtractLinks(t *testing.T) {
	html := `
		<p>Book via <a href="https://example.com/hotels">hotels</a>
		or <a href="https://example.com/hotels">the same link</a>.
		<a href="/relative">internal</a>
		<a href="mailto:x@y.z">mail</a>
		<a href="http://maps.example.com">maps</a></p>
	`
	meta, err := Extract(html, 0)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{"https://example.com/hotels", "http://maps.example.com"}
	if len(meta.Links) != len(want) {
		t.Fatalf("Links = %v, want %v", meta.Links, want)
	}
	for i, link := range want {
		if meta.Links[i] != link {
			t.Errorf("Links[%d] = %q, want %q", i, meta.Links[i], link)
		}
	}
}

func TestExtractWordCount(t *testing.T) {
	meta, err := Extract("<p>one two three</p>", 0)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if meta.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", meta.WordCount)
	}
}
