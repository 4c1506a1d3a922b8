package jsonld

import (
	"strings"
	"testing"
)

func TestExtract_NewsArticle(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "NewsArticle",
  "headline": "Big Story Breaks",
  "author": {"@type": "Person", "name": "Jane Doe"},
  "datePublished": "2026-01-02T10:00:00Z",
  "articleBody": "` + longBody() + `"
}
</script>
</head><body></body></html>`

	got, ok := Extract(html)
	if !ok {
		t.Fatal("expected a qualifying JSON-LD object")
	}
	if got.Title != "Big Story Breaks" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Author != "Jane Doe" {
		t.Errorf("Author = %q", got.Author)
	}
	if got.Date != "2026-01-02T10:00:00Z" {
		t.Errorf("Date = %q", got.Date)
	}
}

func TestExtract_ArrayOfTypes(t *testing.T) {
	html := `<script type="application/ld+json">
[{"@type": ["BlogPosting"], "headline": "Post", "text": "` + longBody() + `"}]
</script>`

	got, ok := Extract(html)
	if !ok {
		t.Fatal("expected the array form to qualify")
	}
	if got.Title != "Post" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestExtract_WrongTypeRejected(t *testing.T) {
	html := `<script type="application/ld+json">
{"@type": "Product", "name": "Widget", "text": "` + longBody() + `"}
</script>`

	if _, ok := Extract(html); ok {
		t.Error("Product should not qualify as an article type")
	}
}

func TestExtract_TooShortRejected(t *testing.T) {
	html := `<script type="application/ld+json">
{"@type": "Article", "headline": "Short", "articleBody": "too short"}
</script>`

	if _, ok := Extract(html); ok {
		t.Error("body under 200 chars should be rejected")
	}
}

func TestExtract_MalformedJSONSkipped(t *testing.T) {
	html := `<script type="application/ld+json">not json at all</script>`
	if _, ok := Extract(html); ok {
		t.Error("malformed JSON-LD should not qualify")
	}
}

func TestExtract_AuthorArrayFirstElement(t *testing.T) {
	html := `<script type="application/ld+json">
{"@type": "Article", "headline": "T", "articleBody": "` + longBody() + `",
 "author": [{"name": "First Author"}, {"name": "Second Author"}]}
</script>`

	got, ok := Extract(html)
	if !ok {
		t.Fatal("expected match")
	}
	if got.Author != "First Author" {
		t.Errorf("Author = %q, want First Author", got.Author)
	}
}

func TestExtract_DateNormalizedToRFC3339(t *testing.T) {
	html := `<script type="application/ld+json">
{"@type": "Article", "headline": "T", "articleBody": "` + longBody() + `",
 "datePublished": "January 2, 2026 10:00:00 UTC"}
</script>`

	got, ok := Extract(html)
	if !ok {
		t.Fatal("expected match")
	}
	if !strings.HasPrefix(got.Date, "2026-01-02T10:00:00Z") {
		t.Errorf("Date = %q, want an RFC3339 2026-01-02T10:00:00Z prefix", got.Date)
	}
}

func TestNormalizeDate_UnparsableFallsBackToRaw(t *testing.T) {
	if got := normalizeDate("not-a-date-at-all"); got != "not-a-date-at-all" {
		t.Errorf("normalizeDate = %q, want unchanged passthrough", got)
	}
	if got := normalizeDate(""); got != "" {
		t.Errorf("normalizeDate(\"\") = %q, want empty", got)
	}
}

func longBody() string {
	s := ""
	for len(s) < 250 {
		s += "word "
	}
	return s
}
