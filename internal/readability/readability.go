// Package readability wraps go-shiori/go-readability (component F of
// SPEC_FULL.md), the Mozilla-Readability-equivalent content extractor
// the converter falls back to when neither JSON-LD nor an already-Markdown
// strategy result is available.
//
// Grounded on Easonliuliang-purify's cleaner/readability.go for the
// library choice and the length-floor fallback idea; restructured around a
// single internal extraction step that reports *why* it gave up, rather
// than three separate parse/extract/length checks each logging on their
// own, and reshaped to return this package's own Article rather than the
// library's.
package readability

import (
	"errors"
	"fmt"
	"log/slog"
	nurl "net/url"
	"strings"

	goreadability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length, in characters, for
// readability output to be considered valid.
const minContentLength = 50

// Article is the subset of go-readability's output this pipeline needs.
type Article struct {
	Title       string
	Content     string // HTML fragment
	TextContent string
	Byline      string
	SiteName    string
	Excerpt     string
}

var errContentTooShort = errors.New("extracted content below minimum length")

// Extract runs the Readability algorithm on rawHTML. ok is false when the
// algorithm failed or produced too little text; in that case Article wraps
// the raw HTML unmodified so callers never get an empty body. Every
// failure path logs once, at the call site, with the reason attached —
// extractArticle itself stays silent so it can be reused without a logger
// dependency leaking into its signature.
func Extract(rawHTML, sourceURL string) (Article, bool) {
	article, err := extractArticle(rawHTML, sourceURL)
	if err != nil {
		slog.Warn("readability: falling back to raw HTML", "url", sourceURL, "reason", err)
		return rawArticle(rawHTML), false
	}
	return article, true
}

// extractArticle does the real work: parse the source URL, run
// go-readability against it, and reject the result if it's too thin to be
// the actual article body.
func extractArticle(rawHTML, sourceURL string) (Article, error) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		return Article{}, fmt.Errorf("parse source url: %w", err)
	}

	parsed, err := goreadability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return Article{}, fmt.Errorf("readability algorithm: %w", err)
	}

	if n := len(strings.TrimSpace(parsed.TextContent)); n < minContentLength {
		return Article{}, fmt.Errorf("%w: got %d chars, need %d", errContentTooShort, n, minContentLength)
	}

	return fromLibrary(parsed), nil
}

func fromLibrary(a goreadability.Article) Article {
	return Article{
		Title:       a.Title,
		Content:     a.Content,
		TextContent: a.TextContent,
		Byline:      a.Byline,
		SiteName:    a.SiteName,
		Excerpt:     a.Excerpt,
	}
}

// rawArticle wraps rawHTML so the rest of the pipeline has something
// non-empty to render regardless of why extraction gave up.
func rawArticle(rawHTML string) Article {
	return Article{Content: rawHTML, TextContent: rawHTML}
}
