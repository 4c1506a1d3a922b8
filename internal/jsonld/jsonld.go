// Package jsonld implements the JSON-LD extractor (component E of
// SPEC_FULL.md): pull schema.org Article-family metadata out of
// <script type="application/ld+json"> blocks so the conversion façade can
// skip the heavier readability/markdown path when a publisher already
// hands over structured article data.
package jsonld

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// minBodyLen is the trimmed-length floor below which an otherwise
// qualifying object is rejected as insufficient, per spec.md §4.5.
const minBodyLen = 200

// articleTypes are the schema.org @type values this extractor accepts.
var articleTypes = map[string]bool{
	"Article":              true,
	"NewsArticle":          true,
	"BlogPosting":          true,
	"WebPage":              true,
	"ReportageNewsArticle": true,
}

// Result is the JSON-LD article this package extracts.
type Result struct {
	Title   string
	Author  string
	Date    string
	Content string
}

// Extract parses rawHTML, iterates every application/ld+json script, and
// returns the first object whose @type qualifies and whose body text is
// long enough. Returns ok=false if nothing qualified.
func Extract(rawHTML string) (Result, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Result{}, false
	}

	var found Result
	var ok bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		res, qualifies := parseBlock(s.Text())
		if qualifies {
			found = res
			ok = true
			return false // stop at first match
		}
		return true
	})

	return found, ok
}

// parseBlock parses one script block's text, flattening a top-level
// array and accepting the first element whose @type qualifies.
func parseBlock(raw string) (Result, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{}, false
	}

	var single map[string]any
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		return fromObject(single)
	}

	var list []map[string]any
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		for _, obj := range list {
			if res, ok := fromObject(obj); ok {
				return res, true
			}
		}
	}

	return Result{}, false
}

func fromObject(obj map[string]any) (Result, bool) {
	if !typeQualifies(obj["@type"]) {
		return Result{}, false
	}

	body := firstNonEmpty(joinIfArray(obj["articleBody"]), joinIfArray(obj["text"]))
	body = strings.TrimSpace(body)
	if len(body) < minBodyLen {
		return Result{}, false
	}

	return Result{
		Title:   firstNonEmpty(stringOrFirst(obj["headline"]), stringOrFirst(obj["name"])),
		Author:  extractAuthor(obj["author"]),
		Date:    normalizeDate(firstNonEmpty(stringOf(obj["datePublished"]), stringOf(obj["dateModified"]))),
		Content: body,
	}, true
}

func typeQualifies(v any) bool {
	switch t := v.(type) {
	case string:
		return articleTypes[t]
	case []any:
		if len(t) == 0 {
			return false
		}
		if s, ok := t[0].(string); ok {
			return articleTypes[s]
		}
	}
	return false
}

// joinIfArray stringifies v, joining array elements with spaces.
func joinIfArray(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// stringOrFirst returns v as a string, or the first element if v is an
// array (used for headline/name, which schema.org allows as either).
func stringOrFirst(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		if s, ok := t[0].(string); ok {
			return s
		}
	}
	return ""
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// extractAuthor implements spec.md §4.5's author resolution: an object's
// name, an array's first element's name (or string), else the stringified
// value.
func extractAuthor(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return stringOf(t["name"])
	case []any:
		if len(t) == 0 {
			return ""
		}
		switch first := t[0].(type) {
		case map[string]any:
			return stringOf(first["name"])
		case string:
			return first
		}
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
	return ""
}

// normalizeDate reshapes whatever date format a publisher's JSON-LD uses
// into RFC3339, so downstream consumers (the JSON envelope in
// internal/convert) don't have to special-case every publisher's format.
// Falls back to the raw string unchanged if it doesn't parse as a date.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format(time.RFC3339)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
