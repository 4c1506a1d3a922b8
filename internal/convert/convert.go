// Package convert implements the conversion façade (component H of
// SPEC_FULL.md), the public entry point the CLI and any future transport
// calls. It sequences the cache lookup, the orchestrator race, and the
// JSON-LD / readability / markdown fallback chain, and wraps the result
// in a JSON envelope when requested.
//
// The overall shape — cache check, extraction stage, render stage,
// assemble response — follows Easonliuliang-purify's cleaner/pipeline.go
// Cleaner.Clean, generalized from that package's two-stage
// readability→markdown pipeline to SPEC_FULL.md's three-tier
// JSON-LD→readability→markdown chain.
package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/use-agent/purify-reader/internal/cache"
	"github.com/use-agent/purify-reader/internal/jsonld"
	"github.com/use-agent/purify-reader/internal/markdown"
	"github.com/use-agent/purify-reader/internal/models"
	"github.com/use-agent/purify-reader/internal/orchestrator"
	"github.com/use-agent/purify-reader/internal/readability"
)

// minJSONLDLen is the threshold below which JSON-LD content is treated as
// insufficient and the caller falls through to readability (spec.md §4.5).
const minJSONLDLen = 500

// ContentTypePlain and ContentTypeJSON are the two Content-Type values
// Result.ContentType can take.
const (
	ContentTypePlain = "text/plain; charset=utf-8"
	ContentTypeJSON  = "application/json"
)

// sharedCache is the process-wide URL cache; a package-level singleton
// mirrors the teacher's one-per-process Cache in cache/cache.go.
var sharedCache = cache.New()

// Result is the converter's public response shape.
type Result struct {
	Content     string
	Strategy    models.StrategyID
	ContentType string
	ElapsedMs   int64
	FromCache   bool
	Title       string
}

// jsonEnvelope is the JSON rendering of Result used when JSONFormat is set.
type jsonEnvelope struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Content  string `json:"content"`
	Strategy string `json:"strategy"`
	Elapsed  int64  `json:"elapsed"`
	Author   string `json:"author,omitempty"`
}

// Convert runs the full pipeline in spec.md §4.8's 7 steps.
func Convert(ctx context.Context, target string, opts models.ConversionOptions) (Result, error) {
	start := time.Now()

	// 0. Reject malformed input immediately, before touching the cache or
	// the orchestrator (spec.md §7: INVALID_URL is rejected by convert,
	// not retried).
	if err := validateTarget(target); err != nil {
		return Result{}, models.NewScrapeError(models.ErrCodeInvalidURL, err.Error(), nil)
	}

	key := cacheKey(target, opts)

	// 1. Cache lookup.
	if opts.UseCache {
		if hit, ok := sharedCache.Get(key); ok {
			return Result{
				Content:     hit.Content,
				Strategy:    hit.Strategy,
				ContentType: hit.ContentType,
				ElapsedMs:   time.Since(start).Milliseconds(),
				FromCache:   true,
				Title:       hit.Title,
			}, nil
		}
	}

	// 2. Orchestrator.
	outcome, err := orchestrator.Orchestrate(ctx, target, opts)
	if err != nil {
		return Result{}, err
	}

	var result Result
	if outcome.Markdown != "" {
		// 3. Already Markdown (jina, exa, or a recursed googlenews hit).
		result = buildMarkdownResult(outcome, opts, target, start)
	} else {
		result, err = renderHTML(outcome, opts, target, start)
		if err != nil {
			return Result{}, err
		}
	}

	// 7. Store in cache (unless disabled).
	if opts.UseCache {
		sharedCache.Set(key, cache.Entry{
			Content:     result.Content,
			Strategy:    result.Strategy,
			ContentType: result.ContentType,
			Title:       result.Title,
		})
	}

	return result, nil
}

// buildMarkdownResult implements step 3: pass Markdown through as-is, or
// wrap it in the JSON envelope.
func buildMarkdownResult(outcome models.OrchestratorOutcome, opts models.ConversionOptions, target string, start time.Time) Result {
	if !opts.JSONFormat {
		return Result{
			Content:     outcome.Markdown,
			Strategy:    outcome.Strategy,
			ContentType: ContentTypePlain,
			ElapsedMs:   time.Since(start).Milliseconds(),
			Title:       outcome.Title,
		}
	}

	envelope := jsonEnvelope{
		URL:      target,
		Title:    firstNonEmpty(outcome.Title, "Extracted Content"),
		Date:     nowRFC3339(),
		Content:  outcome.Markdown,
		Strategy: string(outcome.Strategy),
		Elapsed:  time.Since(start).Milliseconds(),
	}
	return Result{
		Content:     marshalEnvelope(envelope),
		Strategy:    outcome.Strategy,
		ContentType: ContentTypeJSON,
		ElapsedMs:   time.Since(start).Milliseconds(),
		Title:       envelope.Title,
	}
}

// renderHTML implements steps 4-6: JSON-LD first, then
// readability+markdown, prefixing the rendered body with a title/author
// header either way.
func renderHTML(outcome models.OrchestratorOutcome, opts models.ConversionOptions, target string, start time.Time) (Result, error) {
	if ld, ok := jsonld.Extract(outcome.HTML); ok && len(ld.Content) > minJSONLDLen {
		body := renderWithHeader(ld.Title, ld.Author, ld.Content)
		return assembleHTMLResult(body, outcome.Strategy, ld.Title, ld.Author, ld.Date, target, opts, start), nil
	}

	article, _ := readability.Extract(outcome.HTML, target)
	title := firstNonEmpty(article.Title, outcome.Title)
	author := article.Byline

	bodyMD, err := markdown.Convert(article.Content, target, opts.PreserveImages)
	if err != nil {
		return Result{}, fmt.Errorf("convert: render markdown: %w", err)
	}
	body := renderWithHeader(title, author, bodyMD)

	return assembleHTMLResult(body, outcome.Strategy, title, author, "", target, opts, start), nil
}

// renderWithHeader implements the "# <title>\n\n*By <author>*\n\n<body>"
// prefix spec.md §4.8 uses for both the JSON-LD and readability paths.
func renderWithHeader(title, author, body string) string {
	header := ""
	if title != "" {
		header = "# " + title + "\n\n"
	}
	if author != "" {
		header += "*By " + author + "*\n\n"
	}
	return header + body
}

func assembleHTMLResult(body string, strategy models.StrategyID, title, author, date, target string, opts models.ConversionOptions, start time.Time) Result {
	if !opts.JSONFormat {
		return Result{
			Content:     body,
			Strategy:    strategy,
			ContentType: ContentTypePlain,
			ElapsedMs:   time.Since(start).Milliseconds(),
			Title:       title,
		}
	}

	if date == "" {
		date = nowRFC3339()
	}
	envelope := jsonEnvelope{
		URL:      target,
		Title:    firstNonEmpty(title, "Extracted Content"),
		Date:     date,
		Content:  body,
		Strategy: string(strategy),
		Elapsed:  time.Since(start).Milliseconds(),
		Author:   author,
	}
	return Result{
		Content:     marshalEnvelope(envelope),
		Strategy:    strategy,
		ContentType: ContentTypeJSON,
		ElapsedMs:   time.Since(start).Milliseconds(),
		Title:       envelope.Title,
	}
}

func marshalEnvelope(e jsonEnvelope) string {
	b, err := json.Marshal(e)
	if err != nil {
		slog.Error("convert: marshal json envelope failed", "error", err)
		return "{}"
	}
	return string(b)
}

func cacheKey(target string, opts models.ConversionOptions) string {
	h := sha256.New()
	h.Write([]byte(target))
	h.Write([]byte("|"))
	h.Write([]byte(opts.Strategy))
	h.Write([]byte("|"))
	fmt.Fprintf(h, "%t|%t", opts.Bypass, opts.JSONFormat)
	return hex.EncodeToString(h.Sum(nil))
}

// validateTarget requires an absolute http(s) URL with a host.
func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url: missing host")
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
