package strategy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/use-agent/purify-reader/internal/models"
)

// jinaTitleRe matches the "# Title" line r.jina.ai's Reader API emits at
// the top of its Markdown output.
var jinaTitleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// jinaMinBodyLen is the minimum body length below which the response is
// treated as empty/failed rather than a legitimately short article.
const jinaMinBodyLen = 50

// Jina GETs https://r.jina.ai/<raw URL> with Accept: text/plain, which
// returns ready-made Markdown rather than HTML. The title is pulled from
// the leading ATX heading and the heading/preamble block Jina prepends
// (a "Title:"/"URL Source:"/"Markdown Content:" header) is stripped before
// the remainder is returned as the document body.
func Jina(ctx context.Context, target string) models.StrategyResult {
	const id = models.StrategyJina

	if err := waitLimiter(ctx, jinaLimiter); err != nil {
		return fail(id, err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	readerURL := "https://r.jina.ai/" + target
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readerURL, nil)
	if err != nil {
		return fail(id, err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := sharedClient.Do(req)
	if err != nil {
		return fail(id, fmt.Errorf("transport: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failMsg(id, fmt.Sprintf("http status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail(id, fmt.Errorf("read body: %w", err))
	}

	text := strings.TrimSpace(string(body))
	if len(text) < jinaMinBodyLen {
		return failMsg(id, "empty or near-empty response")
	}

	title := ""
	if m := jinaTitleRe.FindStringSubmatch(text); m != nil {
		title = strings.TrimSpace(m[1])
	}

	markdown := stripJinaPreamble(text)

	return models.StrategyResult{
		Strategy: id,
		Success:  true,
		Markdown: markdown,
		Title:    title,
	}
}

// stripJinaPreamble removes the "Title: ...\nURL Source: ...\nMarkdown
// Content:\n" header block Jina's Reader API prepends, returning just the
// article body. Falls back to the full text if the marker isn't found.
func stripJinaPreamble(text string) string {
	const marker = "Markdown Content:"
	if idx := strings.Index(text, marker); idx != -1 {
		return strings.TrimSpace(text[idx+len(marker):])
	}
	return text
}
