package strategy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/use-agent/purify-reader/internal/charset"
	"github.com/use-agent/purify-reader/internal/models"
	"github.com/use-agent/purify-reader/internal/validate"
	"golang.org/x/net/html"
)

// maxBody caps how much of a response body we read, to bound memory use
// against a hostile or misbehaving origin.
const maxBody = 10 << 20 // 10 MiB

// Direct GETs the URL with a realistic desktop User-Agent. Rejected when
// the status isn't 2xx, the Content-Type isn't text/html, or the first 5
// KiB (block) / 10 KiB (paywall) of the body is flagged by the validators.
func Direct(ctx context.Context, url string) models.StrategyResult {
	const id = models.StrategyDirect

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(id, err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")

	return fetchHTML(ctx, id, req, true)
}

// fetchHTML issues req, decodes the body, and applies the shared
// status/content-type gate every HTML-producing adapter needs. When
// applyValidators is true (direct only, per spec.md §4.1's explicit
// "B flags block/paywall" clause) it additionally rejects block/paywall
// pages itself; the bot-impersonation adapters skip that self-check and
// let the orchestrator's race-level validation (spec.md §4.4) decide,
// since spec.md only calls out direct as self-validating.
func fetchHTML(ctx context.Context, id models.StrategyID, req *http.Request, applyValidators bool) models.StrategyResult {
	resp, err := sharedClient.Do(req)
	if err != nil {
		return fail(id, fmt.Errorf("transport: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failMsg(id, fmt.Sprintf("http status %d", resp.StatusCode))
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(ct), "text/html") {
		return failMsg(id, fmt.Sprintf("unexpected content-type %q", ct))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail(id, fmt.Errorf("read body: %w", err))
	}

	decoded, err := charset.Decode(body, ct)
	if err != nil {
		return fail(id, fmt.Errorf("decode: %w", err))
	}

	if applyValidators && (validate.IsBlocked(decoded) || validate.IsPaywalled(decoded)) {
		return failMsg(id, "blocked or paywalled")
	}

	return models.StrategyResult{
		Strategy: id,
		Success:  true,
		HTML:     decoded,
		Title:    extractTitle(decoded),
	}
}

// extractTitle uses the Go HTML tokenizer to find the first <title>
// element, adapted from Easonliuliang-purify's engine/http_engine.go.
func extractTitle(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	inTitle := false
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
