package strategy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/use-agent/purify-reader/internal/charset"
	"github.com/use-agent/purify-reader/internal/models"
)

// Twelveft GETs https://12ft.io/proxy?q=<urlencoded URL> with a desktop UA
// and a 12ft referer.
//
// Intentionally asymmetric with the other adapters (spec.md §9, Open
// Question preserved as observed): this only checks for the literal
// substrings "rate limit exceeded" and "blocked", not the full §4.2
// pattern tables.
func Twelveft(ctx context.Context, target string) models.StrategyResult {
	const id = models.StrategyTwelveft

	if err := waitLimiter(ctx, twelveftLimiter); err != nil {
		return fail(id, err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	proxyURL := "https://12ft.io/proxy?q=" + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL, nil)
	if err != nil {
		return fail(id, err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Referer", "https://12ft.io/")

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

	ct := resp.Header.Get("Content-Type")
	decoded, err := charset.Decode(body, ct)
	if err != nil {
		return fail(id, fmt.Errorf("decode: %w", err))
	}

	lower := strings.ToLower(decoded)
	if strings.Contains(lower, "rate limit exceeded") || strings.Contains(lower, "blocked") {
		return failMsg(id, "12ft rate-limited or blocked")
	}

	return models.StrategyResult{
		Strategy: id,
		Success:  true,
		HTML:     decoded,
		Title:    extractTitle(decoded),
	}
}
