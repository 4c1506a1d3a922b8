package strategy

import (
	"context"
	"net/http"

	"github.com/use-agent/purify-reader/internal/models"
)

// Bingbot is analogous to Googlebot, using Bing UAs, a Bing IP pool, and a
// Bing referer.
func Bingbot(ctx context.Context, url string) models.StrategyResult {
	const id = models.StrategyBingbot

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(id, err)
	}
	req.Header.Set("User-Agent", pick(bingbotUserAgents))
	req.Header.Set("X-Forwarded-For", pick(bingbotIPs))
	req.Header.Set("Referer", "https://www.bing.com/")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return fetchHTML(ctx, id, req, false)
}
