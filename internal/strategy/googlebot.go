package strategy

import (
	"context"
	"net/http"

	"github.com/use-agent/purify-reader/internal/models"
)

// Googlebot GETs the URL with a user-agent randomly chosen from the
// Googlebot set and an X-Forwarded-For drawn from a fixed pool of
// Google-owned IPv4 literals, to bypass paywalls that whitelist search
// engines for indexing.
func Googlebot(ctx context.Context, url string) models.StrategyResult {
	const id = models.StrategyGooglebot

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(id, err)
	}
	req.Header.Set("User-Agent", pick(googlebotUserAgents))
	req.Header.Set("X-Forwarded-For", pick(googlebotIPs))
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return fetchHTML(ctx, id, req, false)
}
