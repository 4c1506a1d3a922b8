package strategy

import (
	"context"
	"net/http"

	"github.com/use-agent/purify-reader/internal/models"
)

// Facebookbot sends one of the Facebook external-hit UAs with a Facebook
// referer; no IP spoofing (Facebook's crawler does not get IP-allowlisted
// the way Google/Bing do on most paywalled sites).
func Facebookbot(ctx context.Context, url string) models.StrategyResult {
	const id = models.StrategyFacebookbot

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(id, err)
	}
	req.Header.Set("User-Agent", pick(facebookUserAgents))
	req.Header.Set("Referer", "https://www.facebook.com/")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return fetchHTML(ctx, id, req, false)
}
