package strategy

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/use-agent/purify-reader/internal/models"
)

// OrchestrateFunc is injected by internal/orchestrator during its own
// package initialization, so this package can recurse back into the
// orchestrator against the decoded publisher URL without importing
// orchestrator directly (orchestrator already imports strategy to build
// its adapter registry). Adapted from Easonliuliang-purify's
// engine/rod_engine.go RodFetchFunc injection pattern.
var OrchestrateFunc func(ctx context.Context, url string, opts models.ConversionOptions) (models.OrchestratorOutcome, error)

// googleNewsHosts identifies URLs this adapter applies to.
var googleNewsHosts = []string{"news.google.com"}

// IsGoogleNewsURL reports whether target is a Google News article/listing
// URL this adapter knows how to unwrap.
func IsGoogleNewsURL(target string) bool {
	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	for _, h := range googleNewsHosts {
		if host == h {
			return true
		}
	}
	return false
}

// GoogleNews decodes a news.google.com article URL down to the publisher
// URL it wraps, then recurses into the orchestrator against that URL. The
// recursion is guarded against a second Google-News hop: if the decoded
// URL is itself a Google News URL, this adapter fails rather than loop.
//
// The returned strategy label is "googlenews-<inner>" so callers can tell
// which underlying strategy actually produced the content.
func GoogleNews(ctx context.Context, target string) models.StrategyResult {
	const id = models.StrategyGoogleNews

	if OrchestrateFunc == nil {
		return failMsg(id, "googlenews: orchestrator not wired")
	}

	publisherURL, err := decodeGoogleNewsURL(target)
	if err != nil {
		return fail(id, fmt.Errorf("decode: %w", err))
	}
	if IsGoogleNewsURL(publisherURL) {
		return failMsg(id, "googlenews: decoded URL is itself a Google News URL")
	}

	opts := models.NewConversionOptions()
	opts.Bypass = true // reach paywalled/bot-blocked publishers, not just a direct fetch

	outcome, err := OrchestrateFunc(ctx, publisherURL, opts)
	if err != nil {
		return fail(id, fmt.Errorf("recurse: %w", err))
	}

	return models.StrategyResult{
		Strategy: models.StrategyID("googlenews-" + string(outcome.Strategy)),
		Success:  true,
		HTML:     outcome.HTML,
		Markdown: outcome.Markdown,
		Title:    outcome.Title,
	}
}

// decodeGoogleNewsURL extracts the publisher URL a news.google.com
// article wraps. Modern Google News "read" URLs base64-encode a protobuf
// blob containing the publisher URL rather than the URL itself; the
// publisher URL is taken as the printable run starting at the first "http"
// once the longest path segment is base64-decoded, which is stable enough
// for extraction without a full protobuf schema.
func decodeGoogleNewsURL(target string) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}

	if q := parsed.Query().Get("url"); q != "" {
		return q, nil
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	var encoded string
	for _, seg := range segments {
		if len(seg) > len(encoded) {
			encoded = seg
		}
	}
	if encoded == "" {
		return "", fmt.Errorf("no encoded segment found in path %q", parsed.Path)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("base64 decode: %w", err)
		}
	}

	if idx := strings.Index(string(decoded), "http"); idx != -1 {
		candidate := extractURLRun(string(decoded)[idx:])
		if candidate != "" {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no publisher URL found in decoded segment")
}

// extractURLRun returns the longest prefix of s that forms a plausible
// URL, stopping at the first byte outside the set a URL can contain.
func extractURLRun(s string) string {
	end := len(s)
	for i, r := range s {
		if r < 0x21 || r > 0x7e {
			end = i
			break
		}
	}
	candidate := s[:end]
	if _, err := url.ParseRequestURI(candidate); err != nil {
		return ""
	}
	return candidate
}
