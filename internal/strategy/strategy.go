// Package strategy implements the family of fetch-bypass adapters
// (component A of SPEC_FULL.md): direct, googlebot, bingbot, facebookbot,
// twelveft, archive, jina, exa, googlenews. Each adapter is a function
// StrategyID × URL -> StrategyResult; all network I/O is cancellable via
// ctx, and no adapter ever panics or returns a Go error for a transport
// failure — failures are reported as StrategyResult{Success: false}, per
// spec.md §4.1's "adapters MUST NOT raise."
package strategy

import (
	"context"
	"time"

	"github.com/use-agent/purify-reader/internal/models"
)

// Adapter fetches url using one bypass technique and returns a uniform
// result. Adapters must be cancellation-safe: when ctx is cancelled they
// must close their sockets and return promptly without leaking state.
type Adapter func(ctx context.Context, url string) models.StrategyResult

// timeout is the implicit per-adapter request deadline (spec.md §5
// suggests 20s); each adapter derives its own context from the caller's
// with this as an upper bound so a hung adapter can't stall a race forever.
// Overridable via Configure before any adapter runs.
var timeout = 20 * time.Second

// sharedClient is the Chrome-TLS-fingerprinted client used by every
// HTTP-speaking adapter (direct, googlebot, bingbot, facebookbot, twelveft,
// archive, jina, exa). Constructed once; http.Client is safe for concurrent use.
var sharedClient = newBrowserClient(timeout)

// Configure applies ambient HTTP settings (internal/config.HTTPConfig) to
// the package. Intended to be called once, at process startup, before any
// adapter runs; not safe to call concurrently with in-flight requests.
func Configure(userAgent string, adapterTimeout time.Duration) {
	if userAgent != "" {
		desktopUserAgent = userAgent
	}
	if adapterTimeout > 0 {
		timeout = adapterTimeout
		sharedClient = newBrowserClient(timeout)
	}
}

// Registry returns the adapter function for id, or nil if id is not a
// known strategy (e.g. "" or "auto", which the orchestrator handles itself).
func Registry(id models.StrategyID) Adapter {
	switch id {
	case models.StrategyDirect:
		return Direct
	case models.StrategyGooglebot:
		return Googlebot
	case models.StrategyBingbot:
		return Bingbot
	case models.StrategyFacebookbot:
		return Facebookbot
	case models.StrategyTwelveft:
		return Twelveft
	case models.StrategyArchive:
		return Archive
	case models.StrategyJina:
		return Jina
	case models.StrategyExa:
		return Exa
	case models.StrategyGoogleNews:
		return GoogleNews
	default:
		return nil
	}
}

// withTimeout derives a context bounded by the per-adapter timeout, never
// extending a caller's own (shorter) deadline.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func fail(id models.StrategyID, err error) models.StrategyResult {
	return models.StrategyResult{Strategy: id, Success: false, Error: err.Error()}
}

func failMsg(id models.StrategyID, msg string) models.StrategyResult {
	return models.StrategyResult{Strategy: id, Success: false, Error: msg}
}
