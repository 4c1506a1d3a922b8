// Package validate implements the heuristic response validators that let
// the orchestrator tell a real article apart from a block page, a paywall,
// or Google's own search-error interstitial. All three predicates are
// advisory: false positives merely cost one failed strategy out of several
// racing in parallel, which spec.md §4.2 treats as tolerable.
package validate

import "strings"

// blockWindow/paywallWindow cap how much of the body each predicate scans,
// per spec.md §4.1 ("first 5 KiB" / "first 10 KiB").
const (
	blockWindow   = 5 * 1024
	paywallWindow = 10 * 1024
)

// blockedPatterns are case-insensitive substrings seen on Cloudflare
// interstitials, CAPTCHA prompts, explicit denials, and the Google News
// interstitial page. Heuristic and expected to drift — keep this table as
// the single place to extend it (spec.md §9).
var blockedPatterns = []string{
	// Cloudflare interstitials
	"checking your browser",
	"just a moment",
	"cloudflare ray id",
	"one more step",
	"attention required! | cloudflare",
	"ddos protection by cloudflare",
	"please stand by, while we are checking your browser",
	// CAPTCHA prompts
	"captcha",
	"robot check",
	"are you a robot",
	"verify you are human",
	"i'm not a robot",
	"recaptcha",
	"hcaptcha",
	// Explicit denials
	"access denied",
	"403 forbidden",
	"you have been blocked",
	"request blocked",
	"unusual traffic",
	// Google News interstitial
	"opening this page",
	"<title>google news</title>",
}

// paywallPatterns are case-insensitive substrings and class/id markers seen
// on subscription walls.
var paywallPatterns = []string{
	"paywall",
	"subscribe to continue",
	"sign up to read",
	"members only",
	"login to view",
	"data-paywall",
	"start your free trial",
	"subscribe to read",
	"become a member to read",
	"this content is for subscribers",
	"to continue reading",
	"create a free account to continue",
}

// googleErrorPatterns match Google Search's generic error/redirect page.
var googleErrorPatterns = []string{
	"if you're having trouble accessing google search",
	"emsg=sg_rel",
}

// IsBlocked reports whether html looks like a block/CAPTCHA/interstitial
// page, scanning only the first 5 KiB per spec.md §4.1.
func IsBlocked(html string) bool {
	return containsAny(window(html, blockWindow), blockedPatterns)
}

// IsPaywalled reports whether html looks like a subscription wall,
// scanning only the first 10 KiB per spec.md §4.1.
func IsPaywalled(html string) bool {
	return containsAny(window(html, paywallWindow), paywallPatterns)
}

// IsGoogleErrorPage reports whether html is Google Search's generic
// error/redirect interstitial.
func IsGoogleErrorPage(html string) bool {
	return containsAny(window(html, paywallWindow), googleErrorPatterns)
}

func window(s string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	return strings.ToLower(s)
}

func containsAny(lowerHaystack string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lowerHaystack, p) {
			return true
		}
	}
	return false
}
