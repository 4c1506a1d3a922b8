package strategy

import "math/rand"

// Immutable tables of UA strings and bot IP literals, read concurrently
// without synchronization (spec.md §5: "all strategy UA and IP lists are
// immutable tables").

var desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var googlebotUserAgents = []string{
	"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	"Googlebot/2.1 (+http://www.google.com/bot.html)",
	"Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; Googlebot/2.1; +http://www.google.com/bot.html) Safari/537.36",
}

// googlebotIPs are a handful of IPv4 literals from Google's published
// crawler ranges, used as the X-Forwarded-For value so sites that
// allowlist search-engine IPs treat the request as a legitimate crawl.
var googlebotIPs = []string{
	"66.249.66.1",
	"66.249.66.20",
	"66.249.73.15",
	"66.249.79.20",
	"64.233.172.1",
}

var bingbotUserAgents = []string{
	"Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
	"Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm) Chrome/116.0.0.0 Safari/537.36",
}

var bingbotIPs = []string{
	"40.77.167.1",
	"157.55.39.1",
	"207.46.13.1",
}

var facebookUserAgents = []string{
	"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
	"Facebot",
	"facebookexternalhit/1.1",
}

func pick(pool []string) string {
	return pool[rand.Intn(len(pool))]
}
