package strategy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/time/rate"
)

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only, so Go's http.Transport (which cannot handle HTTP/2 framing over a
// utls connection) never gets offered h2 by the server. Computed once at
// init time and reused for every connection, adapted from
// Easonliuliang-purify's engine/http_engine.go.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// newBrowserClient returns an *http.Client that dials TLS with a Chrome
// ClientHello fingerprint, so origins that fingerprint the TLS handshake
// see a browser rather than Go's default net/http signature. Every
// HTTP-speaking strategy adapter (direct, googlebot, bingbot, facebookbot,
// twelveft, archive, jina, exa) shares one of these.
func newBrowserClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: timeout}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("strategy: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// Per-service rate limiters. Each of these four strategies speaks to a
// shared third-party reader/proxy service (12ft, archive.org, Jina, Exa);
// limiting calls per service — independently of how many conversions race
// concurrently — keeps a burst of local traffic from tripping that
// service's own abuse defenses. golang.org/x/time/rate is the teacher
// pack's own token-bucket library (used for per-API-key limiting in
// Easonliuliang-purify's rate-limit middleware); reused here per-origin
// instead of per-caller.
var (
	twelveftLimiter = rate.NewLimiter(rate.Limit(2), 2)
	archiveLimiter  = rate.NewLimiter(rate.Limit(2), 2)
	jinaLimiter     = rate.NewLimiter(rate.Limit(4), 4)
	exaLimiter      = rate.NewLimiter(rate.Limit(4), 4)
)

// waitLimiter blocks until limiter admits one request or ctx is done.
func waitLimiter(ctx context.Context, limiter *rate.Limiter) error {
	return limiter.Wait(ctx)
}
