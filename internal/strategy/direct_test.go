package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/use-agent/purify-reader/internal/models"
)

func TestDirect_SuccessfulArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != desktopUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, desktopUserAgent)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>An Article</title></head><body>content</body></html>"))
	}))
	defer srv.Close()

	res := Direct(context.Background(), srv.URL)
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.Strategy != models.StrategyDirect {
		t.Errorf("Strategy = %q", res.Strategy)
	}
	if res.Title != "An Article" {
		t.Errorf("Title = %q, want %q", res.Title, "An Article")
	}
	if !strings.Contains(res.HTML, "content") {
		t.Errorf("HTML = %q, missing body content", res.HTML)
	}
}

func TestDirect_NonHTMLContentTypeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not":"html"}`))
	}))
	defer srv.Close()

	res := Direct(context.Background(), srv.URL)
	if res.Success {
		t.Fatal("expected failure for a non-HTML content type")
	}
}

func TestDirect_NonSuccessStatusRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	res := Direct(context.Background(), srv.URL)
	if res.Success {
		t.Fatal("expected failure for a 403 status")
	}
	if !strings.Contains(res.Error, "403") {
		t.Errorf("Error = %q, want it to mention 403", res.Error)
	}
}

func TestDirect_BlockedPageRejectedBySelfValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>Checking your browser before accessing the site...</body></html>"))
	}))
	defer srv.Close()

	res := Direct(context.Background(), srv.URL)
	if res.Success {
		t.Fatal("expected direct to self-reject a Cloudflare interstitial")
	}
}

func TestGooglebot_SendsSpoofedUAAndXFF(t *testing.T) {
	var gotUA, gotXFF string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotXFF = r.Header.Get("X-Forwarded-For")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	res := Googlebot(context.Background(), srv.URL)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	found := false
	for _, ua := range googlebotUserAgents {
		if gotUA == ua {
			found = true
		}
	}
	if !found {
		t.Errorf("User-Agent %q not in googlebotUserAgents pool", gotUA)
	}
	if gotXFF == "" {
		t.Error("expected a non-empty X-Forwarded-For header")
	}
}

func TestGooglebot_DoesNotSelfRejectBlockedPage(t *testing.T) {
	// Per spec.md §4.1, only direct self-validates; bot adapters leave
	// block/paywall detection to the orchestrator's race-level validation.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>please verify you are human</body></html>"))
	}))
	defer srv.Close()

	res := Googlebot(context.Background(), srv.URL)
	if !res.Success {
		t.Fatal("expected googlebot to return the page even though it looks blocked")
	}
}

func TestBingbot_SendsRefererAndUAPool(t *testing.T) {
	var gotReferer, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	res := Bingbot(context.Background(), srv.URL)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if gotReferer != "https://www.bing.com/" {
		t.Errorf("Referer = %q", gotReferer)
	}
	found := false
	for _, ua := range bingbotUserAgents {
		if gotUA == ua {
			found = true
		}
	}
	if !found {
		t.Errorf("User-Agent %q not in bingbotUserAgents pool", gotUA)
	}
}

func TestFacebookbot_SendsRefererAndUAPool(t *testing.T) {
	var gotReferer, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	res := Facebookbot(context.Background(), srv.URL)
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Error)
	}
	if gotReferer != "https://www.facebook.com/" {
		t.Errorf("Referer = %q", gotReferer)
	}
	found := false
	for _, ua := range facebookUserAgents {
		if gotUA == ua {
			found = true
		}
	}
	if !found {
		t.Errorf("User-Agent %q not in facebookUserAgents pool", gotUA)
	}
}
