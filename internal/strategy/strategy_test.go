package strategy

import (
	"net/url"
	"testing"

	"github.com/use-agent/purify-reader/internal/models"
)

func TestExtractTitle(t *testing.T) {
	html := `<html><head><title>  A Great Article  </title></head><body></body></html>`
	if got := extractTitle(html); got != "A Great Article" {
		t.Errorf("extractTitle = %q, want %q", got, "A Great Article")
	}
}

func TestExtractTitle_NoTitle(t *testing.T) {
	if got := extractTitle("<html><body>no title here</body></html>"); got != "" {
		t.Errorf("extractTitle = %q, want empty", got)
	}
}

func TestExtractTitle_EmptyTitleTag(t *testing.T) {
	if got := extractTitle("<html><head><title></title></head></html>"); got != "" {
		t.Errorf("extractTitle = %q, want empty", got)
	}
}

func TestPick_AlwaysFromPool(t *testing.T) {
	pool := []string{"a", "b", "c"}
	for i := 0; i < 20; i++ {
		got := pick(pool)
		found := false
		for _, p := range pool {
			if p == got {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("pick returned %q, not a member of the pool", got)
		}
	}
}

func TestRegistry_KnownAndUnknown(t *testing.T) {
	known := []models.StrategyID{
		models.StrategyDirect, models.StrategyGooglebot, models.StrategyBingbot,
		models.StrategyFacebookbot, models.StrategyTwelveft, models.StrategyArchive,
		models.StrategyJina, models.StrategyExa, models.StrategyGoogleNews,
	}
	for _, id := range known {
		if Registry(id) == nil {
			t.Errorf("Registry(%q) = nil, want an adapter", id)
		}
	}
	if Registry(models.StrategyAuto) != nil {
		t.Error("Registry(auto) should be nil; the orchestrator handles auto itself")
	}
	if Registry(models.StrategyID("unknown")) != nil {
		t.Error("Registry(unknown) should be nil")
	}
}

func TestGoogleNewsURL_QueryParam(t *testing.T) {
	target := "https://news.google.com/articles/abc?url=" + url.QueryEscape("https://publisher.example/story")
	decoded, err := decodeGoogleNewsURL(target)
	if err != nil {
		t.Fatalf("decodeGoogleNewsURL: %v", err)
	}
	if decoded != "https://publisher.example/story" {
		t.Errorf("decoded = %q, want https://publisher.example/story", decoded)
	}
}

func TestIsGoogleNewsURL(t *testing.T) {
	if !IsGoogleNewsURL("https://news.google.com/rss/articles/abc123") {
		t.Error("expected news.google.com host to match")
	}
	if IsGoogleNewsURL("https://example.com/article") {
		t.Error("expected a non-Google-News URL to not match")
	}
}

func TestExtractURLRun(t *testing.T) {
	got := extractURLRun("https://example.com/path\x00trailing garbage")
	if got != "https://example.com/path" {
		t.Errorf("extractURLRun = %q", got)
	}
}
