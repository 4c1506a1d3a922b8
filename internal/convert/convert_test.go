package convert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/purify-reader/internal/models"
)

func TestConvert_RejectsInvalidURLImmediately(t *testing.T) {
	for _, bad := range []string{
		"",
		"not a url at all",
		"ftp://example.com/file",
		"example.com/no-scheme",
		"https://",
	} {
		_, err := Convert(context.Background(), bad, models.NewConversionOptions())
		if err == nil {
			t.Errorf("Convert(%q): expected an error, got nil", bad)
			continue
		}
		var scrapeErr *models.ScrapeError
		if !errors.As(err, &scrapeErr) {
			t.Errorf("Convert(%q): expected a *models.ScrapeError, got %T", bad, err)
			continue
		}
		if scrapeErr.Code != models.ErrCodeInvalidURL {
			t.Errorf("Convert(%q): Code = %q, want %q", bad, scrapeErr.Code, models.ErrCodeInvalidURL)
		}
	}
}

func TestValidateTarget_AcceptsWellFormedHTTPURLs(t *testing.T) {
	for _, good := range []string{"http://example.com", "https://example.com/article?id=1"} {
		if err := validateTarget(good); err != nil {
			t.Errorf("validateTarget(%q) = %v, want nil", good, err)
		}
	}
}

func TestRenderWithHeader_TitleAndAuthor(t *testing.T) {
	got := renderWithHeader("My Title", "Jane Doe", "body text")
	want := "# My Title\n\n*By Jane Doe*\n\nbody text"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderWithHeader_NoAuthor(t *testing.T) {
	got := renderWithHeader("My Title", "", "body text")
	if strings.Contains(got, "*By") {
		t.Errorf("expected no author line, got %q", got)
	}
	if !strings.HasPrefix(got, "# My Title\n\n") {
		t.Errorf("expected title header, got %q", got)
	}
}

func TestRenderWithHeader_NoTitle(t *testing.T) {
	got := renderWithHeader("", "", "body text")
	if got != "body text" {
		t.Errorf("got %q, want bare body", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "third"); got != "third" {
		t.Errorf("got %q, want third", got)
	}
	if got := firstNonEmpty("first", "second"); got != "first" {
		t.Errorf("got %q, want first", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCacheKey_StableAndSensitiveToOptions(t *testing.T) {
	opts := models.NewConversionOptions()
	k1 := cacheKey("https://example.com/a", opts)
	k2 := cacheKey("https://example.com/a", opts)
	if k1 != k2 {
		t.Error("cacheKey should be deterministic for identical inputs")
	}

	opts2 := opts
	opts2.JSONFormat = true
	k3 := cacheKey("https://example.com/a", opts2)
	if k1 == k3 {
		t.Error("cacheKey should differ when JSONFormat differs")
	}

	k4 := cacheKey("https://example.com/b", opts)
	if k1 == k4 {
		t.Error("cacheKey should differ for a different URL")
	}
}
