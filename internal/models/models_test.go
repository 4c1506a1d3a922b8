package models

import (
	"errors"
	"testing"
)

func TestNewConversionOptions_Defaults(t *testing.T) {
	opts := NewConversionOptions()
	if !opts.PreserveImages {
		t.Error("expected PreserveImages to default true")
	}
	if !opts.UseCache {
		t.Error("expected UseCache to default true")
	}
	if opts.Bypass {
		t.Error("expected Bypass to default false")
	}
	if opts.Strategy != "" {
		t.Errorf("expected Strategy to default empty, got %q", opts.Strategy)
	}
}

func TestScrapeError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewScrapeError(ErrCodeTransport, "fetch failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if got := err.Error(); got == "" {
		t.Error("expected a non-empty error string")
	}
}

func TestScrapeError_NilCause(t *testing.T) {
	err := NewScrapeError(ErrCodeAllFailed, "all strategies failed", nil)
	if err.Unwrap() != nil {
		t.Error("expected Unwrap to return nil when no cause was given")
	}
}
