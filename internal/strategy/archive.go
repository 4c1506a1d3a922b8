package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/use-agent/purify-reader/internal/charset"
	"github.com/use-agent/purify-reader/internal/models"
)

// availabilityResponse mirrors the subset of the Wayback Machine
// availability API response this adapter consumes.
type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Status    string `json:"status"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// Archive checks the Wayback Machine availability API for a recent
// snapshot of target, then GETs either the returned snapshot URL or, if
// the availability check finds nothing, falls back to requesting
// https://web.archive.org/web/2/<target> directly (the "2" timestamp asks
// Wayback to redirect to its closest snapshot).
func Archive(ctx context.Context, target string) models.StrategyResult {
	const id = models.StrategyArchive

	if err := waitLimiter(ctx, archiveLimiter); err != nil {
		return fail(id, err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snapshotURL, err := archiveLookup(ctx, target)
	if err != nil || snapshotURL == "" {
		snapshotURL = "https://web.archive.org/web/2/" + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, snapshotURL, nil)
	if err != nil {
		return fail(id, err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := sharedClient.Do(req)
	if err != nil {
		return fail(id, fmt.Errorf("transport: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failMsg(id, fmt.Sprintf("http status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fail(id, fmt.Errorf("read body: %w", err))
	}

	ct := resp.Header.Get("Content-Type")
	decoded, err := charset.Decode(body, ct)
	if err != nil {
		return fail(id, fmt.Errorf("decode: %w", err))
	}

	return models.StrategyResult{
		Strategy: id,
		Success:  true,
		HTML:     decoded,
		Title:    extractTitle(decoded),
	}
}

func archiveLookup(ctx context.Context, target string) (string, error) {
	apiURL := "https://archive.org/wayback/available?url=" + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := sharedClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("availability api status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed availabilityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if !parsed.ArchivedSnapshots.Closest.Available {
		return "", fmt.Errorf("no snapshot available")
	}
	return parsed.ArchivedSnapshots.Closest.URL, nil
}
