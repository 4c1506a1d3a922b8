// Package orchestrator implements the tiered fetch-bypass state machine
// (component D of SPEC_FULL.md): explicit-strategy override, Google-News
// routing, the no-bypass short-circuit, and the primary/fallback races
// over internal/strategy's adapters.
//
// The race primitive is adapted from Easonliuliang-purify's
// engine/dispatcher.go Dispatcher.race: one goroutine per adapter, a
// buffered result channel, and a context.WithCancel to abort the losers
// once a winner is chosen. Generalized here from "first success wins" to
// "first validated success wins," and split into two sequential tiers
// instead of the teacher's single flat race.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/purify-reader/internal/models"
	"github.com/use-agent/purify-reader/internal/strategy"
	"github.com/use-agent/purify-reader/internal/validate"
)

// minHTMLLen/minFallbackHTMLLen/minMarkdownLen are the length floors
// spec.md §4.4 uses to reject SPA shells and other too-thin bodies.
const (
	minHTMLLen         = 10_000
	minFallbackHTMLLen = 1_000
	minMarkdownLen     = 100
	minArchiveHTMLLen  = 10_000
)

var primaryTier = []models.StrategyID{
	models.StrategyDirect,
	models.StrategyGooglebot,
	models.StrategyFacebookbot,
	models.StrategyBingbot,
}

var fallbackTier = []models.StrategyID{
	models.StrategyTwelveft,
	models.StrategyArchive,
	models.StrategyJina,
	models.StrategyExa,
}

// adapterFor resolves a StrategyID to the function that actually runs it.
// It is a var, not a direct call to strategy.Registry, so tests can swap in
// fake adapters and exercise the race/cancellation/tiering logic without
// touching the network — mirrors Easonliuliang-purify's Dispatcher, which
// takes its []Engine as a constructor argument rather than hardwiring engine
// construction inside Dispatch.
var adapterFor = strategy.Registry

func init() {
	// Wire the googlenews adapter's recursion hook here, in
	// internal/orchestrator, so internal/strategy never imports this
	// package (it would be circular: orchestrator already imports
	// strategy to drive the races). Mirrors Easonliuliang-purify's
	// engine/rod_engine.go RodFetchFunc injection.
	strategy.OrchestrateFunc = Orchestrate
}

// Orchestrate runs the state machine in spec.md §4.4 and returns the
// winning result, or an aggregated error listing every attempted
// strategy when all of them fail.
func Orchestrate(ctx context.Context, target string, opts models.ConversionOptions) (models.OrchestratorOutcome, error) {
	start := time.Now()

	// 1. Explicit-strategy branch.
	if opts.Strategy != "" && opts.Strategy != models.StrategyAuto {
		adapter := adapterFor(opts.Strategy)
		if adapter == nil {
			return models.OrchestratorOutcome{}, fmt.Errorf("orchestrator: unknown strategy %q", opts.Strategy)
		}
		res := adapter(ctx, target)
		attempts := []models.Attempt{toAttempt(res)}
		if !res.Success {
			return models.OrchestratorOutcome{}, exhaustionError(attempts)
		}
		return finish(start, attempts, res)
	}

	// 2. Google-News branch.
	if isGoogleNewsTarget(target) {
		outcome, handled, err := runGoogleNewsBranch(ctx, start, target)
		if handled {
			return outcome, err
		}
		// (c): fall through to step 4 with bypass forced true, skipping
		// the bot race (it cannot follow the client-side redirect).
		return runFallbackOnly(ctx, start, target, outcome.Attempts)
	}

	// 3. No-bypass branch.
	if !opts.Bypass {
		res := adapterFor(models.StrategyDirect)(ctx, target)
		attempts := []models.Attempt{toAttempt(res)}
		if !res.Success {
			return models.OrchestratorOutcome{}, exhaustionError(attempts)
		}
		return finish(start, attempts, res)
	}

	// 4. Primary race.
	primaryAttempts, winner := race(ctx, target, primaryTier, validatePrimary)
	if winner != nil {
		return finish(start, primaryAttempts, *winner)
	}

	// 5. Fallback race.
	fallbackAttempts, winner := race(ctx, target, fallbackTier, validateFallback)
	allAttempts := append(primaryAttempts, fallbackAttempts...)
	if winner != nil {
		return finish(start, allAttempts, *winner)
	}

	// 6. Exhaustion.
	return models.OrchestratorOutcome{}, exhaustionError(allAttempts)
}

// runGoogleNewsBranch implements step 2a/2b. handled is true when the
// branch itself produced a terminal outcome (success or a failure the
// caller should surface as-is rather than falling further through).
func runGoogleNewsBranch(ctx context.Context, start time.Time, target string) (models.OrchestratorOutcome, bool, error) {
	var attempts []models.Attempt

	archiveRes := adapterFor(models.StrategyArchive)(ctx, target)
	attempts = append(attempts, toAttempt(archiveRes))
	if archiveRes.Success && len(archiveRes.HTML) > minArchiveHTMLLen {
		outcome, err := finish(start, attempts, archiveRes)
		return outcome, true, err
	}

	newsRes := adapterFor(models.StrategyGoogleNews)(ctx, target)
	attempts = append(attempts, toAttempt(newsRes))
	if newsRes.Success {
		outcome, err := finish(start, attempts, newsRes)
		return outcome, true, err
	}

	// Neither archive nor googlenews worked: hand back the attempt trail
	// so the caller can continue at step 4 with the bot race skipped.
	return models.OrchestratorOutcome{Attempts: attempts}, false, nil
}

// runFallbackOnly implements step 2c: bypass forced true, primary race
// skipped entirely, going straight to the fallback race.
func runFallbackOnly(ctx context.Context, start time.Time, target string, priorAttempts []models.Attempt) (models.OrchestratorOutcome, error) {
	fallbackAttempts, winner := race(ctx, target, fallbackTier, validateFallback)
	allAttempts := append(append([]models.Attempt{}, priorAttempts...), fallbackAttempts...)
	if winner != nil {
		return finish(start, allAttempts, *winner)
	}
	return models.OrchestratorOutcome{}, exhaustionError(allAttempts)
}

// raceResultEntry pairs one adapter's outcome with the attempt record derived
// from it, so race can both pick a winner and build the attempts trail.
type raceResultEntry struct {
	result  models.StrategyResult
	attempt models.Attempt
}

// race runs every id in tier concurrently, each in its own goroutine,
// cancelling the rest as soon as validate reports a winner. Adapted from
// Easonliuliang-purify's Dispatcher.race.
func race(ctx context.Context, target string, tier []models.StrategyID, accept func(models.StrategyResult) bool) ([]models.Attempt, *models.StrategyResult) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceResultEntry, len(tier))
	var wg sync.WaitGroup

	for _, id := range tier {
		adapter := adapterFor(id)
		if adapter == nil {
			continue
		}
		wg.Add(1)
		go func(id models.StrategyID, adapter strategy.Adapter) {
			defer wg.Done()
			res := adapter(raceCtx, target)
			results <- raceResultEntry{result: res, attempt: toAttempt(res)}
		}(id, adapter)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var attempts []models.Attempt
	for entry := range results {
		attempts = append(attempts, entry.attempt)
		if entry.result.Success && accept(entry.result) {
			cancel()
			winner := entry.result
			// Drain the remaining results so every loser's attempt lands in
			// the trail. The channel is buffered to len(tier), so no sender
			// ever blocks; this drain is bookkeeping for the attempts
			// trail, not a correctness need.
			for rest := range results {
				attempts = append(attempts, rest.attempt)
			}
			return attempts, &winner
		}
	}
	return attempts, nil
}

// validatePrimary implements spec.md §4.4 step 4's acceptance rule.
func validatePrimary(res models.StrategyResult) bool {
	if res.Markdown != "" {
		return len(res.Markdown) > minMarkdownLen
	}
	return len(res.HTML) >= minHTMLLen && !isFlagged(res.HTML)
}

// validateFallback implements spec.md §4.4 step 5's looser floor.
func validateFallback(res models.StrategyResult) bool {
	if res.Markdown != "" {
		return len(res.Markdown) > minMarkdownLen
	}
	return len(res.HTML) > minFallbackHTMLLen && !isFlagged(res.HTML)
}

func isFlagged(html string) bool {
	return validate.IsBlocked(html) || validate.IsPaywalled(html) || validate.IsGoogleErrorPage(html)
}

func isGoogleNewsTarget(target string) bool {
	if strategy.IsGoogleNewsURL(target) {
		return true
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.Contains(parsed.Path, "/rss/articles/")
}

func toAttempt(res models.StrategyResult) models.Attempt {
	return models.Attempt{Strategy: res.Strategy, Error: res.Error}
}

func finish(start time.Time, attempts []models.Attempt, winner models.StrategyResult) (models.OrchestratorOutcome, error) {
	slog.Debug("orchestrator finished", "strategy", winner.Strategy, "elapsed", time.Since(start))
	return models.OrchestratorOutcome{
		Strategy:  winner.Strategy,
		ElapsedMs: time.Since(start).Milliseconds(),
		Attempts:  attempts,
		HTML:      winner.HTML,
		Markdown:  winner.Markdown,
		Title:     winner.Title,
	}, nil
}

func exhaustionError(attempts []models.Attempt) error {
	var b strings.Builder
	b.WriteString("all strategies failed: ")
	for i, a := range attempts {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", a.Strategy, a.Error)
	}
	return models.NewScrapeError(models.ErrCodeAllFailed, b.String(), nil)
}
