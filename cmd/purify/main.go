// Command purify converts a URL's reader-mode content to Markdown (or a
// JSON envelope) using the library in internal/, applying multi-strategy
// fetch-bypass when requested.
//
// This is a thin front-end: all the conversion logic lives in
// internal/convert. The original teacher command served an HTTP API over
// gin (see Easonliuliang-purify's api/ package, dropped per SPEC_FULL.md
// since this spec describes a one-shot conversion tool, not a service).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/purify-reader/internal/cache"
	"github.com/use-agent/purify-reader/internal/config"
	"github.com/use-agent/purify-reader/internal/convert"
	"github.com/use-agent/purify-reader/internal/models"
	"github.com/use-agent/purify-reader/internal/strategy"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		strategyFlag = flag.String("strategy", "", "force a specific strategy (direct, googlebot, bingbot, facebookbot, twelveft, archive, jina, exa, googlenews)")
		noBypass     = flag.Bool("no-bypass", false, "disable fetch-bypass racing; only attempt a direct request")
		noImages     = flag.Bool("no-images", false, "strip images/figures/iframes from the rendered Markdown")
		jsonOut      = flag.Bool("json", false, "wrap output in a JSON envelope instead of raw Markdown/text")
		noCache      = flag.Bool("no-cache", false, "bypass the process-wide URL cache")
	)
	flag.Parse()

	cfg := config.Load()
	initLogger(cfg.Log)
	strategy.Configure(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	cache.Configure(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: purify [flags] <url>")
		flag.PrintDefaults()
		return 2
	}
	target := args[0]

	opts := models.NewConversionOptions()
	opts.Bypass = !*noBypass
	opts.PreserveImages = !*noImages
	opts.JSONFormat = *jsonOut
	opts.UseCache = !*noCache
	if *strategyFlag != "" {
		opts.Strategy = models.StrategyID(*strategyFlag)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, cfg.HTTP.Timeout*4)
	defer timeoutCancel()

	start := time.Now()
	result, err := convert.Convert(ctx, target, opts)
	if err != nil {
		slog.Error("conversion failed", "url", target, "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Println(result.Content)
	slog.Info("conversion finished",
		"url", target,
		"strategy", result.Strategy,
		"fromCache", result.FromCache,
		"elapsedMs", result.ElapsedMs,
		"wallClock", time.Since(start),
	)
	return 0
}

// initLogger configures slog per cfg, following
// Easonliuliang-purify's cmd/purify/main.go initLogger.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
