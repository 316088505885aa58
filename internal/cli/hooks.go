package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/renoma/pkg/observability"
)

// debugHooks logs scan and cache events at debug level.
type debugHooks struct {
	logger *log.Logger
}

func (h debugHooks) OnCrawlComplete(_ context.Context, rootManifest string, records int) {
	h.logger.Debug("crawl complete", "root", rootManifest, "records", records)
}

func (h debugHooks) OnAnalyze(_ context.Context, key string, diagnostics int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("analyzed", "pkg", key, "duration", d.Round(time.Microsecond), "err", err)
		return
	}
	h.logger.Debug("analyzed", "pkg", key, "diagnostics", diagnostics, "duration", d.Round(time.Microsecond))
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "cache", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "cache", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "cache", keyType, "bytes", size)
}

var (
	_ observability.ScanHooks  = debugHooks{}
	_ observability.CacheHooks = debugHooks{}
)
