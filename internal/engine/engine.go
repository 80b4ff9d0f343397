// Package engine orchestrates the assessment cycle: fetch raw records for
// each target, normalize and dedupe them, persist new events, score the
// retained window, then publish the assessment to the cache, metrics, and
// the notifier. Targets are independent: a failing source or target never
// blocks the others.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/asifah/stormwatch/internal/feeds"
	"github.com/asifah/stormwatch/internal/logger"
	"github.com/asifah/stormwatch/internal/metrics"
	"github.com/asifah/stormwatch/internal/models"
	"github.com/asifah/stormwatch/internal/normalize"
	"github.com/asifah/stormwatch/internal/scoring"
	"github.com/asifah/stormwatch/internal/storage"
)

// Alerter receives assessments worth notifying about. The Telegram notifier
// implements it; a nil Alerter disables alerting.
type Alerter interface {
	Alert(a *models.ThreatAssessment) error
}

// Options configures the engine.
type Options struct {
	WindowDays int // fetch lookback passed to fetchers
}

// Engine runs assessment cycles over a fixed set of targets.
type Engine struct {
	fetchers   []feeds.Fetcher
	queries    map[string]feeds.TargetQuery
	store      *storage.Storage
	aggregator *scoring.Aggregator
	cache      *scoring.Cache
	alerter    Alerter
	windowDays int
}

// New creates an engine. queries maps each target to its search parameters;
// its key set defines the targets the engine serves.
func New(fetchers []feeds.Fetcher, queries map[string]feeds.TargetQuery, store *storage.Storage, aggregator *scoring.Aggregator, alerter Alerter, opts Options) *Engine {
	if opts.WindowDays <= 0 {
		opts.WindowDays = 7
	}
	return &Engine{
		fetchers:   fetchers,
		queries:    queries,
		store:      store,
		aggregator: aggregator,
		cache:      scoring.NewCache(),
		alerter:    alerter,
		windowDays: opts.WindowDays,
	}
}

// Targets returns the served targets in sorted order.
func (e *Engine) Targets() []string {
	targets := make([]string, 0, len(e.queries))
	for t := range e.queries {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Assessment returns the cached assessment for the target, computing one
// from stored events when the cache is cold (fresh start, or first request
// before the initial cycle completes).
func (e *Engine) Assessment(target string) (*models.ThreatAssessment, error) {
	target = scoring.CanonicalTarget(target)
	if a := e.cache.Get(target); a != nil {
		return a, nil
	}
	return e.assess(target, 0)
}

// RunCycle executes one full cycle over every target. Per-target failures
// are logged and counted; the cycle always visits every target.
func (e *Engine) RunCycle(ctx context.Context) {
	started := time.Now()
	for _, target := range e.Targets() {
		if ctx.Err() != nil {
			logger.Warn("cycle aborted: %v", ctx.Err())
			return
		}
		if err := e.runTarget(ctx, target); err != nil {
			logger.Error("cycle failed for %s: %v", target, err)
		}
	}
	logger.Info("cycle completed in %v", time.Since(started).Round(time.Millisecond))
}

// runTarget fetches, ingests, and scores one target.
func (e *Engine) runTarget(ctx context.Context, target string) error {
	query := e.queries[target]
	now := time.Now().UTC()

	var events []models.Event
	skipped := 0
	for _, fetcher := range e.fetchers {
		records, err := fetcher.Fetch(ctx, query, e.windowDays)
		if err != nil {
			logger.Warn("fetch %s for %s failed: %v", fetcher.Name(), target, err)
			metrics.FetchErrors.WithLabelValues(fetcher.Name()).Inc()
			continue
		}
		batch, skippedHere := normalize.NormalizeBatch(records, "", target, now)
		events = append(events, batch...)
		skipped += skippedHere
	}

	if skipped > 0 {
		logger.Debug("skipped %d malformed records for %s", skipped, target)
		metrics.RecordsSkipped.WithLabelValues(target).Add(float64(skipped))
	}

	events = normalize.Dedupe(events)
	inserted, err := e.store.AddEvents(events)
	if err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}
	logger.Info("target %s: %d fetched, %d new, %d skipped", target, len(events), inserted, skipped)

	assessment, err := e.assess(target, skipped)
	if err != nil {
		return err
	}

	if e.alerter != nil {
		if err := e.alerter.Alert(assessment); err != nil {
			logger.Error("alert for %s failed: %v", target, err)
		}
	}
	return nil
}

// assess scores the stored event window for the target and publishes the
// result to the cache, the assessment history, and the metrics gauges.
// skipped is the producing cycle's malformed-record count, surfaced on the
// assessment itself.
func (e *Engine) assess(target string, skipped int) (*models.ThreatAssessment, error) {
	since := time.Now().UTC().Add(-e.aggregator.Cutoff())
	events, err := e.store.EventsInWindow(target, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	previous := e.cache.Get(target)
	if previous == nil {
		previous, err = e.store.LatestAssessment(target)
		if err != nil {
			return nil, fmt.Errorf("failed to load previous assessment: %w", err)
		}
	}

	assessment, err := e.aggregator.Assess(target, events, previous)
	if err != nil {
		return nil, err
	}
	assessment.SkippedCount = skipped

	e.cache.Put(assessment)
	if err := e.store.SaveAssessment(assessment); err != nil {
		logger.Error("failed to save assessment for %s: %v", target, err)
	}

	metrics.ThreatScore.WithLabelValues(target).Set(assessment.Score)
	metrics.EventCount.WithLabelValues(target).Set(float64(assessment.EventCount))
	metrics.Momentum.WithLabelValues(target).Set(metrics.MomentumValue(string(assessment.Momentum)))
	metrics.AssessmentsTotal.WithLabelValues(target).Inc()

	return assessment, nil
}

// Maintain prunes events older than the scoring cutoff and enforces the
// per-target event cap. Intended to run on a slower ticker than RunCycle.
func (e *Engine) Maintain() {
	cutoff := time.Now().UTC().Add(-e.aggregator.Cutoff())
	pruned, err := e.store.PruneEvents(cutoff)
	if err != nil {
		logger.Error("prune failed: %v", err)
	} else if pruned > 0 {
		logger.Info("pruned %d stale events", pruned)
	}

	if err := e.store.RotateEvents(e.Targets()); err != nil {
		logger.Error("rotate failed: %v", err)
	}
}
