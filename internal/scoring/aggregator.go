package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/asifah/stormwatch/internal/baseline"
	"github.com/asifah/stormwatch/internal/credibility"
	"github.com/asifah/stormwatch/internal/lexicon"
	"github.com/asifah/stormwatch/internal/models"
)

// DefaultMomentumEpsilon is the score delta below which successive
// assessments are classified as stable.
const DefaultMomentumEpsilon = 1.0

// maxContributors bounds the breakdown attached to an assessment.
const maxContributors = 15

// Options tunes the aggregator. Zero values select the documented defaults.
type Options struct {
	HalfLife        time.Duration
	Cutoff          time.Duration
	MomentumEpsilon float64
}

// Aggregator combines weighted events into threat assessments. All referenced
// tables are read-only; an Aggregator is safe for concurrent use across
// targets with no coordination.
type Aggregator struct {
	credibility *credibility.Table
	lexicon     *lexicon.Lexicon
	baselines   *baseline.Table
	opts        Options
}

// NewAggregator wires the static tables into a scoring engine.
func NewAggregator(cred *credibility.Table, lex *lexicon.Lexicon, base *baseline.Table, opts Options) *Aggregator {
	if opts.HalfLife <= 0 {
		opts.HalfLife = DefaultHalfLife
	}
	if opts.Cutoff <= 0 {
		opts.Cutoff = DefaultCutoff
	}
	if opts.MomentumEpsilon <= 0 {
		opts.MomentumEpsilon = DefaultMomentumEpsilon
	}
	return &Aggregator{credibility: cred, lexicon: lex, baselines: base, opts: opts}
}

// Cutoff returns the aggregation window length.
func (a *Aggregator) Cutoff() time.Duration { return a.opts.Cutoff }

// Assess reduces the events observed for one target to a bounded threat
// assessment. previous may be nil; without history momentum is stable by
// definition. Events for other targets or past the cutoff are ignored.
// An unknown target aborts with baseline.ErrUnknownTarget and no partial score.
func (a *Aggregator) Assess(target string, events []models.Event, previous *models.ThreatAssessment) (*models.ThreatAssessment, error) {
	return a.AssessAt(target, events, previous, time.Now().UTC())
}

// AssessAt is Assess with an explicit evaluation instant, for deterministic tests.
func (a *Aggregator) AssessAt(target string, events []models.Event, previous *models.ThreatAssessment, now time.Time) (*models.ThreatAssessment, error) {
	// Target identifiers are canonically lowercase; a case-variant id must
	// score identically to the canonical one, not drop events.
	target = CanonicalTarget(target)

	base, err := a.baselines.Lookup(target)
	if err != nil {
		return nil, err
	}

	scored := make([]models.ScoredEvent, 0, len(events))
	raw := 0.0
	for _, evt := range events {
		if evt.Target != target {
			continue
		}
		age := now.Sub(evt.PublishedAt)
		if age > a.opts.Cutoff {
			continue
		}

		weight := a.credibility.WeightFor(evt.SourceID)
		signal := a.lexicon.Score(evt.Text)
		decay := Decay(age, a.opts.HalfLife)

		se := models.ScoredEvent{
			Event:          evt,
			SourceWeight:   weight,
			SeveritySum:    signal.Escalation,
			Decay:          decay,
			Contribution:   weight * signal.Escalation * decay,
			Deescalation:   weight * signal.Deescalation * decay,
			IsDeescalation: signal.Deescalation < 0,
		}
		raw += se.Contribution + se.Deescalation
		scored = append(scored, se)
	}

	// Offset first, then the baseline clamp, then the global clamp. The order
	// guarantees a target's structural floor and ceiling cannot be bypassed
	// by raw signal magnitude.
	score := clamp(clamp(base.Offset+raw, base.Min, base.Max), 0, 100)

	momentum := models.MomentumStable
	if previous != nil {
		switch {
		case score > previous.Score+a.opts.MomentumEpsilon:
			momentum = models.MomentumIncreasing
		case score < previous.Score-a.opts.MomentumEpsilon:
			momentum = models.MomentumDecreasing
		}
	}

	return &models.ThreatAssessment{
		Target:       target,
		Score:        score,
		Momentum:     momentum,
		EventCount:   len(scored),
		Timeline:     timelineFor(score, momentum),
		Confidence:   confidenceFor(len(scored), uniqueSources(scored)),
		Timestamp:    now,
		RawSignal:    raw,
		Contributors: topContributors(scored),
	}, nil
}

// timelineFor maps a score band to an expected escalation horizon. Rising
// momentum above the midpoint pulls the horizon in to the nearest band.
func timelineFor(score float64, momentum models.Momentum) string {
	var timeline string
	switch {
	case score < 30:
		timeline = "180+ Days (Low priority)"
	case score < 50:
		timeline = "91-180 Days"
	case score < 70:
		timeline = "31-90 Days"
	default:
		timeline = "0-30 Days (Elevated threat)"
	}
	if momentum == models.MomentumIncreasing && score > 50 {
		timeline = "0-30 Days (Elevated threat)"
	}
	return timeline
}

// confidenceFor grades an assessment by event volume and source diversity.
func confidenceFor(eventCount, sourceCount int) string {
	switch {
	case eventCount >= 20 && sourceCount >= 8:
		return "High"
	case eventCount >= 10 && sourceCount >= 5:
		return "Medium"
	default:
		return "Low"
	}
}

func uniqueSources(scored []models.ScoredEvent) int {
	seen := make(map[string]bool, len(scored))
	for _, se := range scored {
		seen[strings.ToLower(se.Event.SourceID)] = true
	}
	return len(seen)
}

// topContributors returns up to maxContributors scored events ordered by
// absolute contribution, largest first. Net contribution includes the
// de-escalation component so strong negative signals surface too.
func topContributors(scored []models.ScoredEvent) []models.ScoredEvent {
	if len(scored) == 0 {
		return nil
	}
	sorted := make([]models.ScoredEvent, len(scored))
	copy(sorted, scored)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Contribution+sorted[i].Deescalation) >
			math.Abs(sorted[j].Contribution+sorted[j].Deescalation)
	})
	if len(sorted) > maxContributors {
		sorted = sorted[:maxContributors]
	}
	return sorted
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// CanonicalTarget folds a target identifier to its canonical lowercase form.
// Every target-keyed structure (event filter, cache slots, storage rows)
// uses this form.
func CanonicalTarget(target string) string {
	return strings.ToLower(strings.TrimSpace(target))
}
