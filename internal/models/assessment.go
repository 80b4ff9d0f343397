package models

import (
	"errors"
	"time"
)

// Momentum classifies the trend of a target's score relative to the previous
// assessment.
type Momentum string

const (
	MomentumIncreasing Momentum = "increasing"
	MomentumStable     Momentum = "stable"
	MomentumDecreasing Momentum = "decreasing"
)

// ScoredEvent pairs an event with its computed signed contribution after
// credibility, severity, and decay weighting. Derived and ephemeral; it only
// exists inside an assessment's breakdown.
type ScoredEvent struct {
	Event          Event   `json:"event"`
	SourceWeight   float64 `json:"source_weight"`
	SeveritySum    float64 `json:"severity_sum"`
	Decay          float64 `json:"decay"`
	Contribution   float64 `json:"contribution"`
	Deescalation   float64 `json:"deescalation"`
	IsDeescalation bool    `json:"is_deescalation"`
}

// ThreatAssessment is the externally visible scoring result for one target at
// one point in time. Each computation produces a new immutable assessment;
// the previous one is retained only for momentum comparison.
type ThreatAssessment struct {
	Target       string        `json:"target"`
	Score        float64       `json:"score"` // clamped to [0,100]
	Momentum     Momentum      `json:"momentum"`
	EventCount   int           `json:"event_count"`   // contributing events, post-filter
	SkippedCount int           `json:"skipped_count"` // malformed records dropped during the producing cycle
	Timeline     string        `json:"timeline"`      // score band mapped to an expected horizon
	Confidence   string        `json:"confidence"`    // Low/Medium/High from volume and source diversity
	Timestamp    time.Time     `json:"timestamp"`
	RawSignal    float64       `json:"raw_signal"`
	Contributors []ScoredEvent `json:"top_contributors,omitempty"`
}

// Validate checks that all assessment fields are valid.
func (a *ThreatAssessment) Validate() error {
	if a.Target == "" {
		return errors.New("assessment target must not be empty")
	}
	if a.Score < 0.0 || a.Score > 100.0 {
		return errors.New("assessment score must be between 0 and 100")
	}
	switch a.Momentum {
	case MomentumIncreasing, MomentumStable, MomentumDecreasing:
	default:
		return errors.New("momentum must be 'increasing', 'stable', or 'decreasing'")
	}
	if a.EventCount < 0 {
		return errors.New("event count must not be negative")
	}
	if a.SkippedCount < 0 {
		return errors.New("skipped count must not be negative")
	}
	if a.Timestamp.IsZero() {
		return errors.New("assessment timestamp must be set")
	}
	if a.Timestamp.After(time.Now().Add(time.Second)) {
		return errors.New("assessment timestamp must not be in the future")
	}
	return nil
}
