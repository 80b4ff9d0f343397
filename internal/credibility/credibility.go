// Package credibility provides the static source credibility table used to
// weight event contributions by publisher trustworthiness.
//
// The table is built once at startup from configuration and never mutated.
// Lookups are safe for unlimited concurrent readers. A config reload requires
// building a fresh table and swapping references, never editing in place.
package credibility

import (
	"fmt"
	"strings"
)

// Tier is the credibility class of a source. Tiers are totally ordered:
// premium > think_tank > regional > standard > aggregator > social.
type Tier string

const (
	TierPremium    Tier = "premium"
	TierThinkTank  Tier = "think_tank"
	TierRegional   Tier = "regional"
	TierStandard   Tier = "standard"
	TierAggregator Tier = "aggregator"
	TierSocial     Tier = "social"
)

// tierOrder lists tiers from most to least credible. Weight monotonicity is
// enforced along this order at construction time.
var tierOrder = []Tier{
	TierPremium,
	TierThinkTank,
	TierRegional,
	TierStandard,
	TierAggregator,
	TierSocial,
}

// Profile is one tier's entry: its weight and the source names assigned to it.
type Profile struct {
	Weight  float64
	Sources []string
}

// Table maps source identifiers to credibility weights. Immutable after New.
type Table struct {
	profiles map[Tier]Profile
	// names holds lowercased source names per tier for matching
	names map[Tier][]string
	// fallbackWeight applies to sources that match no tier
	fallbackWeight float64
	// unknownWeight applies to empty source identifiers
	unknownWeight float64
}

// UnknownSourceWeight is the documented weight for empty source identifiers,
// matching the lowest (social) tier.
const UnknownSourceWeight = 0.3

// FallbackWeight is the documented weight for source names that resolve to no
// configured tier.
const FallbackWeight = 0.5

// New builds an immutable credibility table from tier profiles.
// Weights must lie in (0,1] and must be monotonically non-increasing down the
// tier order. Missing tiers are allowed; at least one tier must be present.
func New(profiles map[Tier]Profile) (*Table, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("credibility table requires at least one tier")
	}

	prev := 1.0
	seen := false
	for _, tier := range tierOrder {
		p, ok := profiles[tier]
		if !ok {
			continue
		}
		if p.Weight <= 0.0 || p.Weight > 1.0 {
			return nil, fmt.Errorf("tier %s: weight %.3f outside (0,1]", tier, p.Weight)
		}
		if seen && p.Weight > prev {
			return nil, fmt.Errorf("tier %s: weight %.3f exceeds higher tier weight %.3f", tier, p.Weight, prev)
		}
		prev = p.Weight
		seen = true
	}

	for tier := range profiles {
		if !validTier(tier) {
			return nil, fmt.Errorf("unknown credibility tier: %s", tier)
		}
	}

	names := make(map[Tier][]string, len(profiles))
	for tier, p := range profiles {
		lowered := make([]string, 0, len(p.Sources))
		for _, s := range p.Sources {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				lowered = append(lowered, s)
			}
		}
		names[tier] = lowered
	}

	return &Table{
		profiles:       profiles,
		names:          names,
		fallbackWeight: FallbackWeight,
		unknownWeight:  UnknownSourceWeight,
	}, nil
}

func validTier(t Tier) bool {
	for _, known := range tierOrder {
		if t == known {
			return true
		}
	}
	return false
}

// WeightFor returns the credibility weight for a source identifier.
// It never fails: empty identifiers get the unknown-source weight and
// unmatched identifiers get the fallback weight.
//
// Matching is case-insensitive and bidirectional substring, since upstream
// feeds report full outlet names ("BBC News Europe") while the table stores
// canonical ones ("BBC News").
func (t *Table) WeightFor(sourceID string) float64 {
	sourceID = strings.ToLower(strings.TrimSpace(sourceID))
	if sourceID == "" {
		return t.unknownWeight
	}

	for _, tier := range tierOrder {
		for _, name := range t.names[tier] {
			if strings.Contains(sourceID, name) || strings.Contains(name, sourceID) {
				return t.profiles[tier].Weight
			}
		}
	}

	return t.fallbackWeight
}

// TierFor returns the tier a source identifier resolves to and whether it
// matched any configured tier.
func (t *Table) TierFor(sourceID string) (Tier, bool) {
	sourceID = strings.ToLower(strings.TrimSpace(sourceID))
	if sourceID == "" {
		return "", false
	}

	for _, tier := range tierOrder {
		for _, name := range t.names[tier] {
			if strings.Contains(sourceID, name) || strings.Contains(name, sourceID) {
				return tier, true
			}
		}
	}
	return "", false
}
