// Package baseline provides the static per-target baseline table: structural
// floor, ceiling, and offset constants reflecting known standing risk
// independent of recent events.
//
// This is the one place an unrecognized target is a hard error; every other
// lookup component defaults silently. The table is built once at startup and
// never mutated.
package baseline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownTarget is returned for any target outside the configured set.
// It aborts the whole assessment; callers must not substitute a default score.
var ErrUnknownTarget = errors.New("unknown target")

// Baseline holds one target's structural constants. Offset is applied to the
// raw signal before clamping to [Min, Max].
type Baseline struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Offset float64 `json:"offset"`
}

// Table maps target identifiers to baselines. Immutable after New.
type Table struct {
	baselines map[string]Baseline
	targets   []string
}

// New builds an immutable baseline table. Each baseline must satisfy
// 0 <= Min <= Max <= 100.
func New(baselines map[string]Baseline) (*Table, error) {
	if len(baselines) == 0 {
		return nil, fmt.Errorf("baseline table requires at least one target")
	}

	normalized := make(map[string]Baseline, len(baselines))
	targets := make([]string, 0, len(baselines))
	for target, b := range baselines {
		target = strings.ToLower(strings.TrimSpace(target))
		if target == "" {
			return nil, fmt.Errorf("baseline table has empty target identifier")
		}
		if b.Min < 0 || b.Max > 100 {
			return nil, fmt.Errorf("target %s: baseline range [%.1f, %.1f] outside [0,100]", target, b.Min, b.Max)
		}
		if b.Min > b.Max {
			return nil, fmt.Errorf("target %s: baseline min %.1f exceeds max %.1f", target, b.Min, b.Max)
		}
		normalized[target] = b
		targets = append(targets, target)
	}
	sort.Strings(targets)

	return &Table{baselines: normalized, targets: targets}, nil
}

// Lookup returns the baseline for a target, or ErrUnknownTarget wrapped with
// the offending identifier.
func (t *Table) Lookup(target string) (Baseline, error) {
	b, ok := t.baselines[strings.ToLower(strings.TrimSpace(target))]
	if !ok {
		return Baseline{}, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	return b, nil
}

// Targets returns the configured target identifiers in sorted order.
func (t *Table) Targets() []string {
	out := make([]string, len(t.targets))
	copy(out, t.targets)
	return out
}
