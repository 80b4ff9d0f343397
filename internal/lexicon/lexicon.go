// Package lexicon provides the static severity lexicon: keyword and phrase
// rules that map free text to escalation and de-escalation weights.
//
// The lexicon is compiled once at startup from configuration and never
// mutated, making it safe for unlimited concurrent readers. Matching is an
// explicit case-insensitive multi-pattern scan: single-word rules match whole
// tokens, multi-word rules match boundary-checked substrings.
package lexicon

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Category classifies an escalation rule's severity band.
type Category string

const (
	CategoryCritical Category = "critical"
	CategoryHigh     Category = "high"
	CategoryModerate Category = "moderate"
)

// Rule is one severity lexicon entry.
type Rule struct {
	Phrase       string   `json:"phrase"`
	Weight       float64  `json:"weight"`
	Category     Category `json:"category"`
	Deescalation bool     `json:"deescalation"`
}

// Signal carries the two independent per-event sums produced by Score.
// Escalation and de-escalation are never netted inside the lexicon;
// the aggregator applies them separately.
type Signal struct {
	Escalation   float64 // sum of matched non-de-escalation weights, capped
	Deescalation float64 // sum of matched de-escalation weights (<= 0), floored
	Matched      []Rule  // all matching rules, escalation first
}

// Lexicon is the compiled multi-pattern matcher. Immutable after New.
type Lexicon struct {
	// tokens maps single-word phrases to their rules
	tokens map[string][]Rule
	// phrases holds multi-word rules with pre-lowered phrases
	phrases []loweredRule
	// cap bounds the per-event escalation sum (and mirrors as the
	// de-escalation floor) so keyword-stuffed items cannot dominate
	cap float64
	// defaultWeight applies when no escalation rule matches; upstream
	// fetchers already filter by target keywords, so an unmatched item is
	// still a weak ambient signal rather than zero
	defaultWeight float64
}

type loweredRule struct {
	phrase string
	rule   Rule
}

// DefaultCap is the per-event ceiling on summed escalation weights.
const DefaultCap = 25.0

// DefaultUnmatchedWeight is the escalation weight for events matching no rule.
const DefaultUnmatchedWeight = 1.0

// New compiles a lexicon from rules. Escalation weights must be positive and
// de-escalation weights must be <= 0. cap <= 0 selects DefaultCap.
func New(rules []Rule, cap, defaultWeight float64) (*Lexicon, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("severity lexicon requires at least one rule")
	}
	if cap <= 0 {
		cap = DefaultCap
	}
	if defaultWeight < 0 {
		return nil, fmt.Errorf("default weight must not be negative, got %.2f", defaultWeight)
	}

	lex := &Lexicon{
		tokens:        make(map[string][]Rule),
		cap:           cap,
		defaultWeight: defaultWeight,
	}

	for _, r := range rules {
		phrase := strings.ToLower(strings.TrimSpace(r.Phrase))
		if phrase == "" {
			return nil, fmt.Errorf("severity rule with empty phrase")
		}
		if r.Deescalation {
			if r.Weight > 0 {
				return nil, fmt.Errorf("de-escalation rule %q must have weight <= 0, got %.2f", r.Phrase, r.Weight)
			}
		} else {
			if r.Weight <= 0 {
				return nil, fmt.Errorf("escalation rule %q must have positive weight, got %.2f", r.Phrase, r.Weight)
			}
			switch r.Category {
			case CategoryCritical, CategoryHigh, CategoryModerate:
			default:
				return nil, fmt.Errorf("escalation rule %q has unknown category %q", r.Phrase, r.Category)
			}
		}

		normalized := r
		normalized.Phrase = phrase
		if strings.ContainsAny(phrase, " -") {
			lex.phrases = append(lex.phrases, loweredRule{phrase: phrase, rule: normalized})
		} else {
			lex.tokens[phrase] = append(lex.tokens[phrase], normalized)
		}
	}

	return lex, nil
}

// Match returns all rules whose phrase appears in text. Matching is
// case-insensitive; single-word rules require whole-token matches and
// multi-word rules require boundary-checked substring matches.
func (l *Lexicon) Match(text string) []Rule {
	if text == "" {
		return nil
	}
	folded := strings.ToLower(text)

	var matched []Rule
	seen := make(map[string]bool)

	for _, tok := range tokenize(folded) {
		for _, r := range l.tokens[tok] {
			if !seen[r.Phrase] {
				seen[r.Phrase] = true
				matched = append(matched, r)
			}
		}
	}

	for _, lr := range l.phrases {
		if seen[lr.phrase] {
			continue
		}
		if containsBounded(folded, lr.phrase) {
			seen[lr.phrase] = true
			matched = append(matched, lr.rule)
		}
	}

	return matched
}

// Score computes the per-event escalation and de-escalation sums.
// Escalation weights of matching rules sum (not max) to capture compounding
// signals, capped at the configured ceiling. De-escalation weights sum
// separately and are floored at the negated ceiling. The two are never netted
// here. With no escalation match the default weight applies.
func (l *Lexicon) Score(text string) Signal {
	matched := l.Match(text)

	sig := Signal{Matched: matched}
	escMatched := false
	for _, r := range matched {
		if r.Deescalation {
			sig.Deescalation += r.Weight
		} else {
			sig.Escalation += r.Weight
			escMatched = true
		}
	}

	if !escMatched {
		sig.Escalation = l.defaultWeight
	}
	if sig.Escalation > l.cap {
		sig.Escalation = l.cap
	}
	if sig.Deescalation < -l.cap {
		sig.Deescalation = -l.cap
	}

	return sig
}

// Cap returns the per-event escalation ceiling.
func (l *Lexicon) Cap() float64 { return l.cap }

// tokenize splits folded text into letter/digit runs.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsBounded reports whether phrase occurs in s at word boundaries.
// Hyphens inside the phrase are treated literally; characters adjacent to the
// match must not be letters or digits.
func containsBounded(s, phrase string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start

		prev, _ := utf8.DecodeLastRuneInString(s[:idx])
		boundedLeft := idx == 0 || !isWordChar(prev)
		end := idx + len(phrase)
		next, _ := utf8.DecodeRuneInString(s[end:])
		boundedRight := end >= len(s) || !isWordChar(next)
		if boundedLeft && boundedRight {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
