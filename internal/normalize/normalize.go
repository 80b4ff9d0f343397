// Package normalize converts raw fetched records from any upstream source
// into canonical events. It coerces timestamps to UTC, rejects records that
// cannot be scored, and merges exact duplicates. It performs no other
// filtering or deduplication; relevance windowing belongs to the aggregator.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asifah/stormwatch/internal/models"
)

// ErrMalformedRecord is returned for records missing text or carrying an
// unusable timestamp. Callers skip the record and keep a count; it never
// aborts a batch.
var ErrMalformedRecord = errors.New("malformed record")

// timestampLayouts lists the formats upstream sources publish, tried in order.
// GDELT uses a compact basic-format layout; RSS feeds use RFC1123 variants.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"20060102T150405Z", // GDELT seendate
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts one raw record into an Event for the given source and
// target. now is the ingestion instant: future timestamps are clamped to it,
// never rejected. Returns ErrMalformedRecord (wrapped) when the record has no
// usable text or timestamp.
func Normalize(raw models.RawRecord, sourceID, target string, now time.Time) (models.Event, error) {
	text := joinText(raw.Title, raw.Description, raw.Content)
	if text == "" {
		return models.Event{}, fmt.Errorf("%w: no text in record from %s", ErrMalformedRecord, sourceID)
	}

	published, err := parseTimestamp(raw.PublishedAt)
	if err != nil {
		return models.Event{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	now = now.UTC()
	if published.After(now) {
		published = now
	}

	if sourceID == "" {
		sourceID = raw.SourceName
	}
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return models.Event{}, fmt.Errorf("%w: record has no source identifier", ErrMalformedRecord)
	}

	return models.Event{
		ID:          uuid.New().String(),
		Text:        text,
		PublishedAt: published,
		SourceID:    sourceID,
		Target:      strings.ToLower(strings.TrimSpace(target)),
		URL:         raw.URL,
		Language:    raw.Language,
	}, nil
}

// NormalizeBatch converts a slice of raw records, skipping malformed ones.
// The skipped count is surfaced to the caller; records are never dropped
// without trace.
func NormalizeBatch(raws []models.RawRecord, sourceID, target string, now time.Time) (events []models.Event, skipped int) {
	for _, raw := range raws {
		evt, err := Normalize(raw, sourceID, target, now)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, evt)
	}
	return events, skipped
}

// DedupeKey returns the identity used for exact-duplicate merging:
// same source, same timestamp, same normalized text.
func DedupeKey(e models.Event) string {
	return strings.ToLower(e.SourceID) + "\x1f" +
		e.PublishedAt.UTC().Format(time.RFC3339) + "\x1f" +
		foldText(e.Text)
}

// Dedupe idempotently merges exact duplicates, keeping first occurrence order.
// Two events are duplicates when source, timestamp, and normalized text all
// match; near-duplicates from different sources are intentionally kept.
func Dedupe(events []models.Event) []models.Event {
	seen := make(map[string]bool, len(events))
	out := events[:0:0]
	for _, e := range events {
		key := DedupeKey(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// parseTimestamp coerces any supported upstream timestamp representation to UTC.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	// Tolerate the common "Z suffix with offset layout" mismatch
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// joinText concatenates the record's textual fields, collapsing whitespace.
func joinText(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// foldText lowercases and collapses internal whitespace for duplicate identity.
func foldText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
