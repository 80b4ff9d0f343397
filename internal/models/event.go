// Package models defines the core domain entities for the stormwatch application.
// These models represent normalized OSINT signals, scored contributions, and
// per-target threat assessments. All models include built-in validation to
// ensure data integrity throughout the application.
//
// Terminology:
//   - RawRecord: one item as fetched from an upstream source (news API, GDELT,
//     Reddit, RSS) before normalization.
//   - Event: one normalized observed signal (text + time + source + target).
//     This is the unit the scoring engine consumes.
package models

import (
	"errors"
	"time"
)

// RawRecord is the upstream shape shared by all fetchers. Fields may be
// partially populated depending on the source; the normalizer decides
// whether a record is usable.
type RawRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
	SourceName  string `json:"source_name"`
	Language    string `json:"language"`
}

// Event represents a single normalized OSINT signal attributed to one target.
// Events are immutable once created; the normalizer is the only producer.
type Event struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"published_at"` // always UTC
	SourceID    string    `json:"source_id"`
	Target      string    `json:"target"`
	URL         string    `json:"url,omitempty"`
	Language    string    `json:"language,omitempty"`
}

// Validate checks that all event fields are valid.
func (e *Event) Validate() error {
	if e.ID == "" {
		return errors.New("event ID must not be empty")
	}
	if e.Text == "" {
		return errors.New("event text must not be empty")
	}
	if e.SourceID == "" {
		return errors.New("event source ID must not be empty")
	}
	if e.Target == "" {
		return errors.New("event target must not be empty")
	}
	if e.PublishedAt.IsZero() {
		return errors.New("event published timestamp must be set")
	}
	if e.PublishedAt.After(time.Now()) {
		return errors.New("event published timestamp must not be in the future")
	}
	return nil
}
