package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/asifah/stormwatch/internal/models"
)

func mustStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(":memory:", 1000)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testEvent(target, source, text string, publishedAt time.Time) models.Event {
	return models.Event{
		ID:          uuid.New().String(),
		Text:        text,
		PublishedAt: publishedAt.UTC(),
		SourceID:    source,
		Target:      target,
	}
}

func TestAddAndQueryEvents(t *testing.T) {
	s := mustStorage(t)
	now := time.Now().UTC().Truncate(time.Second)

	events := []models.Event{
		testEvent("poland", "Reuters", "drone incursion reported", now.Add(-1*time.Hour)),
		testEvent("poland", "TVN24", "airspace closed near border", now.Add(-2*time.Hour)),
		testEvent("ukraine", "Kyiv Independent", "shelling in kherson", now.Add(-3*time.Hour)),
	}

	inserted, err := s.AddEvents(events)
	if err != nil {
		t.Fatalf("AddEvents failed: %v", err)
	}
	if inserted != 3 {
		t.Errorf("inserted = %d, want 3", inserted)
	}

	got, err := s.EventsInWindow("poland", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("EventsInWindow failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d poland events, want 2", len(got))
	}
	// Oldest first
	if !got[0].PublishedAt.Before(got[1].PublishedAt) {
		t.Error("events not sorted oldest first")
	}
	if got[0].PublishedAt.Location() != time.UTC {
		t.Error("loaded timestamp not UTC")
	}
}

func TestAddEventsIdempotentOnDuplicates(t *testing.T) {
	s := mustStorage(t)
	now := time.Now().UTC().Truncate(time.Second)

	e := testEvent("poland", "Reuters", "Troops cross border", now.Add(-time.Hour))
	dup := e
	dup.ID = uuid.New().String()
	dup.Text = "troops  cross   border" // same normalized text

	if _, err := s.AddEvents([]models.Event{e}); err != nil {
		t.Fatalf("AddEvents failed: %v", err)
	}
	inserted, err := s.AddEvents([]models.Event{dup})
	if err != nil {
		t.Fatalf("AddEvents failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("duplicate inserted = %d, want 0", inserted)
	}

	got, err := s.EventsInWindow("poland", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("EventsInWindow failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d events, want 1 after duplicate insert", len(got))
	}
}

func TestAddEventsSkipsInvalid(t *testing.T) {
	s := mustStorage(t)
	now := time.Now().UTC().Truncate(time.Second)

	bad := models.Event{ID: "x", Target: "poland", SourceID: "Reuters"} // no text, no timestamp
	good := testEvent("poland", "Reuters", "valid report", now.Add(-time.Hour))

	// One bad event must not take the rest of the batch down with it.
	inserted, err := s.AddEvents([]models.Event{bad, good})
	if err != nil {
		t.Fatalf("AddEvents failed: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}

	got, err := s.EventsInWindow("poland", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("EventsInWindow failed: %v", err)
	}
	if len(got) != 1 || got[0].Text != "valid report" {
		t.Errorf("stored events = %+v, want only the valid one", got)
	}
}

func TestEventsInWindowExcludesOld(t *testing.T) {
	s := mustStorage(t)
	now := time.Now().UTC().Truncate(time.Second)

	if _, err := s.AddEvents([]models.Event{
		testEvent("ukraine", "Reuters", "recent report", now.Add(-time.Hour)),
		testEvent("ukraine", "Reuters", "stale report", now.Add(-20*24*time.Hour)),
	}); err != nil {
		t.Fatalf("AddEvents failed: %v", err)
	}

	got, err := s.EventsInWindow("ukraine", now.Add(-14*24*time.Hour))
	if err != nil {
		t.Fatalf("EventsInWindow failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d events, want 1 inside window", len(got))
	}
}

func TestSaveAndLatestAssessment(t *testing.T) {
	s := mustStorage(t)
	now := time.Now().UTC()

	if latest, err := s.LatestAssessment("poland"); err != nil || latest != nil {
		t.Fatalf("LatestAssessment on empty store = %v, %v; want nil, nil", latest, err)
	}

	first := &models.ThreatAssessment{
		Target: "poland", Score: 30, Momentum: models.MomentumStable,
		EventCount: 0, Timestamp: now.Add(-time.Hour),
	}
	second := &models.ThreatAssessment{
		Target: "poland", Score: 42.5, Momentum: models.MomentumIncreasing,
		EventCount: 7, SkippedCount: 3, Timeline: "91-180 Days", Confidence: "Low",
		RawSignal: 12.5, Timestamp: now,
	}
	for _, a := range []*models.ThreatAssessment{first, second} {
		if err := s.SaveAssessment(a); err != nil {
			t.Fatalf("SaveAssessment failed: %v", err)
		}
	}

	latest, err := s.LatestAssessment("poland")
	if err != nil {
		t.Fatalf("LatestAssessment failed: %v", err)
	}
	if latest.Score != 42.5 || latest.Momentum != models.MomentumIncreasing {
		t.Errorf("latest = %+v, want the second assessment", latest)
	}
	if latest.SkippedCount != 3 || latest.Timeline != "91-180 Days" || latest.Confidence != "Low" {
		t.Errorf("derived fields not round-tripped: %+v", latest)
	}

	history, err := s.History("poland", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Score != 42.5 {
		t.Error("history not newest first")
	}
}

func TestPruneEvents(t *testing.T) {
	s := mustStorage(t)
	now := time.Now().UTC().Truncate(time.Second)

	if _, err := s.AddEvents([]models.Event{
		testEvent("russia", "Reuters", "fresh", now.Add(-time.Hour)),
		testEvent("russia", "Reuters", "stale", now.Add(-30*24*time.Hour)),
	}); err != nil {
		t.Fatalf("AddEvents failed: %v", err)
	}

	removed, err := s.PruneEvents(now.Add(-14 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneEvents failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestRotateEvents(t *testing.T) {
	s, err := New(":memory:", 1000)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	s.maxEventsPerTarget = 2

	now := time.Now().UTC().Truncate(time.Second)
	var events []models.Event
	for i := 0; i < 5; i++ {
		events = append(events, testEvent("poland", "Reuters",
			uuid.New().String(), now.Add(-time.Duration(i)*time.Hour)))
	}
	if _, err := s.AddEvents(events); err != nil {
		t.Fatalf("AddEvents failed: %v", err)
	}

	if err := s.RotateEvents([]string{"poland"}); err != nil {
		t.Fatalf("RotateEvents failed: %v", err)
	}
	got, err := s.EventsInWindow("poland", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("EventsInWindow failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d events after rotation, want 2", len(got))
	}
	// The newest two survive
	for _, e := range got {
		if e.PublishedAt.Before(now.Add(-2 * time.Hour)) {
			t.Errorf("rotation kept an old event published %v", e.PublishedAt)
		}
	}
}
