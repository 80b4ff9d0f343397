package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/asifah/stormwatch/internal/models"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func assessment(target string, score float64, momentum models.Momentum) *models.ThreatAssessment {
	return &models.ThreatAssessment{
		Target:     target,
		Score:      score,
		Momentum:   momentum,
		EventCount: 12,
		Timestamp:  time.Now().UTC(),
	}
}

func TestShouldAlert(t *testing.T) {
	n := newNotifier(&fakeSender{}, 1, Options{AlertScore: 70})

	tests := []struct {
		name string
		a    *models.ThreatAssessment
		want bool
	}{
		{"above threshold", assessment("poland", 75, models.MomentumStable), true},
		{"at threshold", assessment("poland", 70, models.MomentumDecreasing), true},
		{"below threshold stable", assessment("poland", 40, models.MomentumStable), false},
		{"near threshold increasing", assessment("poland", 60, models.MomentumIncreasing), true},
		{"low score increasing", assessment("poland", 40, models.MomentumIncreasing), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.ShouldAlert(tt.a); got != tt.want {
				t.Errorf("ShouldAlert() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlertCooldown(t *testing.T) {
	bot := &fakeSender{}
	n := newNotifier(bot, 1, Options{AlertScore: 70, Cooldown: time.Hour})

	a := assessment("ukraine", 80, models.MomentumIncreasing)
	if err := n.Alert(a); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if err := n.Alert(a); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if len(bot.sent) != 1 {
		t.Errorf("expected cooldown to suppress second alert, sent %d", len(bot.sent))
	}

	// A different target has its own cooldown slot.
	if err := n.Alert(assessment("russia", 80, models.MomentumStable)); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if len(bot.sent) != 2 {
		t.Errorf("expected independent cooldown per target, sent %d", len(bot.sent))
	}
}

func TestAlertSuppressedBelowThreshold(t *testing.T) {
	bot := &fakeSender{}
	n := newNotifier(bot, 1, Options{AlertScore: 70})

	if err := n.Alert(assessment("greenland", 30, models.MomentumStable)); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if len(bot.sent) != 0 {
		t.Errorf("expected no alert, sent %d", len(bot.sent))
	}
}

func TestAlertRetriesAndFails(t *testing.T) {
	bot := &fakeSender{err: errors.New("telegram unavailable")}
	n := newNotifier(bot, 1, Options{AlertScore: 70, MaxRetries: 2, RetryDelayBase: time.Millisecond})

	if err := n.Alert(assessment("poland", 90, models.MomentumIncreasing)); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestFailedAlertDoesNotStartCooldown(t *testing.T) {
	bot := &fakeSender{err: errors.New("telegram unavailable")}
	n := newNotifier(bot, 1, Options{AlertScore: 70, MaxRetries: 1, RetryDelayBase: time.Millisecond, Cooldown: time.Hour})

	a := assessment("poland", 90, models.MomentumIncreasing)
	if err := n.Alert(a); err == nil {
		t.Fatal("expected delivery failure")
	}

	// Delivery recovers; the earlier failure must not suppress this alert.
	bot.err = nil
	if err := n.Alert(a); err != nil {
		t.Fatalf("Alert() after recovery error = %v", err)
	}
	if len(bot.sent) != 1 {
		t.Errorf("sent %d alerts after recovery, want 1", len(bot.sent))
	}
}

func TestFormatAlertEscapesMarkdown(t *testing.T) {
	a := assessment("poland", 72.5, models.MomentumIncreasing)
	a.Contributors = []models.ScoredEvent{{
		Event: models.Event{
			Text: "Missile strike hits depot (confirmed)",
			URL:  "https://example.com/story",
		},
		Contribution: 8.2,
	}}

	msg := formatAlert(a)
	if !strings.Contains(msg, "72\\.5") {
		t.Errorf("score not escaped: %q", msg)
	}
	if !strings.Contains(msg, "\\(confirmed\\)") {
		t.Errorf("contributor text not escaped: %q", msg)
	}
	if !strings.Contains(msg, "](https://example.com/story)") {
		t.Errorf("expected hyperlink to contributor URL: %q", msg)
	}
	if !strings.Contains(msg, "Poland") {
		t.Errorf("expected title-cased target: %q", msg)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"a.b", "a\\.b"},
		{"(x)", "\\(x\\)"},
		{"a-b_c", "a\\-b\\_c"},
	}

	for _, tt := range tests {
		if got := escapeMarkdownV2(tt.in); got != tt.want {
			t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
