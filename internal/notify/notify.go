// Package notify dispatches threat alerts via the Telegram Bot API. An
// assessment triggers an alert when its score crosses the configured
// threshold or its momentum turns increasing near it; a per-target cooldown keeps
// repeated assessments from flooding the chat.
package notify

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/asifah/stormwatch/internal/metrics"
	"github.com/asifah/stormwatch/internal/models"
)

// sender abstracts the Telegram bot for tests.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Options tunes alert delivery.
type Options struct {
	MaxRetries     int
	RetryDelayBase time.Duration
	AlertScore     float64
	Cooldown       time.Duration
}

// Notifier sends formatted threat alerts to one Telegram chat.
type Notifier struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	alertScore     float64
	cooldown       time.Duration

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// New creates a notifier backed by a real Telegram bot.
func New(botToken, chatID string, opts Options) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	return newNotifier(bot, chatIDInt, opts), nil
}

func newNotifier(bot sender, chatID int64, opts Options) *Notifier {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelayBase <= 0 {
		opts.RetryDelayBase = time.Second
	}
	if opts.AlertScore <= 0 {
		opts.AlertScore = 70
	}
	return &Notifier{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     opts.MaxRetries,
		retryDelayBase: opts.RetryDelayBase,
		alertScore:     opts.AlertScore,
		cooldown:       opts.Cooldown,
		lastSent:       make(map[string]time.Time),
	}
}

// ShouldAlert reports whether the assessment warrants a notification,
// ignoring the cooldown. Rising momentum alerts early, but only once the
// score is already near the threshold.
func (n *Notifier) ShouldAlert(a *models.ThreatAssessment) bool {
	if a.Score >= n.alertScore {
		return true
	}
	return a.Momentum == models.MomentumIncreasing && a.Score >= n.alertScore*0.8
}

// Alert sends a notification for the assessment if it qualifies and the
// target is outside its cooldown window. It returns nil when suppressed.
func (n *Notifier) Alert(a *models.ThreatAssessment) error {
	if !n.ShouldAlert(a) {
		return nil
	}

	n.mu.Lock()
	if last, ok := n.lastSent[a.Target]; ok && time.Since(last) < n.cooldown {
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	msg := tgbotapi.NewMessage(n.chatID, formatAlert(a))
	msg.ParseMode = "MarkdownV2"
	msg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		if _, err := n.bot.Send(msg); err == nil {
			// The cooldown starts at delivery; a failed alert must not
			// silence the target for the whole window.
			n.mu.Lock()
			n.lastSent[a.Target] = time.Now()
			n.mu.Unlock()
			metrics.AlertsSent.WithLabelValues(a.Target).Inc()
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(n.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed to send alert after %d retries: %w", n.maxRetries, lastErr)
}

// formatAlert renders an assessment as a MarkdownV2 message.
func formatAlert(a *models.ThreatAssessment) string {
	momentumEmoji := "➡️"
	switch a.Momentum {
	case models.MomentumIncreasing:
		momentumEmoji = "📈"
	case models.MomentumDecreasing:
		momentumEmoji = "📉"
	}

	message := fmt.Sprintf("🚨 *Threat Alert: %s*\n\n", escapeMarkdownV2(titleCase(a.Target)))
	message += fmt.Sprintf("Score: *%s* %s %s\n",
		escapeMarkdownV2(fmt.Sprintf("%.1f", a.Score)),
		momentumEmoji,
		escapeMarkdownV2(string(a.Momentum)))
	message += fmt.Sprintf("Events: %d\n", a.EventCount)
	message += fmt.Sprintf("Assessed: %s\n", escapeMarkdownV2(a.Timestamp.UTC().Format("2006-01-02 15:04:05")))

	top := a.Contributors
	if len(top) > 3 {
		top = top[:3]
	}
	if len(top) > 0 {
		message += "\n*Top signals:*\n"
		for i, c := range top {
			text := c.Event.Text
			if len(text) > 120 {
				text = text[:120]
			}
			escaped := escapeMarkdownV2(text)
			if c.Event.URL != "" {
				message += fmt.Sprintf("%d\\. [%s](%s)\n", i+1, escaped, c.Event.URL)
			} else {
				message += fmt.Sprintf("%d\\. %s\n", i+1, escaped)
			}
		}
	}

	return message
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// escapeMarkdownV2 escapes the characters Telegram's MarkdownV2 mode treats
// as markup.
func escapeMarkdownV2(text string) string {
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}
