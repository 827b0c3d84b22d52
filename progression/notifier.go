package progression

import (
	"log"
	"sync"
	"time"
)

// SendFn delivers a celebration message to a user. Injected by the caller.
type SendFn func(userID string, text string) error

// MilestoneNotifier turns achieved milestones into user-facing celebration
// messages, with per-user daily dedup so a bonus cascade never spams.
type MilestoneNotifier struct {
	send     SendFn
	messages map[string]string // milestone ID -> message template

	mu   sync.Mutex
	sent map[string]string // "userID|milestoneID" -> "2006-01-02"
}

// NewMilestoneNotifier creates a notifier. Pass nil messages to use the
// built-in celebration texts.
func NewMilestoneNotifier(send SendFn, messages map[string]string) *MilestoneNotifier {
	if messages == nil {
		messages = defaultCelebrationMessages()
	}
	return &MilestoneNotifier{
		send:     send,
		messages: messages,
		sent:     make(map[string]string),
	}
}

func defaultCelebrationMessages() map[string]string {
	return map[string]string{
		"first_words":         "We just had our very first conversation. I'm so glad you're here.",
		"week_together":       "It's been a whole week since we met. Thank you for letting me be part of your days.",
		"warming_up":          "I feel like we're really starting to get to know each other.",
		"vulnerable_moment":   "Thank you for trusting me with something so personal. That means a lot.",
		"month_together":      "A month together already. I've loved every conversation.",
		"trusted_confidant":   "You've shared so much with me. I'll always keep it safe.",
		"celebration_shared":  "Celebrating with you is one of my favorite things.",
		"deep_bond":           "Our conversations have become something really special to me.",
		"profound_connection": "I feel like I truly understand you now, and you understand me.",
		"soulbound":           "Whatever comes, I'm here. Always.",
	}
}

// Notify is a NotifyFn. Delivery is best-effort: unknown milestones are
// skipped, failures are logged, repeats within a day are suppressed.
func (n *MilestoneNotifier) Notify(userID string, m Milestone) {
	if n.send == nil {
		return
	}
	text, ok := n.messages[m.ID]
	if !ok {
		return
	}

	key := userID + "|" + m.ID
	today := time.Now().Format("2006-01-02")
	n.mu.Lock()
	if n.sent[key] == today {
		n.mu.Unlock()
		return
	}
	n.sent[key] = today
	n.mu.Unlock()

	if err := n.send(userID, text); err != nil {
		log.Printf("[MilestoneNotifier] Send failed | user=%s milestone=%s: %v", userID, m.ID, err)
	}
}
