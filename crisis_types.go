package companionsdk

import "time"

// ──────────────────────────────────────────────
// Crisis Detection — core types
// ──────────────────────────────────────────────

// CrisisType classifies the nature of a detected crisis.
type CrisisType string

const (
	CrisisSuicide   CrisisType = "suicide"
	CrisisSelfHarm  CrisisType = "self_harm"
	CrisisViolence  CrisisType = "violence"
	CrisisAbuse     CrisisType = "abuse"
	CrisisMedical   CrisisType = "medical"
	CrisisEmotional CrisisType = "emotional"
	CrisisUnknown   CrisisType = "unknown"
)

// Urgency is the categorical immediacy tier, distinct from severity.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyHigh      Urgency = "high"
	UrgencyModerate  Urgency = "moderate"
	UrgencyLow       Urgency = "low"
)

// urgencyRank orders urgency tiers so upgrades never downgrade.
func urgencyRank(u Urgency) int {
	switch u {
	case UrgencyImmediate:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyModerate:
		return 1
	default:
		return 0
	}
}

// maxUrgency returns the higher of two urgency tiers.
func maxUrgency(a, b Urgency) Urgency {
	if urgencyRank(b) > urgencyRank(a) {
		return b
	}
	return a
}

// CrisisAction is the selected response action for a scored message.
type CrisisAction string

const (
	ActionEscalate  CrisisAction = "escalate"
	ActionSupport   CrisisAction = "support"
	ActionResources CrisisAction = "resources"
	ActionMonitor   CrisisAction = "monitor"
)

// CrisisIndicators is the result of scoring one message.
// Computed fresh per message and never mutated after creation.
type CrisisIndicators struct {
	Severity   int        `json:"severity"`   // 0-10
	Type       CrisisType `json:"type"`       // unknown until severity >= 5
	Confidence float64    `json:"confidence"` // 0.0-1.0
	Keywords   []string   `json:"keywords"`   // matched phrases, detection order
	Urgency    Urgency    `json:"urgency"`
}

// Resource is a single support resource (hotline, website, app).
type Resource struct {
	Name         string `json:"name"`
	Contact      string `json:"contact"`
	Description  string `json:"description"`
	Availability string `json:"availability,omitempty"`
}

// CrisisResponse is the user-facing outcome for a scored message.
type CrisisResponse struct {
	Action             CrisisAction `json:"action"`
	Message            string       `json:"message"`
	Resources          []Resource   `json:"resources"` // at most 5
	EscalationRequired bool         `json:"escalation_required"`
	NotificationsSent  []string     `json:"notifications_sent,omitempty"`
}

// SentimentContext carries the optional signal supplied by an external
// sentiment/emotion collaborator.
type SentimentContext struct {
	EmotionalIntensity float64 `json:"emotional_intensity"` // 0-10
}

// CrisisEventSummary is the persisted summary of a handled crisis.
type CrisisEventSummary struct {
	Action        CrisisAction `json:"action"`
	ResourceCount int          `json:"resource_count"`
	Escalated     bool         `json:"escalated"`
	Timestamp     time.Time    `json:"timestamp"`
}
