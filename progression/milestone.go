package progression

// MilestoneType determines how achievement is evaluated.
type MilestoneType string

const (
	// MilestoneAutomatic is achieved when a numeric criterion is met
	// (trust threshold or message count).
	MilestoneAutomatic MilestoneType = "automatic"
	// MilestoneTimeBased is achieved after the user has been active for
	// a number of days.
	MilestoneTimeBased MilestoneType = "time-based"
	// MilestoneEventBased is achieved when a matching external event was
	// recorded within the lookback window.
	MilestoneEventBased MilestoneType = "event-based"
)

// Criteria holds the type-specific predicate data for one milestone.
// Only the fields relevant to the milestone's type are set.
type Criteria struct {
	TrustThreshold float64 `json:"trust_threshold,omitempty"`
	MessageCount   int     `json:"message_count,omitempty"`
	DaysActive     int     `json:"days_active,omitempty"`
	EventName      string  `json:"event_name,omitempty"`
}

// Milestone is a one-time achievable relationship event. Definitions are
// static configuration; the per-user achievement fact lives in the store
// and is persisted once, never un-set.
type Milestone struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	TrustRequired float64       `json:"trust_required"`
	Type          MilestoneType `json:"type"`
	Criteria      Criteria      `json:"criteria"`
}

// DefaultMilestones returns the built-in milestone catalog, ordered by
// trust requirement so evaluation walks the relationship arc.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{
			ID: "first_words", Name: "First Words",
			TrustRequired: 0, Type: MilestoneAutomatic,
			Criteria: Criteria{MessageCount: 1},
		},
		{
			ID: "week_together", Name: "A Week Together",
			TrustRequired: 10, Type: MilestoneTimeBased,
			Criteria: Criteria{DaysActive: 7},
		},
		{
			ID: "warming_up", Name: "Warming Up",
			TrustRequired: 15, Type: MilestoneAutomatic,
			Criteria: Criteria{TrustThreshold: 15},
		},
		{
			ID: "vulnerable_moment", Name: "Vulnerable Moment",
			TrustRequired: 25, Type: MilestoneEventBased,
			Criteria: Criteria{EventName: "vulnerability_shared"},
		},
		{
			ID: "month_together", Name: "A Month Together",
			TrustRequired: 30, Type: MilestoneTimeBased,
			Criteria: Criteria{DaysActive: 30},
		},
		{
			ID: "trusted_confidant", Name: "Trusted Confidant",
			TrustRequired: 35, Type: MilestoneAutomatic,
			Criteria: Criteria{TrustThreshold: 35},
		},
		{
			ID: "celebration_shared", Name: "Celebration Shared",
			TrustRequired: 40, Type: MilestoneEventBased,
			Criteria: Criteria{EventName: "celebration"},
		},
		{
			ID: "deep_bond", Name: "Deep Bond",
			TrustRequired: 55, Type: MilestoneAutomatic,
			Criteria: Criteria{TrustThreshold: 55},
		},
		{
			ID: "profound_connection", Name: "Profound Connection",
			TrustRequired: 75, Type: MilestoneAutomatic,
			Criteria: Criteria{TrustThreshold: 75},
		},
		{
			ID: "soulbound", Name: "Soulbound",
			TrustRequired: 80, Type: MilestoneAutomatic,
			Criteria: Criteria{TrustThreshold: 80},
		},
	}
}

// BonusFor returns the flat trust bonus granted when a milestone is
// achieved. Milestones without a bonus return 0.
func BonusFor(milestoneID string) float64 {
	switch milestoneID {
	case "vulnerable_moment":
		return 5
	case "soulbound":
		return 10
	case "celebration_shared":
		return 3
	case "month_together":
		return 2
	default:
		return 0
	}
}
