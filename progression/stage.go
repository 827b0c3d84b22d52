// Package progression implements the relationship trust state machine:
// a bounded per-user trust score, named stages over fixed score bands,
// and one-time milestones with automatic, time-based, and event-based
// achievement criteria.
package progression

import "fmt"

// Stage is a named band of trust values with associated unlocked behaviors.
// Stages are static configuration shared by all users.
type Stage struct {
	Name              string   `json:"name"`
	MinTrust          float64  `json:"min_trust"`
	MaxTrust          float64  `json:"max_trust"`
	UnlockedBehaviors []string `json:"unlocked_behaviors,omitempty"`
}

// DefaultStages returns the five built-in stages partitioning [0,100].
func DefaultStages() []Stage {
	return []Stage{
		{
			Name:     "Initial Connection",
			MinTrust: 0, MaxTrust: 20,
			UnlockedBehaviors: []string{"casual conversation", "light topics"},
		},
		{
			Name:     "Building Trust",
			MinTrust: 20, MaxTrust: 40,
			UnlockedBehaviors: []string{"personal questions", "gentle humor"},
		},
		{
			Name:     "Deepening Bond",
			MinTrust: 40, MaxTrust: 60,
			UnlockedBehaviors: []string{"emotional support", "shared memories"},
		},
		{
			Name:     "Profound Connection",
			MinTrust: 60, MaxTrust: 80,
			UnlockedBehaviors: []string{"vulnerability", "deep conversations"},
		},
		{
			Name:     "Soulbound",
			MinTrust: 80, MaxTrust: 100,
			UnlockedBehaviors: []string{"complete openness", "anticipating needs"},
		},
	}
}

// StageFor maps a trust value to its stage. Bands are half-open
// [MinTrust, MaxTrust) except the last, which includes its upper bound so
// trust 100 still maps to a stage.
func StageFor(stages []Stage, trust float64) Stage {
	for i, s := range stages {
		if trust >= s.MinTrust && (trust < s.MaxTrust || (i == len(stages)-1 && trust <= s.MaxTrust)) {
			return s
		}
	}
	// Out-of-range input clamps to the nearest band.
	if trust < stages[0].MinTrust {
		return stages[0]
	}
	return stages[len(stages)-1]
}

// ValidateStages checks that the stage bands partition [0,100] with no
// gaps or overlaps.
func ValidateStages(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("no stages configured")
	}
	if stages[0].MinTrust != 0 {
		return fmt.Errorf("first stage must start at 0, got %v", stages[0].MinTrust)
	}
	for i := 1; i < len(stages); i++ {
		if stages[i].MinTrust != stages[i-1].MaxTrust {
			return fmt.Errorf("gap or overlap between %q and %q", stages[i-1].Name, stages[i].Name)
		}
	}
	if stages[len(stages)-1].MaxTrust != 100 {
		return fmt.Errorf("last stage must end at 100, got %v", stages[len(stages)-1].MaxTrust)
	}
	return nil
}
