package companionsdk

import (
	"context"
	"time"
)

// ──────────────────────────────────────────────
// Crisis stats — read-only aggregation over the event trail
// ──────────────────────────────────────────────

// CrisisStats summarizes crisis events over a timeframe.
type CrisisStats struct {
	Total      int                `json:"total"`
	ByType     map[CrisisType]int `json:"by_type"`
	BySeverity map[int]int        `json:"by_severity"`
	Escalated  int                `json:"escalated"`
}

// ComputeCrisisStats aggregates crisis events recorded within the last
// timeframe. Recomputed on demand; callers may cache with a short TTL.
func ComputeCrisisStats(ctx context.Context, store ActivityStore, timeframe time.Duration) (*CrisisStats, error) {
	since := time.Now().Add(-timeframe)
	events, err := store.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	stats := &CrisisStats{
		ByType:     make(map[CrisisType]int),
		BySeverity: make(map[int]int),
	}
	for _, e := range events {
		if e.Type != EventCrisis {
			continue
		}
		stats.Total++
		if t, ok := e.Metadata["type"].(string); ok {
			stats.ByType[CrisisType(t)]++
		}
		if sev, ok := metadataInt(e.Metadata["severity"]); ok {
			stats.BySeverity[sev]++
		}
		if escalated, ok := e.Metadata["escalated"].(bool); ok && escalated {
			stats.Escalated++
		}
	}
	return stats, nil
}

// metadataInt tolerates the numeric types a JSON round trip can produce.
func metadataInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
