package progression

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ──────────────────────────────────────────────
// Trust Engine — bounded score, stages, milestones
// ──────────────────────────────────────────────

const (
	trustMin = 0
	trustMax = 100

	// Single-interaction ceiling for computed trust deltas.
	maxTrustGainPerTurn = 2.0

	// How far back event-based milestones look for a matching event.
	defaultEventLookback = 7 * 24 * time.Hour
)

// EventSink receives append-only progression records (trust_gained,
// trust_lost, milestone_achieved). May be nil; write failures are logged
// and never block the trust update.
type EventSink interface {
	Append(ctx context.Context, userID, eventType string, metadata map[string]any) error
}

// NotifyFn is called for each newly achieved milestone, for celebratory
// messaging. Best-effort; panics are contained.
type NotifyFn func(userID string, milestone Milestone)

// SentimentSignal is the per-turn signal from the external sentiment
// collaborator.
type SentimentSignal struct {
	EmotionalIntensity float64 // 0-10
}

// TurnContext flags the conversational context of one turn.
type TurnContext struct {
	IsVulnerable    bool
	IsCrisis        bool
	IsCelebration   bool
	IsPersonalShare bool
}

// UpdateResult is returned by UpdateTrust.
type UpdateResult struct {
	NewTrust           float64
	StageChanged       bool
	OldStage           string
	NewStage           string
	MilestonesAchieved []Milestone
}

// EngineOptions configures an Engine. Zero-value fields fall back to the
// built-in stages, milestones, and a 7-day event lookback.
type EngineOptions struct {
	Stages     []Stage
	Milestones []Milestone
	Events     EventSink
	Notify     NotifyFn

	// UserCreatedAt resolves account age for time-based milestones.
	// When nil (or the user is unknown) time-based milestones are skipped.
	UserCreatedAt func(ctx context.Context, userID string) (time.Time, bool)

	EventLookback time.Duration
	Now           func() time.Time
}

// Engine drives the trust progression state machine. All trust mutations
// go through UpdateTrust: apply delta, clamp to [0,100], append the
// progression record, re-derive the stage, and evaluate milestones.
type Engine struct {
	store         TrustStore
	stages        []Stage
	milestones    []Milestone
	events        EventSink
	notify        NotifyFn
	userCreatedAt func(ctx context.Context, userID string) (time.Time, bool)
	lookback      time.Duration
	now           func() time.Time
}

// NewEngine creates an engine, validating that the stage bands partition
// [0,100].
func NewEngine(store TrustStore, opts EngineOptions) (*Engine, error) {
	if opts.Stages == nil {
		opts.Stages = DefaultStages()
	}
	if opts.Milestones == nil {
		opts.Milestones = DefaultMilestones()
	}
	if opts.EventLookback <= 0 {
		opts.EventLookback = defaultEventLookback
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if err := ValidateStages(opts.Stages); err != nil {
		return nil, fmt.Errorf("invalid stages: %w", err)
	}
	return &Engine{
		store:         store,
		stages:        opts.Stages,
		milestones:    opts.Milestones,
		events:        opts.Events,
		notify:        opts.Notify,
		userCreatedAt: opts.UserCreatedAt,
		lookback:      opts.EventLookback,
		now:           opts.Now,
	}, nil
}

// Stages returns the configured stage table.
func (e *Engine) Stages() []Stage { return e.stages }

// Trust returns the user's current trust value.
func (e *Engine) Trust(ctx context.Context, userID string) (float64, error) {
	return e.store.Trust(ctx, userID)
}

// CurrentStage returns the user's stage for their current trust value.
func (e *Engine) CurrentStage(ctx context.Context, userID string) (Stage, error) {
	trust, err := e.store.Trust(ctx, userID)
	if err != nil {
		return Stage{}, err
	}
	return StageFor(e.stages, trust), nil
}

// RecordExternalEvent stores a named event (e.g. "vulnerability_shared")
// for event-based milestone evaluation.
func (e *Engine) RecordExternalEvent(ctx context.Context, userID, name string) error {
	return e.store.RecordExternalEvent(ctx, userID, name, e.now())
}

// NoteMessage bumps the user's processed-message counter. Call once per
// conversational turn before UpdateTrust so message-count milestones see
// the turn.
func (e *Engine) NoteMessage(ctx context.Context, userID string) error {
	_, err := e.store.IncrMessageCount(ctx, userID)
	return err
}

// UpdateTrust applies a trust delta for a user and returns the resulting
// trust, stage transition, and newly achieved milestones.
//
// Milestone bonuses are applied as a bounded second pass: the base delta
// is applied and milestones evaluated, bonuses for those milestones are
// applied, then milestones are re-checked exactly once more. Achievement
// is idempotent, so the loop cannot retrigger.
func (e *Engine) UpdateTrust(ctx context.Context, userID string, delta float64, reason string) (UpdateResult, error) {
	old, cur, err := e.applyDelta(ctx, userID, delta, reason)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("apply trust delta: %w", err)
	}

	achieved := e.evaluateMilestones(ctx, userID, cur)

	bonusApplied := false
	for _, m := range achieved {
		if bonus := BonusFor(m.ID); bonus > 0 {
			_, cur, err = e.applyDelta(ctx, userID, bonus, "Milestone bonus: "+m.Name)
			if err != nil {
				log.Printf("[Progression] Bonus apply failed | user=%s milestone=%s: %v", userID, m.ID, err)
				continue
			}
			bonusApplied = true
		}
	}

	if bonusApplied {
		// A bonus can cross another threshold; check once more.
		more := e.evaluateMilestones(ctx, userID, cur)
		for _, m := range more {
			if bonus := BonusFor(m.ID); bonus > 0 {
				if _, next, err := e.applyDelta(ctx, userID, bonus, "Milestone bonus: "+m.Name); err == nil {
					cur = next
				}
			}
		}
		achieved = append(achieved, more...)
	}

	oldStage := StageFor(e.stages, old)
	newStage := StageFor(e.stages, cur)
	result := UpdateResult{
		NewTrust:           cur,
		StageChanged:       oldStage.Name != newStage.Name,
		OldStage:           oldStage.Name,
		NewStage:           newStage.Name,
		MilestonesAchieved: achieved,
	}
	if result.StageChanged {
		log.Printf("[Progression] Stage change | user=%s %s -> %s trust=%.1f", userID, oldStage.Name, newStage.Name, cur)
	}
	return result, nil
}

// applyDelta is the single mutation path: clamp to [0,100] and append the
// progression record.
func (e *Engine) applyDelta(ctx context.Context, userID string, delta float64, reason string) (float64, float64, error) {
	old, cur, err := e.store.UpdateTrust(ctx, userID, func(current float64) float64 {
		return clampTrust(current + delta)
	})
	if err != nil {
		return 0, 0, err
	}

	eventType := "trust_gained"
	magnitude := delta
	if delta < 0 {
		eventType = "trust_lost"
		magnitude = -delta
	}
	e.appendEvent(ctx, userID, eventType, map[string]any{
		"amount":    magnitude,
		"reason":    reason,
		"old_trust": old,
		"new_trust": cur,
	})
	return old, cur, nil
}

// evaluateMilestones marks and returns milestones newly achieved at the
// given trust level. Store failures skip the milestone and are logged;
// evaluation never fails the trust update.
func (e *Engine) evaluateMilestones(ctx context.Context, userID string, trust float64) []Milestone {
	done, err := e.store.Achieved(ctx, userID)
	if err != nil {
		log.Printf("[Progression] Achieved lookup failed | user=%s: %v", userID, err)
		return nil
	}

	var achieved []Milestone
	now := e.now()
	for _, m := range e.milestones {
		if m.TrustRequired > trust {
			continue
		}
		if _, ok := done[m.ID]; ok {
			continue
		}
		met, err := e.criteriaMet(ctx, userID, m, trust, now)
		if err != nil {
			log.Printf("[Progression] Criteria check failed | user=%s milestone=%s: %v", userID, m.ID, err)
			continue
		}
		if !met {
			continue
		}
		newly, err := e.store.MarkAchieved(ctx, userID, m.ID, now)
		if err != nil {
			log.Printf("[Progression] Mark achieved failed | user=%s milestone=%s: %v", userID, m.ID, err)
			continue
		}
		if !newly {
			continue
		}
		e.appendEvent(ctx, userID, "milestone_achieved", map[string]any{
			"milestone_id":   m.ID,
			"milestone_name": m.Name,
			"trust":          trust,
		})
		e.safeNotify(userID, m)
		achieved = append(achieved, m)
	}
	return achieved
}

func (e *Engine) criteriaMet(ctx context.Context, userID string, m Milestone, trust float64, now time.Time) (bool, error) {
	switch m.Type {
	case MilestoneAutomatic:
		if m.Criteria.MessageCount > 0 {
			count, err := e.store.MessageCount(ctx, userID)
			if err != nil {
				return false, err
			}
			return count >= m.Criteria.MessageCount, nil
		}
		if m.Criteria.TrustThreshold > 0 {
			return trust >= m.Criteria.TrustThreshold, nil
		}
		return trust >= m.TrustRequired, nil
	case MilestoneTimeBased:
		if e.userCreatedAt == nil {
			return false, nil
		}
		created, ok := e.userCreatedAt(ctx, userID)
		if !ok {
			return false, nil
		}
		days := int(now.Sub(created).Hours() / 24)
		return days >= m.Criteria.DaysActive, nil
	case MilestoneEventBased:
		return e.store.HasExternalEventSince(ctx, userID, m.Criteria.EventName, now.Add(-e.lookback))
	default:
		return false, nil
	}
}

func (e *Engine) appendEvent(ctx context.Context, userID, eventType string, metadata map[string]any) {
	if e.events == nil {
		return
	}
	if err := e.events.Append(ctx, userID, eventType, metadata); err != nil {
		log.Printf("[Progression] Event append failed | user=%s type=%s: %v", userID, eventType, err)
	}
}

func (e *Engine) safeNotify(userID string, m Milestone) {
	if e.notify == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Progression] Notify panic | user=%s milestone=%s: %v", userID, m.ID, r)
		}
	}()
	e.notify(userID, m)
}

func clampTrust(v float64) float64 {
	if v < trustMin {
		return trustMin
	}
	if v > trustMax {
		return trustMax
	}
	return v
}

// CalculateTrustChange computes the trust delta for one conversational
// turn. The result is non-negative and capped at 2.0; negative deltas
// (decay, violations) come from separate paths.
func CalculateTrustChange(sentiment SentimentSignal, responseQuality float64, tctx TurnContext, currentTrust float64) float64 {
	delta := 0.1 + responseQuality*0.4

	if sentiment.EmotionalIntensity > 7 {
		delta += 0.3
	} else if sentiment.EmotionalIntensity > 5 {
		delta += 0.2
	}

	if tctx.IsVulnerable {
		delta += 0.5
	}
	if tctx.IsCrisis {
		delta += 0.4
	}
	if tctx.IsCelebration {
		delta += 0.3
	}
	if tctx.IsPersonalShare {
		delta += 0.2
	}

	// Diminishing returns as the relationship deepens.
	switch {
	case currentTrust > 80:
		delta *= 0.5
	case currentTrust > 60:
		delta *= 0.7
	case currentTrust > 40:
		delta *= 0.85
	}

	if delta < 0 {
		delta = 0
	}
	if delta > maxTrustGainPerTurn {
		delta = maxTrustGainPerTurn
	}
	return delta
}

// InactivityDecay returns the (negative) trust delta for a stretch of
// inactive days. Decay starts after a 3-day grace period at half a point
// per day, capped at 10 points per application.
func InactivityDecay(daysInactive int) float64 {
	if daysInactive <= 3 {
		return 0
	}
	decay := float64(daysInactive-3) * 0.5
	if decay > 10 {
		decay = 10
	}
	return -decay
}
