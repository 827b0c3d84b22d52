package companionsdk

import (
	"context"
	"log"
	"time"

	"github.com/soulmesh-ai/companion-sdk-go/progression"
)

// ──────────────────────────────────────────────
// Turn Processor — per-message pipeline
// ──────────────────────────────────────────────

// ResourceSender delivers a follow-up resource summary to a user.
// Best-effort and independent of the main response; panics are contained.
type ResourceSender func(ctx context.Context, userID string, resources []Resource) error

// TurnInput is one inbound conversational turn.
type TurnInput struct {
	UserID    string
	Message   string
	Sentiment *SentimentContext // optional external sentiment signal

	// ResponseQuality (0-1) rates the companion's reply for trust scoring.
	ResponseQuality float64
	// Context flags feed trust scoring; IsCrisis is forced on when the
	// detector scores the message as a crisis.
	Context progression.TurnContext

	// SendResources requests a follow-up resource summary when the
	// response carries resources.
	SendResources bool
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Indicators CrisisIndicators
	Response   CrisisResponse
	Trust      *progression.UpdateResult
}

// TurnProcessor wires the crisis pipeline and trust progression into one
// per-message flow: detect, respond, escalate if needed, log, update trust.
//
// The supportive response always comes back: every side effect is
// best-effort and failures are logged, never propagated.
//
// Usage:
//
//	proc := &companionsdk.TurnProcessor{
//	    Detector: companionsdk.NewCrisisDetector(nil),
//	    Selector: companionsdk.NewResponseSelector(nil),
//	}
//	result := proc.ProcessTurn(ctx, companionsdk.TurnInput{UserID: "u1", Message: text})
//	reply := result.Response.Message
type TurnProcessor struct {
	Detector   *CrisisDetector
	Selector   *ResponseSelector
	Dispatcher *EscalationDispatcher // optional
	Activity   ActivityStore         // optional
	Trust      *progression.Engine   // optional
	Resources  ResourceSender        // optional
}

// ProcessTurn runs the pipeline for one message. It never fails: the
// returned response is always populated with at least a supportive
// message, whatever happens in the side-effect paths.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, input TurnInput) TurnResult {
	indicators := p.Detector.Detect(input.Message, input.Sentiment)
	response := p.Selector.Respond(indicators)

	if response.EscalationRequired && p.Dispatcher != nil {
		outcome := p.Dispatcher.Escalate(ctx, EscalationJob{
			UserID:     input.UserID,
			Indicators: indicators,
			Excerpt:    excerpt(input.Message, 140),
		})
		response.NotificationsSent = outcome.Notified
	}

	if indicators.Severity > 0 {
		p.logCrisisEvent(ctx, input.UserID, indicators, response)
	}

	if input.SendResources && len(response.Resources) > 0 && p.Resources != nil {
		go p.sendResources(input.UserID, response.Resources)
	}

	result := TurnResult{Indicators: indicators, Response: response}
	if p.Trust != nil {
		result.Trust = p.updateTrust(ctx, input, indicators)
	}
	return result
}

func (p *TurnProcessor) updateTrust(ctx context.Context, input TurnInput, indicators CrisisIndicators) *progression.UpdateResult {
	if err := p.Trust.NoteMessage(ctx, input.UserID); err != nil {
		log.Printf("[Turn] Message count update failed | user=%s: %v", input.UserID, err)
	}

	current, err := p.Trust.Trust(ctx, input.UserID)
	if err != nil {
		log.Printf("[Turn] Trust read failed | user=%s: %v", input.UserID, err)
		return nil
	}

	tctx := input.Context
	if indicators.Severity >= severityTypeThreshold {
		tctx.IsCrisis = true
	}

	var signal progression.SentimentSignal
	if input.Sentiment != nil {
		signal.EmotionalIntensity = input.Sentiment.EmotionalIntensity
	}

	delta := progression.CalculateTrustChange(signal, input.ResponseQuality, tctx, current)
	update, err := p.Trust.UpdateTrust(ctx, input.UserID, delta, "Conversation turn")
	if err != nil {
		log.Printf("[Turn] Trust update failed | user=%s: %v", input.UserID, err)
		return nil
	}
	return &update
}

func (p *TurnProcessor) logCrisisEvent(ctx context.Context, userID string, indicators CrisisIndicators, response CrisisResponse) {
	if p.Activity == nil {
		return
	}
	err := p.Activity.Append(ctx, &ActivityEvent{
		UserID:    userID,
		Type:      EventCrisis,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"severity":       indicators.Severity,
			"type":           string(indicators.Type),
			"confidence":     indicators.Confidence,
			"keywords":       indicators.Keywords,
			"urgency":        string(indicators.Urgency),
			"action":         string(response.Action),
			"resource_count": len(response.Resources),
			"escalated":      response.EscalationRequired,
		},
	})
	if err != nil {
		log.Printf("[Turn] Crisis event log failed | user=%s: %v", userID, err)
	}
}

func (p *TurnProcessor) sendResources(userID string, resources []Resource) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Turn] Resource sender panic | user=%s: %v", userID, r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Resources(ctx, userID, resources); err != nil {
		log.Printf("[Turn] Resource follow-up failed | user=%s: %v", userID, err)
	}
}

// ActivityEventSink adapts an ActivityStore to the progression.EventSink
// interface so trust records land in the same append-only trail.
type ActivityEventSink struct {
	Store ActivityStore
}

func (s *ActivityEventSink) Append(ctx context.Context, userID, eventType string, metadata map[string]any) error {
	return s.Store.Append(ctx, &ActivityEvent{
		UserID:    userID,
		Type:      eventType,
		Metadata:  metadata,
		Timestamp: time.Now(),
	})
}

func excerpt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
