package companionsdk

import "strings"

// ──────────────────────────────────────────────
// Crisis Detector — deterministic keyword/pattern scoring
// ──────────────────────────────────────────────

const (
	severityHighTier     = 8
	severityModerateTier = 5
	severityLowTier      = 3
	severityMax          = 10

	// Threshold at which a crisis type is assigned and immediacy
	// language escalates the score.
	severityTypeThreshold = 5
)

// CrisisDetector scores free text against a tiered phrase catalog.
// Detection is pure and total: no I/O, no randomness, never fails.
//
// Usage:
//
//	detector := companionsdk.NewCrisisDetector(nil)
//	ind := detector.Detect("I can't take it anymore", &companionsdk.SentimentContext{EmotionalIntensity: 9})
//	if ind.Severity >= 8 {
//	    // escalate
//	}
type CrisisDetector struct {
	catalog *PatternCatalog
}

// NewCrisisDetector creates a detector. Pass nil to use the built-in catalog.
func NewCrisisDetector(catalog *PatternCatalog) *CrisisDetector {
	if catalog == nil {
		catalog = DefaultPatternCatalog()
	}
	return &CrisisDetector{catalog: catalog}
}

// Detect scores one message. sctx is the optional external sentiment signal
// and may be nil.
//
// Severity only ever rises within a single evaluation; urgency never
// downgrades. An empty or benign message yields the zero indicators
// (severity 0, type unknown, confidence 0).
func (d *CrisisDetector) Detect(message string, sctx *SentimentContext) CrisisIndicators {
	ind := CrisisIndicators{
		Type:     CrisisUnknown,
		Urgency:  UrgencyLow,
		Keywords: []string{},
	}

	lower := strings.ToLower(message)
	if strings.TrimSpace(lower) == "" {
		return ind
	}

	for _, crisisType := range d.catalog.Types {
		tiers, ok := d.catalog.Phrases[crisisType]
		if !ok {
			continue
		}
		d.scanTier(&ind, lower, crisisType, tiers.High, severityHighTier, UrgencyImmediate)
		d.scanTier(&ind, lower, crisisType, tiers.Moderate, severityModerateTier, UrgencyHigh)
		d.scanTier(&ind, lower, crisisType, tiers.Low, severityLowTier, UrgencyModerate)
	}

	// External emotional intensity nudges severity up by one.
	if sctx != nil && sctx.EmotionalIntensity > 8 && ind.Severity < severityMax {
		ind.Severity++
	}

	// Immediacy language only escalates an already-serious message.
	if ind.Severity >= severityTypeThreshold && d.containsImmediacy(lower) {
		ind.Urgency = UrgencyImmediate
		ind.Severity += 2
		if ind.Severity > severityMax {
			ind.Severity = severityMax
		}
	}

	if len(ind.Keywords) > 0 {
		ind.Confidence = float64(len(ind.Keywords))*0.2 + float64(ind.Severity)/20
		if ind.Confidence > 1 {
			ind.Confidence = 1
		}
	}

	return ind
}

func (d *CrisisDetector) scanTier(ind *CrisisIndicators, lower string, crisisType CrisisType, phrases []string, tierSeverity int, tierUrgency Urgency) {
	for _, phrase := range phrases {
		if !strings.Contains(lower, phrase) {
			continue
		}
		ind.Keywords = append(ind.Keywords, phrase)
		if tierSeverity > ind.Severity {
			ind.Severity = tierSeverity
		}
		ind.Urgency = maxUrgency(ind.Urgency, tierUrgency)
		if ind.Severity >= severityTypeThreshold {
			ind.Type = crisisType
		}
	}
}

func (d *CrisisDetector) containsImmediacy(lower string) bool {
	for _, phrase := range d.catalog.Immediacy {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
