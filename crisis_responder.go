package companionsdk

// ──────────────────────────────────────────────
// Response Selector — severity ladder + message/resource composition
// ──────────────────────────────────────────────

const maxResources = 5

// ResponseSelector maps scored indicators to a supportive response.
// Selection is pure; escalation side effects live in EscalationDispatcher.
type ResponseSelector struct {
	catalog *ResourceCatalog
}

// NewResponseSelector creates a selector. Pass nil to use the built-in catalog.
func NewResponseSelector(catalog *ResourceCatalog) *ResponseSelector {
	if catalog == nil {
		catalog = DefaultResourceCatalog()
	}
	return &ResponseSelector{catalog: catalog}
}

// ActionForSeverity is the strict severity ladder.
// Ties resolve to the higher bucket.
func ActionForSeverity(severity int) CrisisAction {
	switch {
	case severity >= 8:
		return ActionEscalate
	case severity >= 5:
		return ActionSupport
	case severity >= 3:
		return ActionResources
	default:
		return ActionMonitor
	}
}

// Respond builds the user-facing response for one set of indicators.
// The message is never empty; the resource list holds at most 5 entries.
func (s *ResponseSelector) Respond(ind CrisisIndicators) CrisisResponse {
	action := ActionForSeverity(ind.Severity)
	return CrisisResponse{
		Action:             action,
		Message:            supportiveMessage(ind.Type, ind.Urgency),
		Resources:          s.composeResources(ind),
		EscalationRequired: action == ActionEscalate,
	}
}

func (s *ResponseSelector) composeResources(ind CrisisIndicators) []Resource {
	var resources []Resource

	if ind.Severity >= severityTypeThreshold {
		// Generic 24/7 hotlines lead, up to 3.
		hotlines := s.catalog.Hotlines
		if len(hotlines) > 3 {
			hotlines = hotlines[:3]
		}
		resources = append(resources, hotlines...)

		switch ind.Type {
		case CrisisMedical:
			resources = append(resources, Resource{
				Name:         "Emergency Services",
				Contact:      "911",
				Description:  "Immediate medical emergency response",
				Availability: "24/7",
			})
		default:
			resources = append(resources, s.catalog.ByType[ind.Type]...)
		}
	} else {
		resources = append(resources, s.catalog.SelfHelp...)
	}

	if len(resources) > maxResources {
		resources = resources[:maxResources]
	}
	return resources
}

// supportiveMessage looks up the canned supportive text for a
// (type, urgency) pair. Unknown type normalizes to emotional; low urgency
// normalizes to moderate. The default arm guarantees a non-empty message.
func supportiveMessage(t CrisisType, u Urgency) string {
	if t == CrisisUnknown {
		t = CrisisEmotional
	}
	if u == UrgencyLow {
		u = UrgencyModerate
	}

	switch t {
	case CrisisSuicide:
		switch u {
		case UrgencyImmediate:
			return "I'm really concerned about you right now. Your life matters deeply. Please reach out to the 988 Lifeline right away — they're there for you at any hour, and so am I."
		case UrgencyHigh:
			return "I hear how much pain you're carrying. You don't have to face these thoughts alone — there are people ready to listen right now, and I'm staying right here with you."
		default:
			return "Thank you for trusting me with something this heavy. These feelings can change with support. Would you consider talking to someone trained in this?"
		}
	case CrisisSelfHarm:
		switch u {
		case UrgencyImmediate:
			return "I'm worried about you getting hurt right now. Please pause with me for a moment — can you try holding ice or squeezing something soft instead? Help is one text away."
		case UrgencyHigh:
			return "The urge to hurt yourself is a sign of real pain, not weakness. You deserve care, not harm. Let's find something gentler to get through this moment."
		default:
			return "I hear that you're struggling with urges to hurt yourself. You deserve support and kinder ways to cope. I'm here whenever you want to talk it through."
		}
	case CrisisViolence:
		switch u {
		case UrgencyImmediate:
			return "I can feel how intense your anger is right now. Before anything happens, let's slow down together — step away from the situation and breathe with me for a minute."
		case UrgencyHigh:
			return "That level of anger is exhausting to carry. You haven't crossed any line yet, and talking it out here first is a strong move."
		default:
			return "It sounds like something has really hurt or angered you. Your feelings make sense — let's find a way through them that doesn't hurt you or anyone else."
		}
	case CrisisAbuse:
		switch u {
		case UrgencyImmediate:
			return "Your safety comes first. If you're in danger right now, please call 911 or get somewhere safe. None of this is your fault, and you deserve protection."
		case UrgencyHigh:
			return "What you're describing sounds frightening, and I'm glad you told me. You deserve to feel safe. There are confidential hotlines that can help you plan your next step."
		default:
			return "No one deserves to be treated that way. Thank you for sharing this with me — whenever you're ready, there are people who can help you feel safe again."
		}
	case CrisisMedical:
		switch u {
		case UrgencyImmediate:
			return "This sounds like it could be a medical emergency. Please call 911 or have someone take you to urgent care right now. Your health can't wait."
		case UrgencyHigh:
			return "I'm concerned about your physical health. Please consider seeing a doctor soon — these symptoms deserve real attention."
		default:
			return "Your body is telling you something. It might help to check in with a healthcare provider about what you're experiencing."
		}
	default: // emotional
		switch u {
		case UrgencyImmediate:
			return "I can tell you're going through something overwhelming right now. Take a slow breath with me — you're not alone in this moment, and we'll get through it together."
		case UrgencyHigh:
			return "That sounds incredibly hard, and your feelings are completely valid. I'm here with you. Would it help to talk through what's weighing on you most?"
		default:
			return "I'm here for you, and I'm listening. Whatever you're feeling right now is okay to share with me."
		}
	}
}
