package companionsdk

import (
	"strings"
	"testing"
)

func TestActionForSeverity_Ladder(t *testing.T) {
	expected := map[int]CrisisAction{
		0: ActionMonitor, 1: ActionMonitor, 2: ActionMonitor,
		3: ActionResources, 4: ActionResources,
		5: ActionSupport, 6: ActionSupport, 7: ActionSupport,
		8: ActionEscalate, 9: ActionEscalate, 10: ActionEscalate,
	}
	for severity, want := range expected {
		if got := ActionForSeverity(severity); got != want {
			t.Fatalf("severity %d: expected %s, got %s", severity, want, got)
		}
	}
}

func TestRespond_SevereSuicide(t *testing.T) {
	s := NewResponseSelector(nil)
	resp := s.Respond(CrisisIndicators{
		Severity: 10, Type: CrisisSuicide, Urgency: UrgencyImmediate, Confidence: 0.9,
	})

	if resp.Action != ActionEscalate || !resp.EscalationRequired {
		t.Fatalf("expected escalate, got %s", resp.Action)
	}
	if resp.Message == "" {
		t.Fatal("expected non-empty message")
	}

	foundHotline := false
	for _, r := range resp.Resources {
		if strings.Contains(r.Name, "988") {
			foundHotline = true
		}
	}
	if !foundHotline {
		t.Fatalf("expected a suicide hotline in resources, got %+v", resp.Resources)
	}
}

func TestRespond_MedicalSynthesizesEmergency(t *testing.T) {
	s := NewResponseSelector(nil)
	resp := s.Respond(CrisisIndicators{Severity: 8, Type: CrisisMedical, Urgency: UrgencyImmediate})

	found := false
	for _, r := range resp.Resources {
		if r.Contact == "911" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 911 entry for medical crisis, got %+v", resp.Resources)
	}
}

func TestRespond_LowSeverityGetsSelfHelp(t *testing.T) {
	s := NewResponseSelector(nil)
	resp := s.Respond(CrisisIndicators{Severity: 3, Type: CrisisUnknown, Urgency: UrgencyModerate})

	if resp.Action != ActionResources {
		t.Fatalf("expected resources action, got %s", resp.Action)
	}
	if len(resp.Resources) == 0 {
		t.Fatal("expected self-help resources")
	}
	for _, r := range resp.Resources {
		if r.Availability == "24/7" {
			t.Fatalf("expected no hotlines below severity 5, got %+v", r)
		}
	}
}

func TestRespond_ResourceBound(t *testing.T) {
	s := NewResponseSelector(nil)
	types := []CrisisType{
		CrisisSuicide, CrisisSelfHarm, CrisisViolence,
		CrisisAbuse, CrisisMedical, CrisisEmotional, CrisisUnknown,
	}
	for _, ct := range types {
		for severity := 0; severity <= 10; severity++ {
			resp := s.Respond(CrisisIndicators{Severity: severity, Type: ct, Urgency: UrgencyHigh})
			if len(resp.Resources) > 5 {
				t.Fatalf("type=%s severity=%d: %d resources exceeds bound", ct, severity, len(resp.Resources))
			}
		}
	}
}

func TestRespond_HotlinesLeadForSevereCases(t *testing.T) {
	s := NewResponseSelector(nil)
	resp := s.Respond(CrisisIndicators{Severity: 8, Type: CrisisSelfHarm, Urgency: UrgencyHigh})

	if len(resp.Resources) < 4 {
		t.Fatalf("expected hotlines plus type-specific entries, got %d", len(resp.Resources))
	}
	// Generic hotlines come first, type-specific entries after.
	if resp.Resources[0].Availability != "24/7" {
		t.Fatalf("expected a 24/7 hotline first, got %+v", resp.Resources[0])
	}
}

func TestSupportiveMessage_NeverEmpty(t *testing.T) {
	types := []CrisisType{
		CrisisSuicide, CrisisSelfHarm, CrisisViolence, CrisisAbuse,
		CrisisMedical, CrisisEmotional, CrisisUnknown, CrisisType("custom"),
	}
	urgencies := []Urgency{UrgencyImmediate, UrgencyHigh, UrgencyModerate, UrgencyLow, Urgency("odd")}
	for _, ct := range types {
		for _, u := range urgencies {
			if msg := supportiveMessage(ct, u); msg == "" {
				t.Fatalf("empty message for type=%s urgency=%s", ct, u)
			}
		}
	}
}
