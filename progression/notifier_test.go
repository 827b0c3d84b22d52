package progression

import (
	"errors"
	"testing"
)

func TestMilestoneNotifier_SendsAndDedups(t *testing.T) {
	var delivered []string
	n := NewMilestoneNotifier(func(userID, text string) error {
		delivered = append(delivered, userID+": "+text)
		return nil
	}, nil)

	m := Milestone{ID: "warming_up", Name: "Warming Up"}
	n.Notify("u1", m)
	n.Notify("u1", m) // same day, suppressed
	n.Notify("u2", m) // different user, delivered

	if len(delivered) != 2 {
		t.Fatalf("expected 2 deliveries, got %d: %v", len(delivered), delivered)
	}
}

func TestMilestoneNotifier_UnknownMilestoneSkipped(t *testing.T) {
	calls := 0
	n := NewMilestoneNotifier(func(userID, text string) error {
		calls++
		return nil
	}, nil)

	n.Notify("u1", Milestone{ID: "not_a_milestone"})
	if calls != 0 {
		t.Fatal("unknown milestone must not send")
	}
}

func TestMilestoneNotifier_SendErrorTolerated(t *testing.T) {
	n := NewMilestoneNotifier(func(userID, text string) error {
		return errors.New("channel down")
	}, nil)
	// Must not panic or propagate.
	n.Notify("u1", Milestone{ID: "soulbound"})
}

func TestMilestoneNotifier_CustomMessages(t *testing.T) {
	var got string
	n := NewMilestoneNotifier(func(userID, text string) error {
		got = text
		return nil
	}, map[string]string{"warming_up": "custom text"})

	n.Notify("u1", Milestone{ID: "warming_up"})
	if got != "custom text" {
		t.Fatalf("expected custom message, got %q", got)
	}
}
