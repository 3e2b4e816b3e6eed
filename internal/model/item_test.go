package model

import (
	"testing"

	"pgregory.net/rapid"
)

var allItemStatuses = []string{ItemStatusAvailable, ItemStatusReserved, ItemStatusSwapped, ItemStatusRemoved}

func TestCanTransitionItem(t *testing.T) {
	tests := []struct {
		from, to string
		expected bool
	}{
		{ItemStatusAvailable, ItemStatusReserved, true},
		{ItemStatusAvailable, ItemStatusSwapped, true},
		{ItemStatusAvailable, ItemStatusRemoved, true},
		{ItemStatusReserved, ItemStatusSwapped, true},
		{ItemStatusReserved, ItemStatusAvailable, true},
		{ItemStatusReserved, ItemStatusRemoved, false},
		{ItemStatusRemoved, ItemStatusAvailable, false},
		{ItemStatusSwapped, ItemStatusAvailable, false},
		{ItemStatusSwapped, ItemStatusReserved, false},
		{ItemStatusAvailable, ItemStatusAvailable, false},
		{"", ItemStatusAvailable, false},
		{ItemStatusAvailable, "SOLD", false},
	}

	for _, tt := range tests {
		got := CanTransitionItem(tt.from, tt.to)
		if got != tt.expected {
			t.Errorf("CanTransitionItem(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}
}

// Walking the transition table from AVAILABLE never leaves a terminal status.
func TestTerminalStatusesStayTerminal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := ItemStatusAvailable
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			next := rapid.SampledFrom(allItemStatuses).Draw(rt, "next")
			if !CanTransitionItem(status, next) {
				continue
			}
			if status == ItemStatusSwapped || status == ItemStatusRemoved {
				rt.Fatalf("left terminal status %s for %s", status, next)
			}
			status = next
		}
		if !ValidItemStatus(status) {
			rt.Fatalf("reached unknown status %q", status)
		}
	})
}

func TestValidCondition(t *testing.T) {
	for _, c := range []string{ConditionNew, ConditionGood, ConditionFair, ConditionPoor} {
		if !ValidCondition(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	for _, c := range []string{"", "new", "BROKEN"} {
		if ValidCondition(c) {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}
