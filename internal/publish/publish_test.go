package publish

import (
	"errors"
	"testing"
)

func TestStateOf(t *testing.T) {
	tests := []struct {
		hasDoc, published bool
		want              State
	}{
		{false, false, Draft},
		{false, true, Draft},
		{true, false, Generated},
		{true, true, Published},
	}
	for _, tt := range tests {
		if got := StateOf(tt.hasDoc, tt.published); got != tt.want {
			t.Errorf("StateOf(%v, %v) = %s, want %s", tt.hasDoc, tt.published, got, tt.want)
		}
	}
}

func TestPublishGuard(t *testing.T) {
	if _, err := Publish(Draft); !errors.Is(err, ErrGuardViolation) {
		t.Errorf("Publish(Draft) error = %v, want ErrGuardViolation", err)
	}
	for _, s := range []State{Generated, Published} {
		got, err := Publish(s)
		if err != nil || got != Published {
			t.Errorf("Publish(%s) = %s, %v", s, got, err)
		}
	}
}

func TestUnpublishAlwaysAllowed(t *testing.T) {
	want := map[State]State{Draft: Draft, Generated: Generated, Published: Generated}
	for from, to := range want {
		if got := Unpublish(from); got != to {
			t.Errorf("Unpublish(%s) = %s, want %s", from, got, to)
		}
	}
}

func TestGenerate(t *testing.T) {
	want := map[State]State{Draft: Generated, Generated: Generated, Published: Published}
	for from, to := range want {
		if got := Generate(from); got != to {
			t.Errorf("Generate(%s) = %s, want %s", from, got, to)
		}
	}
}
