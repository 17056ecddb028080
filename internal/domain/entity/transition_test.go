package entity

import "testing"

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name   string
		action string
		from   TokenStatus
		want   bool
	}{
		{"call next from waiting", ActionCallNext, TokenStatusWaiting, true},
		{"call next from called", ActionCallNext, TokenStatusCalled, false},
		{"call next from completed", ActionCallNext, TokenStatusCompleted, false},
		{"call next from missed", ActionCallNext, TokenStatusMissed, false},
		{"complete from called", ActionComplete, TokenStatusCalled, true},
		{"complete from waiting", ActionComplete, TokenStatusWaiting, false},
		{"complete from completed", ActionComplete, TokenStatusCompleted, false},
		{"miss from called", ActionMiss, TokenStatusCalled, true},
		{"miss from waiting", ActionMiss, TokenStatusWaiting, false},
		{"requeue from completed", ActionRequeue, TokenStatusCompleted, true},
		{"requeue from waiting", ActionRequeue, TokenStatusWaiting, false},
		{"requeue from missed", ActionRequeue, TokenStatusMissed, false},
		{"unknown action", "promote", TokenStatusWaiting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTransition(tt.action, tt.from); got != tt.want {
				t.Errorf("ValidTransition(%q, %q) = %v, want %v", tt.action, tt.from, got, tt.want)
			}
		})
	}
}

func TestDisplayCode(t *testing.T) {
	tests := []struct {
		prefix string
		number int
		want   string
	}{
		{"GEN", 1, "GEN-001"},
		{"CAR", 42, "CAR-042"},
		{"PED", 123, "PED-123"},
		{"NEU", 1000, "NEU-1000"},
	}

	for _, tt := range tests {
		if got := DisplayCode(tt.prefix, tt.number); got != tt.want {
			t.Errorf("DisplayCode(%q, %d) = %q, want %q", tt.prefix, tt.number, got, tt.want)
		}
	}
}
