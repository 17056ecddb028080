package entity

// Queue actions that move a token between lifecycle states.
const (
	ActionCallNext = "call_next"
	ActionComplete = "complete"
	ActionMiss     = "miss"
	ActionRequeue  = "requeue"
)

var transitionMap = map[string][]TokenStatus{
	ActionCallNext: {TokenStatusWaiting},
	ActionComplete: {TokenStatusCalled},
	ActionMiss:     {TokenStatusCalled},
	ActionRequeue:  {TokenStatusCompleted},
}

// ValidTransition reports whether action may be applied to a token currently
// in fromStatus. Calling and completing are deliberately separate actions, so
// a second call_next while a token is already called is never valid.
func ValidTransition(action string, fromStatus TokenStatus) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
