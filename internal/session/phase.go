package session

// Phase is the lifecycle state of a session.
type Phase int

const (
	// PhaseIdle means no target text has been requested yet.
	PhaseIdle Phase = iota
	// PhaseGenerating waits for the text provider.
	PhaseGenerating
	// PhaseArmed holds a target; the first typed character starts the clock.
	PhaseArmed
	// PhaseRunning accumulates the tally.
	PhaseRunning
	// PhaseFinished freezes the tally and result.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGenerating:
		return "generating"
	case PhaseArmed:
		return "armed"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// AcceptsInput reports whether ApplyInput has any effect in this phase.
func (p Phase) AcceptsInput() bool {
	return p == PhaseArmed || p == PhaseRunning
}
