package pip

// transitions is the complete legal transition table. A state missing from
// a from-set is unreachable from there; terminal states have empty sets.
var transitions = map[string]map[string]bool{
	StatusProposed: {
		StatusActive: true,
		StatusClosed: true,
	},
	StatusActive: {
		StatusExtended:         true,
		StatusClosed:           true,
		StatusOffboardingDraft: true,
		StatusTerminated:       true,
		StatusCompleted:        true,
	},
	StatusExtended: {
		StatusClosed:           true,
		StatusOffboardingDraft: true,
		StatusTerminated:       true,
		StatusCompleted:        true,
	},
	StatusOffboardingDraft: {
		StatusTerminated: true,
		StatusHold:       true,
	},
	StatusClosed:     {},
	StatusTerminated: {},
	StatusHold:       {},
	StatusCompleted:  {},
}

// States lists every lifecycle state, useful for exhaustive checks.
var States = []string{
	StatusProposed,
	StatusActive,
	StatusExtended,
	StatusClosed,
	StatusOffboardingDraft,
	StatusTerminated,
	StatusHold,
	StatusCompleted,
}

// AssertTransition validates a requested state change. It has no side
// effects; every caller that persists a plan status change must call it
// first and must not write on failure.
func AssertTransition(from, to string) error {
	allowed, known := transitions[from]
	if !known {
		return ErrUnknownState
	}
	if _, known := transitions[to]; !known {
		return ErrUnknownState
	}
	if !allowed[to] {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal reports whether a plan in this state can never change again.
func IsTerminal(state string) bool {
	allowed, known := transitions[state]
	return known && len(allowed) == 0
}
