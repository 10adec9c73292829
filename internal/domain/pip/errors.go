package pip

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeRequired = errors.New("employee id is required")
	ErrUnknownState     = errors.New("unknown plan state")
	ErrAlreadyOnPip     = errors.New("employee already has an active improvement plan")
	ErrPlanNotFound     = errors.New("improvement plan not found")
)

// TransitionError reports a rejected lifecycle transition. Callers surface
// it as a conflict; the mutation it guarded must not be applied.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal plan transition %s -> %s", e.From, e.To)
}
