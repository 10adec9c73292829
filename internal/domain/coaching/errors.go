package coaching

import "errors"

var (
	ErrEmployeeRequired   = errors.New("employee id is required")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeTerminated = errors.New("employee is terminated")
	ErrScoreOutOfRange    = errors.New("score must be between 0 and 100")
)
