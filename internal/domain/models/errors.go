package models

import "fmt"

// InsufficientDataError signals that a statistical operation's minimum sample
// threshold was not met. Callers widen the window or defer; never retried here.
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("%s: insufficient data: need %d points, got %d", e.Op, e.Need, e.Got)
	}
	return fmt.Sprintf("%s: insufficient data", e.Op)
}

// NoDataError signals that a required input set is entirely empty for the
// requested scope.
type NoDataError struct {
	Op    string
	Scope string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("%s: no data for %s", e.Op, e.Scope)
}
