package store

import "fmt"

// QueryState selects which reservations a listing query returns. The
// temporal states (CURRENT/PAST/FUTURE) classify against the evaluation
// instant passed to the query; WAITING/REJECTED filter on status alone.
type QueryState string

const (
	StateAll      QueryState = "ALL"
	StateCurrent  QueryState = "CURRENT"
	StatePast     QueryState = "PAST"
	StateFuture   QueryState = "FUTURE"
	StateWaiting  QueryState = "WAITING"
	StateRejected QueryState = "REJECTED"
)

// ParseQueryState validates a state token from the wire.
func ParseQueryState(s string) (QueryState, error) {
	switch st := QueryState(s); st {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return st, nil
	}
	return "", fmt.Errorf("Unknown state: UNSUPPORTED_STATUS")
}

// Page is an offset-based listing window.
type Page struct {
	From int
	Size int
}

// Offset snaps the raw offset to the containing page boundary
// (page = from / size), matching the wire contract clients rely on.
func (p Page) Offset() int {
	return (p.From / p.Size) * p.Size
}
