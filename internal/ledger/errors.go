package ledger

import "errors"

var (
	// ErrUnknownField is returned by UpdateEventField for a field name it
	// does not know.
	ErrUnknownField = errors.New("unknown event field")
	// ErrOutOfOrder reports that a day's event times are not in completion
	// order. The offending value is kept.
	ErrOutOfOrder = errors.New("time order error: enter events in completion order")
)
