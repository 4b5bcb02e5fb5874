package domain

import (
	"fmt"
	"time"
)

// FormatError reports a source file whose layout could not be understood,
// typically because no header line was found. It is fatal to loading that one
// variable but must never crash the process.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed time-series file %s: %s", e.Path, e.Reason)
}

// InvalidRangeError reports a range query whose start date falls after its end date.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// InvalidInputError reports caller-supplied statistics input that cannot be
// computed over: a non-finite threshold, an unknown variable id, or a sample
// element without a numeric value. These are never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid risk input: " + e.Reason
}
