package cleaning

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyInput is returned when there are no rows to clean.
var ErrEmptyInput = errors.New("cleaning: empty input")

// AllColumnsMissingError reports a required column that has no usable value
// after type normalization, which leaves quartiles undefined.
type AllColumnsMissingError struct {
	Column Column
}

func (e *AllColumnsMissingError) Error() string {
	return fmt.Sprintf("cleaning: column %q has no usable values", e.Column)
}

// OrderError reports input rows that are not strictly increasing by date.
type OrderError struct {
	Row  int
	Date time.Time
	Prev time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("cleaning: row %d date %s does not follow %s",
		e.Row, e.Date.Format(DateLayout), e.Prev.Format(DateLayout))
}

// CoercionWarning records a cell that could not be parsed and was treated as missing.
// Column is empty when the whole row was rejected because of its date.
type CoercionWarning struct {
	Row    int
	Column Column
	Value  string
	Reason string
}

func (w CoercionWarning) String() string {
	if w.Column == "" {
		return fmt.Sprintf("row %d: %s (%q)", w.Row, w.Reason, w.Value)
	}
	return fmt.Sprintf("row %d %s: %s (%q)", w.Row, w.Column, w.Reason, w.Value)
}
