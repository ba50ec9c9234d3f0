package weights

import "fmt"

// MissingRoleError reports a column with no block at its base.
type MissingRoleError struct {
	Column   int
	Expected string
}

func (e *MissingRoleError) Error() string {
	return fmt.Sprintf("column %d: expected %q at (0,0,%d) but found nothing", e.Column, e.Expected, e.Column)
}

// PlaceholderMismatchError reports a column whose base block is not the
// placeholder expected for its index.
type PlaceholderMismatchError struct {
	Column   int
	Expected string
	Actual   string
}

func (e *PlaceholderMismatchError) Error() string {
	return fmt.Sprintf("column %d: expected %q at (0,0,%d) but found %q", e.Column, e.Expected, e.Column, e.Actual)
}

// MalformedInputError reports a single input record that could not be
// interpreted. The record is skipped; its siblings are still processed.
type MalformedInputError struct {
	Source string
	Record string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("%s: skipping %q: %v", e.Source, e.Record, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// WeightRangeError reports a column whose rounding residual drove a weight
// below zero. That happens only when so many blocks round up that their sum
// overshoots 1 by more than the largest entry.
type WeightRangeError struct {
	Column int
	Block  string
	Weight float64
}

func (e *WeightRangeError) Error() string {
	return fmt.Sprintf("column %d: %q normalized to %v; too many distinct blocks for the rounding precision", e.Column, e.Block, e.Weight)
}
