package sample

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinLabel = 0
	MaxLabel = 9
)

// Label is a digit class, always in [0,9] when obtained from ParseLabel or NewLabel.
type Label int

// ValidationError reports a label that cannot be sent to the classifier.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid label %q: %s", e.Input, e.Reason)
}

// NewLabel checks that n is a valid digit class.
func NewLabel(n int) (Label, error) {
	if n < MinLabel || n > MaxLabel {
		return 0, &ValidationError{Input: strconv.Itoa(n), Reason: "must be between 0 and 9"}
	}
	return Label(n), nil
}

// ParseLabel parses user input such as "7" or " 7.0 ". Empty input,
// non-numbers, fractions and values outside [0,9] are rejected.
func ParseLabel(input string) (Label, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return 0, &ValidationError{Input: input, Reason: "empty"}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Input: input, Reason: "not a number"}
	}
	if v != math.Trunc(v) {
		return 0, &ValidationError{Input: input, Reason: "not an integer"}
	}
	if v < MinLabel || v > MaxLabel {
		return 0, &ValidationError{Input: input, Reason: "must be between 0 and 9"}
	}

	return Label(v), nil
}

// Valid reports whether l is in [0,9].
func (l Label) Valid() bool {
	return l >= MinLabel && l <= MaxLabel
}
