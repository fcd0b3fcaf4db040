package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition is matched by errors.Is when a stage runs before its predecessor
	ErrPrecondition = errors.New("pipeline precondition not met")

	// ErrInvalidFeatureValue is matched by errors.Is when a ratio feature has a zero denominator
	ErrInvalidFeatureValue = errors.New("invalid feature value")
)

// PreconditionError reports a stage invoked before its required predecessor completed
type PreconditionError struct {
	Stage    string
	Requires string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s before %s", e.Stage, e.Requires, e.Stage)
}

// Is makes errors.Is(err, ErrPrecondition) hold
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// FeatureValueError reports a ratio feature whose denominator is zero
type FeatureValueError struct {
	Feature string
	Row     int
}

func (e *FeatureValueError) Error() string {
	return fmt.Sprintf("feature %s: zero denominator at row %d", e.Feature, e.Row)
}

// Is makes errors.Is(err, ErrInvalidFeatureValue) hold
func (e *FeatureValueError) Is(target error) bool {
	return target == ErrInvalidFeatureValue
}

// ArgumentError reports an invalid argument to a stage
type ArgumentError struct {
	msg string
}

func (e *ArgumentError) Error() string {
	return e.msg
}
