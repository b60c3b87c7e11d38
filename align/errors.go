package align

import (
	"errors"
	"fmt"
)

// ErrNoAlignableContent reports an input that cannot be segmented: an
// empty waveform, a transcript without non-space characters, or spoken
// audio shorter than the character count. This is a data-quality
// condition, recoverable by the caller.
var ErrNoAlignableContent = errors.New("no alignable content")

// InvariantError reports an internal consistency failure: the algorithm
// produced a boundary set or segment sequence that violates its own
// contract. This is a defect, never a data condition, and carries the
// offending state for diagnosis.
type InvariantError struct {
	Stage      string
	Detail     string
	Boundaries []int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("alignment invariant violated in %s: %s", e.Stage, e.Detail)
}

func invariantf(stage string, boundaries []int, format string, args ...any) error {
	return &InvariantError{
		Stage:      stage,
		Detail:     fmt.Sprintf(format, args...),
		Boundaries: boundaries,
	}
}
