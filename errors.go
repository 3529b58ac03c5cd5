package genie

import "github.com/pkg/errors"

// Error kinds returned by the package. Call sites wrap them with context, so
// test with errors.Is.
var (
	// ErrInvalidInput reports bad caller input: fewer than two points, a
	// cluster count outside [1, n], or an invalid configuration value.
	ErrInvalidInput = errors.New("genie: invalid input")

	// ErrDisconnectedGraph reports that a neighbor graph cannot yield a
	// spanning tree. The builder never returns a forest in its place.
	ErrDisconnectedGraph = errors.New("genie: neighbor graph is disconnected")

	// ErrInconsistentState reports an internal contract violation, such as an
	// MST edge list whose length is not n-1. It is not recoverable by retrying.
	ErrInconsistentState = errors.New("genie: inconsistent state")
)

func invalidInputf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func inconsistentf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInconsistentState, format, args...)
}
