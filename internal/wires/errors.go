package wires

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedStatement is returned for a line that is not one of the
	// three statement shapes.
	ErrMalformedStatement = errors.New("malformed statement")

	// ErrUndefinedWire is returned when a wire is read but never connected.
	ErrUndefinedWire = errors.New("undefined wire")

	// ErrCycle is returned when a wire depends on itself, directly or not.
	ErrCycle = errors.New("dependency cycle")
)

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedStatement, format, args...)
}

func undefined(name, neededBy string) error {
	if neededBy == "" {
		return errors.Wrapf(ErrUndefinedWire, "%q", name)
	}
	return errors.Wrapf(ErrUndefinedWire, "%q (needed by %q)", name, neededBy)
}

func cycle(path []string) error {
	return errors.Wrap(ErrCycle, strings.Join(path, " -> "))
}

// failureReason labels err for the failures metric.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUndefinedWire):
		return "undefined"
	case errors.Is(err, ErrCycle):
		return "cycle"
	default:
		return "other"
	}
}
