package wires

import (
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Feedback resolves from, feeds that signal into wire into as a literal and
// resolves from again on the rewired circuit.
func Feedback(c *Circuit, from, into string) (first, second uint16, err error) {
	first, err = c.Value(from)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "resolving %q", from)
	}
	if err := c.Override(into, first); err != nil {
		return first, 0, err
	}
	level.Debug(c.logger).Log("msg", "signal fed back", "from", from, "into", into, "value", first)

	second, err = c.Value(from)
	if err != nil {
		return first, 0, errors.Wrapf(err, "resolving %q after feedback", from)
	}
	return first, second, nil
}
