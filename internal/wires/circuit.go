package wires

import (
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

// WireValue is a resolved wire.
type WireValue struct {
	Name  string
	Value uint16
}

// Circuit holds the connections fed to it and the values resolved so far.
//
// A Circuit is not safe for concurrent use.
type Circuit struct {
	session     string
	connections map[string]Expr
	resolved    map[string]uint16
	logger      log.Logger
	metrics     *Metrics
}

type Option func(*Circuit)

func WithLogger(l log.Logger) Option {
	return func(c *Circuit) { c.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Circuit) { c.metrics = m }
}

func New(opts ...Option) *Circuit {
	c := &Circuit{
		session:     uuid.NewString()[:12],
		connections: make(map[string]Expr),
		resolved:    make(map[string]uint16),
		logger:      log.NewNopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = log.With(c.logger, "session", c.session)
	return c
}

// Session identifies this circuit in logs and reports.
func (c *Circuit) Session() string { return c.session }

// AddConnection parses line and binds its expression to the destination
// wire, replacing any earlier binding.
func (c *Circuit) AddConnection(line string) error {
	st, err := ParseStatement(line)
	if err != nil {
		return err
	}
	c.Connect(st.Wire, st.Expr)
	return nil
}

// Connect binds e to name. Rebinding a wire drops every resolved value,
// since any of them may have been computed from the old binding.
func (c *Circuit) Connect(name string, e Expr) {
	if _, ok := c.connections[name]; ok && len(c.resolved) > 0 {
		level.Debug(c.logger).Log("msg", "wire rebound, dropping resolved values", "wire", name, "dropped", len(c.resolved))
		c.Reset()
	}
	c.connections[name] = e
}

// Override rebinds the connected wire name to the literal v. It fails with
// ErrUndefinedWire when name has no connection.
func (c *Circuit) Override(name string, v uint16) error {
	if _, ok := c.connections[name]; !ok {
		return undefined(name, "")
	}
	c.Connect(name, ExprValue{X: Literal(v)})
	return nil
}

// Expr returns the expression bound to name.
func (c *Circuit) Expr(name string) (Expr, bool) {
	e, ok := c.connections[name]
	return e, ok
}

// Wires returns the connected wire names in sorted order.
func (c *Circuit) Wires() []string {
	names := make([]string, 0, len(c.connections))
	for name := range c.connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of connected wires.
func (c *Circuit) Len() int { return len(c.connections) }

// Resolved returns the number of wires with a cached value.
func (c *Circuit) Resolved() int { return len(c.resolved) }

// Reset forgets resolved values and keeps connections.
func (c *Circuit) Reset() {
	c.resolved = make(map[string]uint16)
}

// Value returns the signal on wire name, resolving whatever it depends on
// that has not been resolved yet.
func (c *Circuit) Value(name string) (uint16, error) {
	if v, ok := c.resolved[name]; ok {
		c.metrics.lookup(true)
		return v, nil
	}
	c.metrics.lookup(false)

	v, steps, err := c.resolve(name)
	c.metrics.observeSteps(steps)
	if err != nil {
		c.metrics.failed(err)
		level.Debug(c.logger).Log("msg", "resolve failed", "wire", name, "steps", steps, "err", err)
		return 0, err
	}
	return v, nil
}

// Values resolves every connected wire.
func (c *Circuit) Values() ([]WireValue, error) {
	names := c.Wires()
	out := make([]WireValue, 0, len(names))
	for _, name := range names {
		v, err := c.Value(name)
		if err != nil {
			return nil, err
		}
		out = append(out, WireValue{Name: name, Value: v})
	}
	return out, nil
}

// resolve walks dependencies with an explicit stack, not recursion. A wire
// whose inputs are not all resolved is pushed back, followed by its first
// missing input.
//
// The stack only ever holds a chain of waiting wires (plus the wire on top
// being tried), so a missing input that is already waiting closes a cycle.
func (c *Circuit) resolve(target string) (uint16, int, error) {
	stack := []string{target}
	waiting := make(map[string]bool)
	steps := 0
	for len(stack) > 0 {
		steps++
		wire := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		expr, ok := c.connections[wire]
		if !ok {
			var neededBy string
			if len(stack) > 0 {
				neededBy = stack[len(stack)-1]
			}
			return 0, steps, undefined(wire, neededBy)
		}

		v, missing, ok := c.eval(expr)
		if ok {
			c.resolved[wire] = v
			delete(waiting, wire)
			c.metrics.resolvedOne()
			continue
		}

		waiting[wire] = true
		if waiting[missing] {
			path := append(pathFrom(stack, missing), wire, missing)
			return 0, steps, cycle(path)
		}
		stack = append(stack, wire, missing)
	}
	return c.resolved[target], steps, nil
}

// eval computes e from resolved values only. When an input is not resolved
// yet it reports the first such wire instead.
func (c *Circuit) eval(e Expr) (uint16, string, bool) {
	for _, o := range e.operands() {
		if _, ok := c.operand(o); !ok {
			return 0, o.Ref, false
		}
	}
	switch e := e.(type) {
	case ExprValue:
		x, _ := c.operand(e.X)
		return x, "", true
	case ExprNot:
		x, _ := c.operand(e.X)
		return ^x, "", true
	case ExprBinary:
		a, _ := c.operand(e.A)
		b, _ := c.operand(e.B)
		return e.Op.apply(a, b), "", true
	}
	panic("wires: unknown expression type")
}

func (c *Circuit) operand(o Operand) (uint16, bool) {
	if !o.IsRef() {
		return o.Value, true
	}
	v, ok := c.resolved[o.Ref]
	return v, ok
}

// pathFrom returns the suffix of chain starting at the last occurrence of
// name, or nil when name is not in chain.
func pathFrom(chain []string, name string) []string {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i] == name {
			return append([]string(nil), chain[i:]...)
		}
	}
	return nil
}
