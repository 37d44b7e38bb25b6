package wires

import (
	"io"

	"github.com/go-kit/log/level"
)

// Compile builds a circuit from parsed statements. Later statements for the
// same wire replace earlier ones.
func Compile(stmts []Statement, opts ...Option) *Circuit {
	c := New(opts...)
	for _, st := range stmts {
		c.Connect(st.Wire, st.Expr)
	}
	level.Debug(c.logger).Log("msg", "circuit compiled", "statements", len(stmts), "wires", c.Len())
	return c
}

// Load reads statements from r, one per line, and compiles them.
func Load(r io.Reader, opts ...Option) (*Circuit, error) {
	stmts, err := parseLines(r)
	if err != nil {
		return nil, err
	}
	return Compile(stmts, opts...), nil
}

// Check reports every reference to an unconnected wire and every
// dependency cycle, without resolving anything.
func (c *Circuit) Check() []error {
	var errs []error
	names := c.Wires()
	for _, name := range names {
		for _, dep := range Deps(c.connections[name]) {
			if _, ok := c.connections[dep]; !ok {
				errs = append(errs, undefined(dep, name))
			}
		}
	}

	const (
		unvisited = iota
		onPath
		done
	)
	type frame struct {
		wire string
		next int
	}
	state := make(map[string]int, len(names))
	for _, root := range names {
		if state[root] != unvisited {
			continue
		}
		state[root] = onPath
		path := []frame{{wire: root}}
		for len(path) > 0 {
			top := &path[len(path)-1]
			deps := Deps(c.connections[top.wire])
			if top.next == len(deps) {
				state[top.wire] = done
				path = path[:len(path)-1]
				continue
			}
			dep := deps[top.next]
			top.next++
			if _, ok := c.connections[dep]; !ok {
				continue
			}
			switch state[dep] {
			case unvisited:
				state[dep] = onPath
				path = append(path, frame{wire: dep})
			case onPath:
				chain := make([]string, len(path))
				for i, f := range path {
					chain[i] = f.wire
				}
				errs = append(errs, cycle(append(pathFrom(chain, dep), dep)))
			}
		}
	}
	return errs
}
