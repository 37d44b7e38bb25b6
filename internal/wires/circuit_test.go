package wires

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const sample = `123 -> x
456 -> y
x AND y -> d
x OR y -> e
x LSHIFT 2 -> f
y RSHIFT 2 -> g
NOT x -> h
NOT y -> i`

var sampleWant = map[string]uint16{
	"d": 72,
	"e": 507,
	"f": 492,
	"g": 114,
	"h": 65412,
	"i": 65079,
	"x": 123,
	"y": 456,
}

func mustCircuit(t *testing.T, lines []string, opts ...Option) *Circuit {
	t.Helper()
	c := New(opts...)
	for _, l := range lines {
		require.NoError(t, c.AddConnection(l))
	}
	return c
}

func TestValue_Sample(t *testing.T) {
	c := mustCircuit(t, strings.Split(sample, "\n"))
	for wire, want := range sampleWant {
		t.Run(wire, func(t *testing.T) {
			got, err := c.Value(wire)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestValue_Literal(t *testing.T) {
	c := mustCircuit(t, []string{"123 -> x"})
	v, err := c.Value("x")
	require.NoError(t, err)
	require.Equal(t, uint16(123), v)
}

func TestValue_ShiftOutOfRange(t *testing.T) {
	c := mustCircuit(t, []string{"65535 -> x", "x LSHIFT 16 -> l", "x RSHIFT 20 -> r", "x LSHIFT 15 -> top"})
	for wire, want := range map[string]uint16{"l": 0, "r": 0, "top": 0x8000} {
		v, err := c.Value(wire)
		require.NoError(t, err)
		require.Equal(t, want, v, wire)
	}
}

func TestValue_Memoized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := mustCircuit(t, strings.Split(sample, "\n"), WithMetrics(m))

	first, err := c.Value("d")
	require.NoError(t, err)
	require.Equal(t, 3, c.Resolved())
	require.Equal(t, float64(3), testutil.ToFloat64(m.resolved))

	second, err := c.Value("d")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 3, c.Resolved())
	require.Equal(t, float64(3), testutil.ToFloat64(m.resolved))
	require.Equal(t, float64(2), testutil.ToFloat64(m.lookups))
	require.Equal(t, float64(1), testutil.ToFloat64(m.cacheHits))
}

func TestValue_OnlyNeededWork(t *testing.T) {
	c := mustCircuit(t, strings.Split(sample, "\n"))
	_, err := c.Value("h")
	require.NoError(t, err)
	// h needs x only.
	require.Equal(t, 2, c.Resolved())
}

func TestValue_ForwardReference(t *testing.T) {
	c := mustCircuit(t, []string{
		"c -> a",
		"b OR 1 -> c",
		"NOT d -> b",
		"65534 -> d",
	})
	v, err := c.Value("a")
	require.NoError(t, err)
	require.Equal(t, uint16(1|^uint16(65534)), v)
}

func TestValue_OrderIndependent(t *testing.T) {
	lines := strings.Split(sample, "\n")
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rnd.Shuffle(len(lines), func(a, b int) { lines[a], lines[b] = lines[b], lines[a] })
		c := mustCircuit(t, lines)
		got, err := c.Values()
		require.NoError(t, err)
		require.Len(t, got, len(sampleWant))
		for _, wv := range got {
			require.Equal(t, sampleWant[wv.Name], wv.Value, "wire %s, order %v", wv.Name, lines)
		}
	}
}

func TestValue_Rebind(t *testing.T) {
	c := mustCircuit(t, []string{"1 -> b", "b LSHIFT 1 -> a"})
	v, err := c.Value("a")
	require.NoError(t, err)
	require.Equal(t, uint16(2), v)

	require.NoError(t, c.AddConnection("5 -> b"))
	require.Equal(t, 0, c.Resolved())

	v, err = c.Value("b")
	require.NoError(t, err)
	require.Equal(t, uint16(5), v)
	v, err = c.Value("a")
	require.NoError(t, err)
	require.Equal(t, uint16(10), v)
}

func TestValue_NewWireKeepsResolved(t *testing.T) {
	c := mustCircuit(t, []string{"1 -> b"})
	_, err := c.Value("b")
	require.NoError(t, err)
	require.NoError(t, c.AddConnection("b OR 2 -> a"))
	require.Equal(t, 1, c.Resolved())
}

func TestValue_Undefined(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := mustCircuit(t, []string{"x AND y -> z", "1 -> x"}, WithMetrics(m))

	_, err := c.Value("nope")
	require.True(t, errors.Is(err, ErrUndefinedWire), "got %v", err)

	v, err := c.Value("z")
	require.True(t, errors.Is(err, ErrUndefinedWire), "got %v", err)
	require.Zero(t, v)
	require.Contains(t, err.Error(), `"y" (needed by "z")`)
	require.Equal(t, float64(2), testutil.ToFloat64(m.failures.WithLabelValues("undefined")))
}

func TestValue_Cycle(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		wire  string
		path  string
	}{
		{"self", []string{"a OR 1 -> a"}, "a", "a -> a"},
		{"pair", []string{"b -> a", "NOT a -> b"}, "a", "a -> b -> a"},
		{"tail", []string{"1 -> x", "x AND c -> a", "a -> b", "b OR x -> c"}, "a", "a -> c -> b -> a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := mustCircuit(t, tc.lines)
			_, err := c.Value(tc.wire)
			require.True(t, errors.Is(err, ErrCycle), "got %v", err)
			require.Contains(t, err.Error(), tc.path)
		})
	}
}

func TestValue_DeepChain(t *testing.T) {
	c := New()
	const n = 200000
	require.NoError(t, c.AddConnection("1 -> w0"))
	for i := 1; i < n; i++ {
		require.NoError(t, c.AddConnection(fmt.Sprintf("w%d LSHIFT 0 -> w%d", i-1, i)))
	}
	v, err := c.Value(fmt.Sprintf("w%d", n-1))
	require.NoError(t, err)
	require.Equal(t, uint16(1), v)
	require.Equal(t, n, c.Resolved())
}

func TestReset(t *testing.T) {
	c := mustCircuit(t, strings.Split(sample, "\n"))
	_, err := c.Values()
	require.NoError(t, err)
	require.Equal(t, 8, c.Resolved())
	c.Reset()
	require.Equal(t, 0, c.Resolved())
	require.Equal(t, 8, c.Len())
}

func TestOverride(t *testing.T) {
	c := mustCircuit(t, strings.Split(sample, "\n"))
	v, err := c.Value("d")
	require.NoError(t, err)
	require.Equal(t, uint16(72), v)

	require.NoError(t, c.Override("y", 65535))
	v, err = c.Value("d")
	require.NoError(t, err)
	require.Equal(t, uint16(123), v)

	err = c.Override("yy", 5)
	require.True(t, errors.Is(err, ErrUndefinedWire))
	require.Contains(t, err.Error(), `"yy"`)
	require.Equal(t, 8, c.Len())
	_, ok := c.Expr("yy")
	require.False(t, ok)
}
