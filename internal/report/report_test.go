package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pborges/wires/internal/testutil"
	"github.com/pborges/wires/internal/wires"
)

func TestMake(t *testing.T) {
	values := []wires.WireValue{
		{Name: "y", Value: 456},
		{Name: "x", Value: 123},
		{Name: "d", Value: 72},
	}
	out := Make(Config{Version: "1.2.3", Session: "abc", Header: []string{"Source  in.wires"}}, values)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Equal(t, []string{
		"Wires   1.2.3",
		"Session abc",
		"Source  in.wires",
		"*N3",
		"*W d 72",
		"*W x 123",
		"*W y 456",
	}, lines[:7])
	require.Equal(t, "*", lines[8])

	r, err := testutil.ParseReport([]byte(out))
	require.NoError(t, err)
	require.Equal(t, map[string]uint16{"d": 72, "x": 123, "y": 456}, r.Wires)
	require.Equal(t, EntryChecksum(values), r.Csum)
	require.Equal(t, testutil.FileChecksum([]byte(out)), r.FileSum)
	require.Equal(t, []string{"Wires   1.2.3", "Session abc", "Source  in.wires"}, r.Header)

	// unchanged input order
	require.Equal(t, "y", values[0].Name)
}

func TestEntryChecksum(t *testing.T) {
	// 'a' = 0x61, value 0x1234 -> 0x34 + 0x12
	require.Equal(t, uint16(0x61+0x34+0x12), EntryChecksum([]wires.WireValue{{Name: "a", Value: 0x1234}}))
	require.Equal(t, uint16(0), EntryChecksum(nil))
}

func TestCompareReport(t *testing.T) {
	a, err := testutil.ParseReport([]byte(Make(Config{Version: "1"}, []wires.WireValue{{Name: "a", Value: 1}})))
	require.NoError(t, err)
	b, err := testutil.ParseReport([]byte(Make(Config{Version: "2", Session: "other"}, []wires.WireValue{{Name: "a", Value: 1}})))
	require.NoError(t, err)
	require.Empty(t, testutil.CompareReport(a, b))

	c, err := testutil.ParseReport([]byte(Make(Config{Version: "1"}, []wires.WireValue{{Name: "a", Value: 2}})))
	require.NoError(t, err)
	diff := testutil.CompareReport(c, a)
	require.Contains(t, diff, "wires mismatch")
	require.Contains(t, diff, "checksum mismatch")
}

func TestParseReport_Rejects(t *testing.T) {
	for _, in := range []string{
		"*N2\n*W a 1\n*C0000\n",
		"*N1\n*W a 70000\n",
		"*N1\n*W a\n",
		"*X\n",
		"*N1\n*W a 1\nlate header\n",
	} {
		_, err := testutil.ParseReport([]byte(in))
		require.Error(t, err, in)
	}
}
